// Package credvault provides a multi-tenant vault for third-party
// cloud-provider credentials (AWS access keys, GCP service accounts, Azure
// service principals, and anything else shaped like a map of secret fields).
//
// Secrets persist only as authenticated AES-256-GCM ciphertext and are never
// returned to a caller in the clear: every read-facing representation passes
// through an irreversible masking policy. Records belong to exactly one
// company, and a caller can never learn whether a credential exists under
// another company.
//
// # Architecture
//
//   - Engine encrypts and decrypts field maps with a versioned Keyring. The
//     keyring is built once at startup from a KeyProvider; the process must
//     refuse to start without one.
//   - MaskPolicy redacts decrypted values for display. It is pure, total,
//     and needs no key.
//   - Vault exposes the credential operations (Create, List, Update,
//     AssignEnvironments, Delete) and enforces company isolation on every
//     one of them.
//   - CredentialStore is the persistence collaborator. SQLite and S3
//     backends ship under storage/; an in-memory store ships for tests.
//
// # Quick start
//
//	keyring, err := envkey.Provider{}.ProvisionKeyring(ctx)
//	if err != nil {
//	    log.Fatal(err) // no key, no service
//	}
//	engine, err := credvault.NewEngine(keyring)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store, err := sqlite.Open("credentials.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vault, err := credvault.New(engine, store)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	caller := credvault.Identity{UserID: "u-1", CompanyID: "c-1"}
//	cred, err := vault.Create(ctx, caller, "c-1", credvault.CreateInput{
//	    Name:     "prod deployer",
//	    Provider: "aws",
//	    Fields: credvault.FieldMap{
//	        "access_key_id":     "AKIA...",
//	        "secret_access_key": "...",
//	    },
//	})
//
// cred.Fields now holds masked values only; the plaintext never leaves the
// create call.
package credvault
