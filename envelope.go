package credvault

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// Ciphertext envelope: "k<version>.<base64(nonce||ciphertext)>". The key
// version tag keeps ciphertexts decryptable after a key rotation; the binary
// part is what AES-GCM produced, nonce prepended.

const envelopePrefix = "k"

func encodeEnvelope(keyVersion int, raw []byte) string {
	return envelopePrefix + strconv.Itoa(keyVersion) + "." + base64.StdEncoding.EncodeToString(raw)
}

// parseEnvelope splits an envelope into its key version and binary payload.
// Every malformation reports ErrCorruptCiphertext: an envelope that cannot
// be parsed is indistinguishable from damaged data.
func parseEnvelope(envelope string) (int, []byte, error) {
	version, encoded, ok := strings.Cut(envelope, ".")
	if !ok || !strings.HasPrefix(version, envelopePrefix) {
		return 0, nil, fmt.Errorf("%w: malformed envelope", ErrCorruptCiphertext)
	}
	keyVersion, err := strconv.Atoi(strings.TrimPrefix(version, envelopePrefix))
	if err != nil || keyVersion <= 0 {
		return 0, nil, fmt.Errorf("%w: malformed key version tag", ErrCorruptCiphertext)
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: payload is not valid base64", ErrCorruptCiphertext)
	}
	return keyVersion, raw, nil
}
