// Command credvault-keygen generates key material for a credvault
// deployment: a hex-encoded 32-byte encryption key for
// CREDVAULT_ENCRYPTION_KEY, or a salt for the passphrase provider.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"

	"github.com/hengadev/credvault"
)

func main() {
	salt := flag.Bool("salt", false, "generate a 16-byte salt for the passphrase provider instead of a key")
	flag.Parse()

	if *salt {
		buf := make([]byte, 16)
		if _, err := rand.Read(buf); err != nil {
			log.Fatalf("generate salt: %v", err)
		}
		fmt.Println(hex.EncodeToString(buf))
		return
	}

	key, err := credvault.GenerateStringEncryptionKey()
	if err != nil {
		log.Fatalf("generate key: %v", err)
	}
	fmt.Println(key)
}
