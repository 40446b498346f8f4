// Command keygen prints fresh random keys for EMAIL_ENCRYPTION_KEY,
// TOTP_SECRET_KEY and JWT_SECRET in .env format.
package main

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/dmitrymomot/mfagate/pkg/secrets"
)

func main() {
	for _, name := range []string{"EMAIL_ENCRYPTION_KEY", "TOTP_SECRET_KEY"} {
		key, err := secrets.GenerateKey()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("%s=%s\n", name, hex.EncodeToString(key))
	}

	jwtKey, err := secrets.GenerateKey()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("JWT_SECRET=%s\n", base64.RawURLEncoding.EncodeToString(jwtKey))
}
