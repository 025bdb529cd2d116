// Package main is a development utility for generating a random JWT signing
// key. It prints the key in base64 together with ready-to-paste environment
// variable lines so developers can bootstrap a local .env without inventing
// weak secrets by hand. Production deployments should provision the key
// through their secret manager instead.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
)

func main() {
	keyBytes := make([]byte, 64)
	_, err := rand.Read(keyBytes)
	if err != nil {
		log.Fatal(err)
	}

	key := base64.RawURLEncoding.EncodeToString(keyBytes)

	fmt.Println("==========================================================")
	fmt.Println("JWT Signing Key Generated")
	fmt.Println("==========================================================")
	fmt.Printf("\nKey: %s\n", key)
	fmt.Println("\n==========================================================")
	fmt.Println("Environment:")
	fmt.Println("==========================================================")
	fmt.Printf("\nJWT_ISSUER_SIGNING_KEY=%s\n", key)
	fmt.Printf("JWT_VALID_ISSUER=project-metadata-platform\n")
	fmt.Printf("JWT_VALID_AUDIENCE=pmp-frontend\n")
	fmt.Println("\n==========================================================")
}
