// Package main provides a CLI tool for provisioning the operator token that
// guards the admin endpoints. It prints the plaintext token once together with
// the bcrypt hash to put in RISKGATE_ADMIN_TOKEN_HASH; only the hash is ever
// stored.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"riskgate/pkg/secrets"
)

type tokenOutput struct {
	Token string            `json:"token"`
	Hash  string            `json:"hash"`
	Usage map[string]string `json:"usage"`
}

func main() {
	token := flag.String("token", "", "Token to hash. Generated if empty.")
	jsonOutput := flag.Bool("json", false, "Output as JSON")
	flag.Usage = printUsage
	flag.Parse()

	plaintext := *token
	if plaintext == "" {
		generated, err := secrets.Generate()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
			os.Exit(1)
		}
		plaintext = generated
	}

	hash, err := secrets.Hash(plaintext)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing token: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(tokenOutput{
			Token: plaintext,
			Hash:  hash,
			Usage: map[string]string{
				"header": "X-Admin-Token: <token>",
				"env":    "RISKGATE_ADMIN_TOKEN_HASH=<hash>",
			},
		})
		return
	}

	fmt.Println("Admin Token")
	fmt.Println("===========")
	fmt.Printf("Token: %s\n", plaintext)
	fmt.Printf("Hash:  %s\n", hash)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  export RISKGATE_ADMIN_TOKEN_HASH='%s'\n", hash)
	fmt.Println("  curl -X POST -H \"X-Admin-Token: <token>\" http://localhost:8080/admin/circuit/reset")
}

func printUsage() {
	fmt.Println(`tokengen - Provision the riskgate admin token

Generates a random operator token (or hashes one you provide) and prints the
bcrypt hash for RISKGATE_ADMIN_TOKEN_HASH. Store only the hash; the plaintext
token goes in the X-Admin-Token request header.

Usage:
  tokengen [flags]

Flags:
  -token string   Token to hash. Generated if empty.
  -json           Output as JSON`)
}
