package main

import (
	"log"
	"os"

	"github.com/playvolley/backend/internal/admin"
)

// Generates the bcrypt hash for ADMIN_TOKEN_HASH from a plaintext token.
func main() {
	token := os.Getenv("ADMIN_TOKEN")
	if len(os.Args) > 1 {
		token = os.Args[1]
	}
	if token == "" {
		log.Fatal("usage: admin-token <plaintext-token> (or set ADMIN_TOKEN)")
	}
	if token == "change-me-in-production" {
		log.Println("WARNING: hashing the default token. Pick a real one for production.")
	}

	hash, err := admin.HashToken(token)
	if err != nil {
		log.Fatalf("Failed to hash token: %v", err)
	}

	log.Println("Set this in the environment:")
	log.Printf("  ADMIN_TOKEN_HASH=%s", hash)
}
