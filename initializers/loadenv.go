package initializers

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
)

// LoadEnv pulls configuration from a .env file into the process environment.
// Deployments that configure through the environment directly can ignore the
// error.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil {
		log.Println("[LoadEnv] No .env file loaded:", err)
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	log.Println("[LoadEnv] Environment loaded from .env")
	return nil
}
