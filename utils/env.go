package utils

import (
	"log"
	"os"
)

// GetEnv reads an environment variable with a fallback for when it is unset
// or empty.
func GetEnv(key, fallback string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	return value
}

// MustEnv reads a required environment variable, exiting if it is missing.
func MustEnv(key string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		log.Fatalf("Value for %s must be provided\n", key)
	}
	return value
}
