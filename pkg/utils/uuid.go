package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID generates a new UUID v4.
func GenerateUUID() string {
	return uuid.New().String()
}

// GenerateRequestID generates a request ID (UUID v4).
func GenerateRequestID() string {
	return GenerateUUID()
}

// GenerateShortID returns the first eight hex characters of a fresh UUID v4.
func GenerateShortID() string {
	return strings.SplitN(GenerateUUID(), "-", 2)[0]
}

// IsValidUUID checks if a string is a valid UUID.
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
