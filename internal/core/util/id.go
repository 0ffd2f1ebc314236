package util

import "github.com/google/uuid"

// GenerateID returns a random unique identifier for events and records.
func GenerateID() string {
	return uuid.NewString()
}
