package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewUUID generates a new UUID
func NewUUID() uuid.UUID {
	return uuid.New()
}

// ParseUUID parses a string into a UUID
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// GenerateOrderCode builds a human-readable order code from the configured
// prefix and a random suffix, e.g. "ORD-3F9A21C4".
func GenerateOrderCode(prefix string) string {
	return prefix + strings.ToUpper(uuid.New().String()[:8])
}

// GenerateBatchNumber generates a batch number for stock received without one
func GenerateBatchNumber() string {
	return "BATCH-" + strings.ToUpper(uuid.New().String()[:8])
}
