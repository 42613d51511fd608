package utils

import (
	"github.com/google/uuid"
)

// GenerateID generates a new UUID for clients, applications, batches, cards and fee operations
func GenerateID() string {
	return uuid.New().String()
}

// GenerateCorrelationID generates a request correlation ID
func GenerateCorrelationID() string {
	return "REQ-" + uuid.New().String()
}
