package store

import (
	"github.com/google/uuid"
)

// NewID returns a new record identifier (UUID version 4).
func NewID() string {
	return uuid.NewString()
}

// IsUUIDv4 reports whether value is a canonical RFC 4122 version 4
// UUID. Path parameters are checked with this before any query runs.
func IsUUIDv4(value string) bool {
	parsed, err := uuid.Parse(value)
	if err != nil {
		return false
	}
	return parsed.Version() == 4 && len(value) == 36
}
