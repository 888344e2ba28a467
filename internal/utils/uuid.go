package utils

import "github.com/google/uuid"

// UUIDGenerator produces time-ordered identifiers for queued operations.
// UUIDv7 keeps ids unique even when several writes land in the same
// millisecond.
type UUIDGenerator struct {
}

// NewUUIDGenerator returns a ready-to-use [UUIDGenerator].
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a new UUIDv7 string. It falls back to a random v4 id if
// the v7 source fails.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
