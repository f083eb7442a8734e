package store

import "github.com/google/uuid"

// NewID returns a time-ordered UUIDv7, so ids sort by creation time and stay
// unique even when two entities are created in the same millisecond.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
