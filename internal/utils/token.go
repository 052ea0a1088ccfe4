package utils

import "github.com/google/uuid"

// NewShareToken returns an opaque random token granting public read access
// to one note. The random UUID keeps tokens unguessable; a unique column
// constraint enforces global uniqueness at the store.
func NewShareToken() string {
	return uuid.NewString()
}
