package utils

import "github.com/google/uuid"

// NewEventID returns the server-side identifier of an ingested event.
func NewEventID() string {
	return uuid.NewString()
}

// NewSessionID returns a random visitor session identifier.
func NewSessionID() string {
	return uuid.NewString()
}
