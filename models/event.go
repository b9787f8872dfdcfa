// models/event.go
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// EventType is the kind of behavioral event emitted by a tracked page.
type EventType string

const (
	EventPageView EventType = "PAGE_VIEW"
	EventPageExit EventType = "PAGE_EXIT"
	EventClick    EventType = "CLICK"
)

const (
	// MinDwellMs is the shortest PAGE_EXIT duration worth recording.
	// Anything shorter is a bounce or a prefetch.
	MinDwellMs int64 = 150
	// MaxLabelLength caps click labels, in characters.
	MaxLabelLength = 120
	// maxClockSkew bounds how far in the future a client timestamp may be.
	maxClockSkew = 5 * time.Minute
)

// ErrInvalidEvent is returned for payloads that must not be ingested.
var ErrInvalidEvent = errors.New("invalid tracking event")

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventPageView, EventPageExit, EventClick:
		return true
	default:
		return false
	}
}

// Event is a single raw tracking event. It is immutable once ingested.
type Event struct {
	ID         string    `json:"id,omitempty"`
	SessionID  string    `json:"sessionId" binding:"required"`
	Type       EventType `json:"type" binding:"required,oneof=PAGE_VIEW PAGE_EXIT CLICK"`
	Path       string    `json:"path" binding:"required"`
	Label      string    `json:"label,omitempty"`
	DurationMs int64     `json:"durationMs,omitempty"`
	Referrer   string    `json:"referrer,omitempty"`
	UTMSource  string    `json:"utmSource,omitempty"`
	UTMMedium  string    `json:"utmMedium,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Validate applies the ingestion rules that binding tags cannot express.
// It does not mutate the event.
func (e *Event) Validate(now time.Time) error {
	if strings.TrimSpace(e.SessionID) == "" {
		return fmt.Errorf("%w: sessionId is required", ErrInvalidEvent)
	}
	if !e.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	}
	if !strings.HasPrefix(e.Path, "/") {
		return fmt.Errorf("%w: path must start with '/'", ErrInvalidEvent)
	}
	if e.DurationMs < 0 {
		return fmt.Errorf("%w: durationMs cannot be negative", ErrInvalidEvent)
	}
	if e.Type == EventPageExit && e.DurationMs < MinDwellMs {
		return fmt.Errorf("%w: PAGE_EXIT durationMs must be at least %d", ErrInvalidEvent, MinDwellMs)
	}
	if !e.Timestamp.IsZero() && e.Timestamp.After(now.Add(maxClockSkew)) {
		return fmt.Errorf("%w: timestamp is in the future", ErrInvalidEvent)
	}
	return nil
}

// TruncateLabel cuts s to MaxLabelLength characters.
func TruncateLabel(s string) string {
	if utf8.RuneCountInString(s) <= MaxLabelLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxLabelLength])
}

// ErrorResponse is the JSON body of every failed API request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// IngestResponse acknowledges a stored event.
type IngestResponse struct {
	EventID string `json:"eventId"`
	Status  string `json:"status"`
}
