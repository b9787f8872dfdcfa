package store

import (
	"context"
	"time"

	"sitepulse/api/models"
)

// EventLog is the durable, append-only log of raw tracking events.
type EventLog interface {
	// Append durably stores one event. The event must already be validated.
	Append(ctx context.Context, ev models.Event) error
	// Range returns every event with since <= timestamp <= until, oldest first.
	Range(ctx context.Context, since, until time.Time) ([]models.Event, error)
	Ping(ctx context.Context) error
}
