package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sitepulse/api/database"
	"sitepulse/api/models"
)

type PostgresEventLog struct {
	DB  *database.DBClient
	log *zap.Logger
}

func NewPostgresEventLog(db *database.DBClient, log *zap.Logger) *PostgresEventLog {
	return &PostgresEventLog{DB: db, log: log}
}

func (s *PostgresEventLog) InitSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS tracking_events (
			event_id UUID PRIMARY KEY,
			session_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			path TEXT NOT NULL,
			label TEXT NOT NULL DEFAULT '',
			duration_ms BIGINT NOT NULL DEFAULT 0,
			referrer TEXT NOT NULL DEFAULT '',
			utm_source TEXT NOT NULL DEFAULT '',
			utm_medium TEXT NOT NULL DEFAULT '',
			timestamp TIMESTAMPTZ NOT NULL,
			received_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_tracking_events_timestamp ON tracking_events (timestamp);
	`
	if _, err := s.DB.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create tracking_events table: %w", err)
	}

	s.log.Info("PostgreSQL tracking schema initialized")
	return nil
}

func (s *PostgresEventLog) Append(ctx context.Context, ev models.Event) error {
	query := `
		INSERT INTO tracking_events (
			event_id, session_id, event_type, path, label, duration_ms,
			referrer, utm_source, utm_medium, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := s.DB.DB.ExecContext(ctx, query,
		ev.ID,
		ev.SessionID,
		string(ev.Type),
		ev.Path,
		ev.Label,
		ev.DurationMs,
		ev.Referrer,
		ev.UTMSource,
		ev.UTMMedium,
		ev.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert tracking event: %w", err)
	}
	return nil
}

func (s *PostgresEventLog) Range(ctx context.Context, since, until time.Time) ([]models.Event, error) {
	query := `
		SELECT event_id, session_id, event_type, path, label, duration_ms,
			referrer, utm_source, utm_medium, timestamp
		FROM tracking_events
		WHERE timestamp >= $1 AND timestamp <= $2
		ORDER BY timestamp ASC;
	`
	rows, err := s.DB.DB.QueryContext(ctx, query, since.UTC(), until.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query tracking events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var (
			ev        models.Event
			eventType string
		)
		if err := rows.Scan(
			&ev.ID,
			&ev.SessionID,
			&eventType,
			&ev.Path,
			&ev.Label,
			&ev.DurationMs,
			&ev.Referrer,
			&ev.UTMSource,
			&ev.UTMMedium,
			&ev.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tracking event: %w", err)
		}
		ev.Type = models.EventType(eventType)
		ev.Timestamp = ev.Timestamp.UTC()
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tracking events: %w", err)
	}
	return events, nil
}

func (s *PostgresEventLog) Ping(ctx context.Context) error {
	return s.DB.DB.PingContext(ctx)
}
