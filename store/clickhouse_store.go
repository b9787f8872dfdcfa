package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"

	"sitepulse/api/database"
	"sitepulse/api/models"
)

type ClickHouseEventLog struct {
	DB  *database.ClickHouseClient
	log *zap.Logger
}

func NewClickHouseEventLog(chClient *database.ClickHouseClient, log *zap.Logger) *ClickHouseEventLog {
	return &ClickHouseEventLog{
		DB:  chClient,
		log: log,
	}
}

// InitSchema creates the tracking_events table when it does not exist.
func (s *ClickHouseEventLog) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS tracking_events (
		event_id String,
		session_id String,
		event_type LowCardinality(String),
		path String,
		label String,
		duration_ms Int64,
		referrer String,
		utm_source LowCardinality(String),
		utm_medium LowCardinality(String),
		timestamp DateTime64(3, 'UTC'),
		received_at DateTime64(3, 'UTC') DEFAULT now64(3)
	) ENGINE = MergeTree
	PARTITION BY toYYYYMM(timestamp)
	ORDER BY (timestamp, path)
	`

	if err := s.DB.Conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create tracking_events table: %w", err)
	}

	s.log.Info("ClickHouse tracking schema initialized")
	return nil
}

func (s *ClickHouseEventLog) Append(ctx context.Context, ev models.Event) error {
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO tracking_events (
			event_id, session_id, event_type, path, label, duration_ms,
			referrer, utm_source, utm_medium, timestamp
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}

	err = batch.Append(
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
		return fmt.Errorf("failed to append event %s: %w", ev.ID, err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send insert: %w", err)
	}
	return nil
}

const rangeQuery = `
	SELECT event_id, session_id, event_type, path, label, duration_ms,
		referrer, utm_source, utm_medium, timestamp
	FROM tracking_events
	WHERE timestamp >= @since AND timestamp <= @until
	ORDER BY timestamp ASC
`

// rangeArgs binds the bounds at the DateTime64(3) scale. Positional time.Time
// arguments are rendered in whole seconds.
func rangeArgs(since, until time.Time) []any {
	return []any{
		clickhouse.DateNamed("since", since.UTC(), clickhouse.MilliSeconds),
		clickhouse.DateNamed("until", until.UTC(), clickhouse.MilliSeconds),
	}
}

func (s *ClickHouseEventLog) Range(ctx context.Context, since, until time.Time) ([]models.Event, error) {
	rows, err := s.DB.Conn.Query(ctx, rangeQuery, rangeArgs(since, until)...)
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
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tracking events: %w", err)
	}

	s.log.Debug("Loaded tracking events from ClickHouse", zap.Int("count", len(events)))
	return events, nil
}

func (s *ClickHouseEventLog) Ping(ctx context.Context) error {
	return s.DB.Conn.Ping(ctx)
}
