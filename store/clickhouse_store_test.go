package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sitepulse/api/database"
	"sitepulse/api/models"
)

// recordingConn captures the statements the event log issues.
type recordingConn struct {
	driver.Conn
	query string
	args  []any
	rows  *staticRows
	batch *recordingBatch
}

func (c *recordingConn) Query(_ context.Context, query string, args ...any) (driver.Rows, error) {
	c.query, c.args = query, args
	if c.rows == nil {
		return nil, errors.New("no rows configured")
	}
	return c.rows, nil
}

func (c *recordingConn) PrepareBatch(_ context.Context, query string, _ ...driver.PrepareBatchOption) (driver.Batch, error) {
	c.query = query
	c.batch = &recordingBatch{}
	return c.batch, nil
}

type recordingBatch struct {
	driver.Batch
	values []any
	sent   bool
}

func (b *recordingBatch) Append(v ...any) error {
	b.values = v
	return nil
}

func (b *recordingBatch) Send() error {
	b.sent = true
	return nil
}

type staticRows struct {
	driver.Rows
	events []models.Event
	pos    int
}

func (r *staticRows) Next() bool {
	r.pos++
	return r.pos <= len(r.events)
}

func (r *staticRows) Scan(dest ...any) error {
	ev := r.events[r.pos-1]
	*dest[0].(*string) = ev.ID
	*dest[1].(*string) = ev.SessionID
	*dest[2].(*string) = string(ev.Type)
	*dest[3].(*string) = ev.Path
	*dest[4].(*string) = ev.Label
	*dest[5].(*int64) = ev.DurationMs
	*dest[6].(*string) = ev.Referrer
	*dest[7].(*string) = ev.UTMSource
	*dest[8].(*string) = ev.UTMMedium
	*dest[9].(*time.Time) = ev.Timestamp
	return nil
}

func (r *staticRows) Err() error   { return nil }
func (r *staticRows) Close() error { return nil }

func newRecordingLog(conn *recordingConn) *ClickHouseEventLog {
	return NewClickHouseEventLog(&database.ClickHouseClient{Conn: conn}, zap.NewNop())
}

func TestClickHouseEventLog_RangeBindsMilliseconds(t *testing.T) {
	conn := &recordingConn{rows: &staticRows{}}
	events := newRecordingLog(conn)

	since := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 10, 7, 23, 59, 59, 999_000_000, time.UTC)

	_, err := events.Range(context.Background(), since, until)
	require.NoError(t, err)

	assert.Contains(t, conn.query, "timestamp >= @since AND timestamp <= @until")
	require.Len(t, conn.args, 2)
	assert.Equal(t, clickhouse.DateNamed("since", since, clickhouse.MilliSeconds), conn.args[0])
	assert.Equal(t, clickhouse.DateNamed("until", until, clickhouse.MilliSeconds), conn.args[1])
}

func TestClickHouseEventLog_RangeKeepsSubSecondUpperBound(t *testing.T) {
	conn := &recordingConn{rows: &staticRows{}}
	events := newRecordingLog(conn)

	loc := time.FixedZone("CEST", 2*60*60)
	until := time.Date(2026, 10, 8, 1, 59, 59, 500_000_000, loc)

	_, err := events.Range(context.Background(), until.Add(-time.Hour), until)
	require.NoError(t, err)

	bound, ok := conn.args[1].(driver.NamedDateValue)
	require.True(t, ok)
	assert.Equal(t, uint8(clickhouse.MilliSeconds), bound.Scale)
	assert.Equal(t, time.Date(2026, 10, 7, 23, 59, 59, 500_000_000, time.UTC), bound.Value)
	assert.Equal(t, time.UTC, bound.Value.Location())
}

func TestClickHouseEventLog_RangeScansRows(t *testing.T) {
	ts := time.Date(2026, 10, 7, 23, 59, 59, 500_000_000, time.UTC)
	stored := []models.Event{
		{ID: "e1", SessionID: "s1", Type: models.EventPageView, Path: "/", Referrer: "https://www.google.com/", Timestamp: ts},
		{ID: "e2", SessionID: "s1", Type: models.EventPageExit, Path: "/", DurationMs: 4000, Timestamp: ts},
	}
	conn := &recordingConn{rows: &staticRows{events: stored}}

	got, err := newRecordingLog(conn).Range(context.Background(), ts.Add(-time.Hour), ts)

	require.NoError(t, err)
	assert.Equal(t, stored, got)
}

func TestClickHouseEventLog_RangeQueryError(t *testing.T) {
	conn := &recordingConn{}

	_, err := newRecordingLog(conn).Range(context.Background(), time.Now().Add(-time.Hour), time.Now())

	assert.Error(t, err)
}

func TestClickHouseEventLog_Append(t *testing.T) {
	conn := &recordingConn{}
	ts := time.Date(2026, 10, 7, 14, 0, 0, 0, time.FixedZone("EST", -5*60*60))

	err := newRecordingLog(conn).Append(context.Background(), models.Event{
		ID: "e1", SessionID: "s1", Type: models.EventClick, Path: "/blog", Label: "Subscribe",
		UTMSource: "google", UTMMedium: "organic", Timestamp: ts,
	})

	require.NoError(t, err)
	assert.Contains(t, conn.query, "INSERT INTO tracking_events")
	require.NotNil(t, conn.batch)
	assert.True(t, conn.batch.sent)
	assert.Equal(t, []any{
		"e1", "s1", "CLICK", "/blog", "Subscribe", int64(0), "", "google", "organic", ts.UTC(),
	}, conn.batch.values)
}
