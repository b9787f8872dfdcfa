package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitepulse/api/models"
)

func TestMemoryEventLog_Range(t *testing.T) {
	log := NewMemoryEventLog()
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, log.Append(ctx, models.Event{ID: "late", Timestamp: base.Add(2 * time.Hour)}))
	require.NoError(t, log.Append(ctx, models.Event{ID: "early", Timestamp: base.Add(time.Hour)}))
	require.NoError(t, log.Append(ctx, models.Event{ID: "outside", Timestamp: base.AddDate(0, 0, 3)}))

	events, err := log.Range(ctx, base, base.Add(2*time.Hour))

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "early", events[0].ID)
	assert.Equal(t, "late", events[1].ID)
	assert.Equal(t, 3, log.Len())
}

func TestMemoryEventLog_ConcurrentAppends(t *testing.T) {
	log := NewMemoryEventLog()
	ctx := context.Background()
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = log.Append(ctx, models.Event{Type: models.EventPageView, Timestamp: now})
		}()
	}
	wg.Wait()

	events, err := log.Range(ctx, now.Add(-time.Second), now.Add(time.Second))
	require.NoError(t, err)
	assert.Len(t, events, 50)
}
