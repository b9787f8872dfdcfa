package dashboard

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"sitepulse/api/models"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// ErrNoQuery is returned by Retry before any query has been made.
var ErrNoQuery = errors.New("dashboard: nothing to retry")

// SummaryFetcher is satisfied by *Client.
type SummaryFetcher interface {
	Summary(ctx context.Context, rng Range) (models.TrackingSummary, error)
}

// Snapshot is what a view renders.
type Snapshot struct {
	State   State
	Range   Range
	Summary models.TrackingSummary
	Err     string
}

// Board holds the dashboard's current summary. A failed load moves it to
// StateError and keeps the previous summary so the view can still show it.
type Board struct {
	fetcher SummaryFetcher
	log     *zap.Logger

	mu       sync.Mutex
	state    State
	rng      Range
	hasQuery bool
	summary  models.TrackingSummary
	errMsg   string
	seq      uint64
}

func NewBoard(fetcher SummaryFetcher, log *zap.Logger) *Board {
	return &Board{fetcher: fetcher, log: log}
}

// Load queries rng and records the outcome. Only the latest Load may update
// the board; results of superseded loads are dropped.
func (b *Board) Load(ctx context.Context, rng Range) error {
	b.mu.Lock()
	b.seq++
	seq := b.seq
	b.state = StateLoading
	b.rng = rng
	b.hasQuery = true
	b.errMsg = ""
	b.mu.Unlock()

	summary, err := b.fetcher.Summary(ctx, rng)

	b.mu.Lock()
	defer b.mu.Unlock()
	if seq != b.seq {
		return err
	}
	if err != nil {
		b.state = StateError
		b.errMsg = err.Error()
		b.log.Warn("Failed to load tracking summary", zap.Error(err), zap.Stringer("range", rng))
		return err
	}
	b.state = StateReady
	b.summary = summary
	return nil
}

// Retry re-issues the most recent query.
func (b *Board) Retry(ctx context.Context) error {
	b.mu.Lock()
	rng, ok := b.rng, b.hasQuery
	b.mu.Unlock()
	if !ok {
		return ErrNoQuery
	}
	return b.Load(ctx, rng)
}

func (b *Board) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{State: b.state, Range: b.rng, Summary: b.summary, Err: b.errMsg}
}
