package aggregate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sitepulse/api/models"
)

// EventSource reads the durable event log.
type EventSource interface {
	Range(ctx context.Context, since, until time.Time) ([]models.Event, error)
}

// SummaryService loads a date range from the event log and summarizes it.
type SummaryService struct {
	source     EventSource
	classifier TrafficClassifier
	log        *zap.Logger
}

func NewSummaryService(source EventSource, classifier TrafficClassifier, log *zap.Logger) *SummaryService {
	return &SummaryService{
		source:     source,
		classifier: classifier,
		log:        log,
	}
}

// Summary builds the summary for [since, until]. It holds no state between calls.
func (s *SummaryService) Summary(ctx context.Context, since, until time.Time) (models.TrackingSummary, error) {
	if until.Before(since) {
		return models.TrackingSummary{}, fmt.Errorf("since %s is after until %s", since.Format(time.RFC3339), until.Format(time.RFC3339))
	}

	events, err := s.source.Range(ctx, since, until)
	if err != nil {
		return models.TrackingSummary{}, fmt.Errorf("failed to read events: %w", err)
	}

	summary := Summarize(events, since, until, s.classifier)

	s.log.Debug("Tracking summary computed",
		zap.Time("since", since),
		zap.Time("until", until),
		zap.Int("events", len(events)),
		zap.Int("pages", len(summary.Pages)))

	return summary, nil
}
