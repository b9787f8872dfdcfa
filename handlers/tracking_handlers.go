package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sitepulse/api/metrics"
	"sitepulse/api/models"
	"sitepulse/api/store"
	"sitepulse/api/utils"
)

const (
	maxEventBodyBytes = 16 << 10
	ingestTimeout     = 15 * time.Second
	summaryTimeout    = 10 * time.Second
)

// SummaryProvider computes tracking summaries for a time range.
type SummaryProvider interface {
	Summary(ctx context.Context, since, until time.Time) (models.TrackingSummary, error)
}

type TrackingHandlers struct {
	Events       store.EventLog
	Summaries    SummaryProvider
	MaxRangeDays int
	// Trackable, when set, rejects events for paths outside the tracked set.
	Trackable func(path string) bool
	now       func() time.Time
	log       *zap.Logger
}

func NewTrackingHandlers(events store.EventLog, summaries SummaryProvider, maxRangeDays int, log *zap.Logger) *TrackingHandlers {
	return &TrackingHandlers{
		Events:       events,
		Summaries:    summaries,
		MaxRangeDays: maxRangeDays,
		now:          time.Now,
		log:          log,
	}
}

// TrackEvent handles POST /api/track. The endpoint is public; a payload is
// either stored in full or rejected without side effects.
func (h *TrackingHandlers) TrackEvent(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxEventBodyBytes)

	var ev models.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		metrics.EventsRejected.WithLabelValues(metrics.ReasonMalformed).Inc()
		h.log.Debug("Malformed tracking payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	now := h.now().UTC()
	if err := ev.Validate(now); err != nil {
		metrics.EventsRejected.WithLabelValues(metrics.ReasonInvalid).Inc()
		h.log.Debug("Invalid tracking event",
			zap.Error(err),
			zap.String("type", string(ev.Type)),
			zap.String("path", ev.Path))
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}
	if h.Trackable != nil && !h.Trackable(ev.Path) {
		metrics.EventsRejected.WithLabelValues(metrics.ReasonInvalid).Inc()
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "path is not tracked",
		})
		return
	}

	ev.ID = utils.NewEventID()
	if ev.Timestamp.IsZero() {
		ev.Timestamp = now
	}
	ev.Timestamp = ev.Timestamp.UTC()
	ev.Label = models.TruncateLabel(ev.Label)

	ctx, cancel := context.WithTimeout(c.Request.Context(), ingestTimeout)
	defer cancel()

	if err := h.Events.Append(ctx, ev); err != nil {
		metrics.EventsRejected.WithLabelValues(metrics.ReasonStoreError).Inc()
		h.log.Error("Failed to store tracking event",
			zap.Error(err),
			zap.String("event_id", ev.ID),
			zap.String("type", string(ev.Type)))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: "failed to record tracking event",
		})
		return
	}

	metrics.EventsIngested.WithLabelValues(string(ev.Type)).Inc()
	c.JSON(http.StatusAccepted, models.IngestResponse{
		EventID: ev.ID,
		Status:  "accepted",
	})
}

// GetSummary handles GET /api/tracking/summary?days=N or ?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *TrackingHandlers) GetSummary(c *gin.Context) {
	rng, err := utils.ParseRange(c.Query("days"), c.Query("from"), c.Query("to"), h.now(), h.MaxRangeDays)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), summaryTimeout)
	defer cancel()

	start := time.Now()
	summary, err := h.Summaries.Summary(ctx, rng.Since, rng.Until)
	if err != nil {
		metrics.SummaryQueryDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		h.log.Error("Failed to compute tracking summary",
			zap.Error(err),
			zap.Time("since", rng.Since),
			zap.Time("until", rng.Until))
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		c.JSON(status, models.ErrorResponse{
			Error:   "internal_error",
			Message: "failed to retrieve tracking summary",
		})
		return
	}
	metrics.SummaryQueryDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	c.JSON(http.StatusOK, summary)
}

// Health handles GET /health by pinging the event log.
func (h *TrackingHandlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.Events.Ping(ctx); err != nil {
		h.log.Warn("Event log unreachable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
