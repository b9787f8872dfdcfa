package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"sitepulse/api/models"
)

const (
	defaultRequestTimeout   = 10 * time.Second
	defaultKeepaliveTimeout = 30 * time.Second
)

// SendOptions tunes a single delivery.
type SendOptions struct {
	// Keepalive lets the request outlive the page that issued it.
	Keepalive bool
}

// Transport delivers events to the ingestion endpoint. Send must not block
// and must never report failures to the caller.
type Transport interface {
	Send(ev models.Event, opts SendOptions)
}

// HTTPTransport posts events as JSON. Each send runs in its own goroutine;
// failed deliveries are logged at debug level and dropped. There are no
// retries and no queue.
type HTTPTransport struct {
	endpoint         string
	client           *http.Client
	pageCtx          context.Context
	closePage        context.CancelFunc
	requestTimeout   time.Duration
	keepaliveTimeout time.Duration
	inflight         sync.WaitGroup
	log              *zap.Logger
}

func NewHTTPTransport(endpoint string, client *http.Client, log *zap.Logger) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &HTTPTransport{
		endpoint:         endpoint,
		client:           client,
		pageCtx:          ctx,
		closePage:        cancel,
		requestTimeout:   defaultRequestTimeout,
		keepaliveTimeout: defaultKeepaliveTimeout,
		log:              log,
	}
}

func (t *HTTPTransport) Send(ev models.Event, opts SendOptions) {
	body, err := json.Marshal(ev)
	if err != nil {
		t.log.Debug("Dropping unencodable tracking event", zap.Error(err))
		return
	}

	var ctx context.Context
	var cancel context.CancelFunc
	if opts.Keepalive {
		ctx, cancel = context.WithTimeout(context.WithoutCancel(t.pageCtx), t.keepaliveTimeout)
	} else {
		ctx, cancel = context.WithTimeout(t.pageCtx, t.requestTimeout)
	}

	t.inflight.Add(1)
	go func() {
		defer t.inflight.Done()
		defer cancel()
		t.post(ctx, ev.Type, body)
	}()
}

func (t *HTTPTransport) post(ctx context.Context, eventType models.EventType, body []byte) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		t.log.Debug("Failed to build tracking request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		t.log.Debug("Tracking event not delivered",
			zap.String("type", string(eventType)),
			zap.Error(err))
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		t.log.Debug("Tracking event rejected",
			zap.String("type", string(eventType)),
			zap.Int("status", resp.StatusCode))
	}
}

// Close tears down the page context. In-flight ordinary sends are cancelled,
// keepalive sends run to completion.
func (t *HTTPTransport) Close() {
	t.closePage()
}

// Wait blocks until every in-flight send has finished.
func (t *HTTPTransport) Wait() {
	t.inflight.Wait()
}
