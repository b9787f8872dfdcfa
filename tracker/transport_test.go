package tracker

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sitepulse/api/models"
)

func TestHTTPTransport_PostsJSON(t *testing.T) {
	received := make(chan models.Event, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var ev models.Event
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&ev))
		received <- ev
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL, srv.Client(), zap.NewNop())
	transport.Send(models.Event{SessionID: "s", Type: models.EventPageView, Path: "/"}, SendOptions{})
	transport.Wait()

	select {
	case ev := <-received:
		assert.Equal(t, models.EventPageView, ev.Type)
		assert.Equal(t, "/", ev.Path)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestHTTPTransport_SwallowsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL, srv.Client(), zap.NewNop())
	assert.NotPanics(t, func() {
		transport.Send(models.Event{Type: models.EventClick}, SendOptions{})
		transport.Wait()
	})

	unreachable := NewHTTPTransport("http://127.0.0.1:1/api/track", nil, zap.NewNop())
	assert.NotPanics(t, func() {
		unreachable.Send(models.Event{Type: models.EventClick}, SendOptions{})
		unreachable.Wait()
	})
}

func TestHTTPTransport_KeepaliveOutlivesClose(t *testing.T) {
	release := make(chan struct{})
	delivered := make(chan models.EventType, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev models.Event
		_ = json.NewDecoder(r.Body).Decode(&ev)
		<-release
		select {
		case <-r.Context().Done():
			return
		default:
		}
		delivered <- ev.Type
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL, srv.Client(), zap.NewNop())
	transport.Send(models.Event{Type: models.EventPageExit, DurationMs: 500}, SendOptions{Keepalive: true})
	transport.Send(models.Event{Type: models.EventClick}, SendOptions{})

	// Let both requests reach the server before the page goes away.
	time.Sleep(100 * time.Millisecond)
	transport.Close()
	time.Sleep(100 * time.Millisecond)
	close(release)
	transport.Wait()

	select {
	case typ := <-delivered:
		assert.Equal(t, models.EventPageExit, typ)
	case <-time.After(2 * time.Second):
		t.Fatal("keepalive event not delivered")
	}
	assert.Empty(t, delivered)
}

func TestFileIdentityStore(t *testing.T) {
	store := NewFileIdentityStore(filepath.Join(t.TempDir(), "tracking", "session"))

	id, err := store.SessionID()
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, store.SetSessionID("abc-123"))

	reopened := NewFileIdentityStore(store.path)
	id, err = reopened.SessionID()
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)

	require.NoError(t, reopened.ClearSessionID())
	require.NoError(t, reopened.ClearSessionID())
	id, err = reopened.SessionID()
	require.NoError(t, err)
	assert.Empty(t, id)
}
