// Package tracker is the visitor-side half of the tracking pipeline: it keeps
// the session identity, decides which pages are tracked, and emits
// PAGE_VIEW, PAGE_EXIT and CLICK events through a Transport.
package tracker

import (
	"net/url"
	"time"

	"go.uber.org/zap"

	"sitepulse/api/classify"
	"sitepulse/api/models"
)

// ClickDebounce is the minimum gap between two accepted clicks.
const ClickDebounce = 200 * time.Millisecond

// Config wires a Manager to its platform services. Transport and Identity are
// required; everything else has a default.
type Config struct {
	Transport Transport
	Identity  IdentityStore
	IDs       IDGenerator
	// Trackable defaults to classify.DefaultPathPolicy().Trackable.
	Trackable func(path string) bool
	// Referrer is the document's inbound referrer. It is reported once,
	// on the first page view of the browsing context.
	Referrer string
	Now      func() time.Time
	Log      *zap.Logger
}

type pageState struct {
	located  bool
	path     string
	rawQuery string

	active    bool
	startedAt time.Time

	referrerReported bool
	lastClickAt      time.Time
	clicked          bool
}

// Manager is the per browsing context state machine. It is Idle while the
// current path is untracked and Active otherwise. A Manager is not safe for
// concurrent use; signals are expected from a single event loop.
type Manager struct {
	transport Transport
	identity  IdentityStore
	ids       IDGenerator
	trackable func(string) bool
	referrer  string
	now       func() time.Time
	log       *zap.Logger

	sessionID string
	state     pageState
}

func NewManager(cfg Config) *Manager {
	m := &Manager{
		transport: cfg.Transport,
		identity:  cfg.Identity,
		ids:       cfg.IDs,
		trackable: cfg.Trackable,
		referrer:  cfg.Referrer,
		now:       cfg.Now,
		log:       cfg.Log,
	}
	if m.ids == nil {
		m.ids = DefaultIDGenerator
	}
	if m.trackable == nil {
		m.trackable = classify.DefaultPathPolicy().Trackable
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	return m
}

// Active reports whether the current path is being tracked.
func (m *Manager) Active() bool {
	return m.state.active
}

// Navigate handles a path or query change. The previous page is flushed
// before the next PAGE_VIEW is emitted.
func (m *Manager) Navigate(target string) {
	u, err := url.Parse(target)
	if err != nil {
		m.log.Debug("Ignoring unparsable navigation target", zap.String("target", target), zap.Error(err))
		return
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	if m.state.located && path == m.state.path && u.RawQuery == m.state.rawQuery {
		return
	}

	now := m.now()
	m.flush(now, false)

	m.state.located = true
	m.state.path = path
	m.state.rawQuery = u.RawQuery

	if !m.trackable(path) {
		m.state.active = false
		m.state.startedAt = time.Time{}
		return
	}

	m.state.active = true
	m.state.startedAt = now

	query := u.Query()
	ev := models.Event{
		SessionID: m.session(),
		Type:      models.EventPageView,
		Path:      path,
		UTMSource: query.Get("utm_source"),
		UTMMedium: query.Get("utm_medium"),
		Timestamp: now,
	}
	if !m.state.referrerReported {
		ev.Referrer = m.referrer
		m.state.referrerReported = true
	}
	m.transport.Send(ev, SendOptions{})
}

// Hide handles the tab being backgrounded or discarded. The elapsed time is
// flushed with keepalive delivery and the clock restarts, so hidden time is
// never counted if the tab comes back on the same path.
func (m *Manager) Hide() {
	if !m.state.active {
		return
	}
	now := m.now()
	m.flush(now, true)
	m.state.startedAt = now
}

// Click handles a click on el while the page is tracked.
func (m *Manager) Click(el Element) {
	if !m.state.active || el == nil {
		return
	}
	now := m.now()
	if m.state.clicked && now.Sub(m.state.lastClickAt) < ClickDebounce {
		return
	}
	target := interactiveAncestor(el)
	if target == nil {
		return
	}

	m.state.clicked = true
	m.state.lastClickAt = now
	m.transport.Send(models.Event{
		SessionID: m.session(),
		Type:      models.EventClick,
		Path:      m.state.path,
		Label:     clickLabel(target),
		Timestamp: now,
	}, SendOptions{})
}

// ClearSession forgets the durable identifier. The next event starts a new session.
func (m *Manager) ClearSession() {
	m.sessionID = ""
	if err := m.identity.ClearSessionID(); err != nil {
		m.log.Debug("Failed to clear session id", zap.Error(err))
	}
}

func (m *Manager) flush(now time.Time, keepalive bool) {
	if !m.state.active || m.state.startedAt.IsZero() {
		return
	}
	durationMs := now.Sub(m.state.startedAt).Milliseconds()
	if durationMs < models.MinDwellMs {
		return
	}
	m.transport.Send(models.Event{
		SessionID:  m.session(),
		Type:       models.EventPageExit,
		Path:       m.state.path,
		DurationMs: durationMs,
		Timestamp:  now,
	}, SendOptions{Keepalive: keepalive})
}

// session resolves the identifier lazily: memory, then durable storage,
// then a freshly generated id that is persisted before first use.
func (m *Manager) session() string {
	if m.sessionID != "" {
		return m.sessionID
	}
	id, err := m.identity.SessionID()
	if err != nil {
		m.log.Debug("Failed to read session id", zap.Error(err))
	}
	if id == "" {
		id = m.ids.NewID()
		if err := m.identity.SetSessionID(id); err != nil {
			m.log.Debug("Failed to persist session id", zap.Error(err))
		}
	}
	m.sessionID = id
	return id
}
