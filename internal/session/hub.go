package session

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"billhub/internal/core"
	"billhub/internal/log"
)

const (
	tierDurable = "durable"
	tierTab     = "tab"

	// EntryPath is the unauthenticated entry screen.
	EntryPath = "/"

	DefaultIdleMessage = "You were logged out due to inactivity"
)

// Config tunes a Hub.
type Config struct {
	IdleTimeout time.Duration
	IdleMessage string
	DurableTTL  time.Duration
	TabTTL      time.Duration
	// ExpireTimeout bounds the storage writes done on expiry.
	ExpireTimeout time.Duration
	// StaleAfter is how long a page may go without polling before its guard
	// counts as unmounted. An unmounted guard is released when it fires.
	StaleAfter time.Duration
	// PendingTTL bounds how long an unclaimed expiry redirect is kept.
	PendingTTL time.Duration
}

// Status is what a page learns when it polls its guard.
type Status struct {
	State    string `json:"state"`
	Redirect string `json:"redirect,omitempty"`
}

type guardEntry struct {
	guard  *Guard
	device string
	tab    string
	seen   time.Time
}

type pendingNav struct {
	path string
	at   time.Time
}

// Hub owns the guard of every mounted page and the storage tiers they use.
// Guards are keyed by a page id minted when a protected page is rendered.
// Installing under an id that already has a guard tears the old one down
// first, so a page never has two timers.
type Hub struct {
	kv     KV
	clock  clockwork.Clock
	cfg    Config
	logger *log.Logger

	mu       sync.Mutex
	guards   map[string]*guardEntry
	pending  map[string]pendingNav
	onExpire []func(pageID string)
}

// NewHub creates a hub. A nil clock means the real clock.
func NewHub(kv KV, clock clockwork.Clock, cfg Config, logger *log.Logger) *Hub {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if cfg.IdleMessage == "" {
		cfg.IdleMessage = DefaultIdleMessage
	}
	if cfg.ExpireTimeout <= 0 {
		cfg.ExpireTimeout = 5 * time.Second
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 30 * time.Second
	}
	if cfg.PendingTTL <= 0 {
		cfg.PendingTTL = 10 * time.Minute
	}
	return &Hub{
		kv:      kv,
		clock:   clock,
		cfg:     cfg,
		logger:  logger.WithComponent(log.ComponentSession),
		guards:  make(map[string]*guardEntry),
		pending: make(map[string]pendingNav),
	}
}

// Tiers returns the storage tiers for a device and tab.
func (h *Hub) Tiers(deviceID, tabID string) Tiers {
	return Tiers{
		Durable: Scoped(h.kv, tierDurable, deviceID, h.cfg.DurableTTL),
		Tab:     Scoped(h.kv, tierTab, tabID, h.cfg.TabTTL),
	}
}

// OnExpire registers a callback run after a page's session expires.
func (h *Hub) OnExpire(fn func(pageID string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onExpire = append(h.onExpire, fn)
}

// Install arms a fresh guard for the page, replacing any previous one. The
// device and tab ids select the storage tiers cleared on expiry.
func (h *Hub) Install(pageID, deviceID, tabID string) *Guard {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.guards[pageID]; ok {
		old.guard.Teardown()
	}
	delete(h.pending, pageID)

	e := &guardEntry{device: deviceID, tab: tabID, seen: h.clock.Now()}
	h.guards[pageID] = e
	// The timer cannot reach expire before we unlock, and by then e.guard is set.
	e.guard = Install(h.clock, h.cfg.IdleTimeout, func() { h.expire(pageID, e) })
	return e.guard
}

func (h *Hub) expire(pageID string, e *guardEntry) {
	h.mu.Lock()
	if h.guards[pageID] != e {
		h.mu.Unlock()
		return
	}
	if h.clock.Since(e.seen) > h.cfg.StaleAfter {
		delete(h.guards, pageID)
		h.mu.Unlock()
		h.logger.Debug("Released idle guard of unmounted page",
			log.FieldTabID, e.tab, log.FieldOperation, log.OpExpire)
		return
	}
	h.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), h.cfg.ExpireTimeout)
	defer cancel()

	var redirect string
	nav := NavigatorFunc(func(path string) { redirect = path })
	notice := core.Notification{Kind: core.NotificationInfo, Message: h.cfg.IdleMessage}
	EndSession(ctx, h.Tiers(e.device, e.tab), nav, notice, EntryPath, h.logger)

	h.logger.InfoContext(ctx, "Session expired after inactivity",
		log.FieldTabID, e.tab, log.FieldOperation, log.OpExpire)

	h.mu.Lock()
	if h.guards[pageID] == e {
		delete(h.guards, pageID)
		h.pending[pageID] = pendingNav{path: redirect, at: h.clock.Now()}
	}
	hooks := append([]func(string){}, h.onExpire...)
	h.mu.Unlock()
	for _, fn := range hooks {
		fn(pageID)
	}
}

// Signal forwards activity to the page's guard. It returns false when the
// page has no live guard or the signal did not count as activity.
func (h *Hub) Signal(pageID string, s Signal) bool {
	h.mu.Lock()
	e, ok := h.guards[pageID]
	if ok {
		e.seen = h.clock.Now()
	}
	h.mu.Unlock()
	if !ok {
		return false
	}
	return e.guard.Signal(s)
}

// Status reports the page's guard state and marks the page as still mounted.
// A pending navigation is handed out once.
func (h *Hub) Status(pageID string) Status {
	h.mu.Lock()
	defer h.mu.Unlock()

	if p, ok := h.pending[pageID]; ok {
		delete(h.pending, pageID)
		return Status{State: Expired.String(), Redirect: p.path}
	}
	e, ok := h.guards[pageID]
	if !ok {
		return Status{State: "none"}
	}
	e.seen = h.clock.Now()
	return Status{State: e.guard.State().String()}
}

// Release tears down the page's guard when the page unmounts or its user
// signs out.
func (h *Hub) Release(pageID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if e, ok := h.guards[pageID]; ok {
		e.guard.Teardown()
		delete(h.guards, pageID)
	}
	delete(h.pending, pageID)
}

// Len returns the number of pages with a live guard.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.guards)
}

// CleanExpired drops expiry redirects no page came back for.
func (h *Hub) CleanExpired() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for id, p := range h.pending {
		if h.clock.Since(p.at) > h.cfg.PendingTTL {
			delete(h.pending, id)
			n++
		}
	}
	return n
}

// Close tears down every guard.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, e := range h.guards {
		e.guard.Teardown()
		delete(h.guards, id)
	}
	clear(h.pending)
}

// Ping checks the backing store.
func (h *Hub) Ping(ctx context.Context) error {
	return h.kv.Ping(ctx)
}
