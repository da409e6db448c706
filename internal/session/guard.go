package session

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// State of a Guard.
type State int

const (
	Active State = iota
	Expired
)

func (s State) String() string {
	if s == Expired {
		return "expired"
	}
	return "active"
}

// Guard logs a tab out after a period without activity. It owns exactly one
// timer. Every activity signal cancels the pending timer before arming a new
// one, and a generation counter makes a stale timer that already started
// firing a no-op.
//
// Expired is terminal. A Guard is created armed by Install and released with
// Teardown, which is safe to call any number of times.
type Guard struct {
	clock    clockwork.Clock
	timeout  time.Duration
	onExpire func()

	mu       sync.Mutex
	timer    clockwork.Timer
	gen      uint64
	state    State
	released bool
}

// Install arms a new guard. onExpire runs once, on its own goroutine, when
// timeout passes with no activity.
func Install(clock clockwork.Clock, timeout time.Duration, onExpire func()) *Guard {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	g := &Guard{clock: clock, timeout: timeout, onExpire: onExpire}
	g.mu.Lock()
	g.armLocked()
	g.mu.Unlock()
	return g
}

// armLocked stops the current timer, if any, and starts a fresh one.
func (g *Guard) armLocked() {
	if g.timer != nil {
		g.timer.Stop()
	}
	g.gen++
	gen := g.gen
	g.timer = g.clock.AfterFunc(g.timeout, func() { g.fire(gen) })
}

func (g *Guard) fire(gen uint64) {
	g.mu.Lock()
	if gen != g.gen || g.released || g.state == Expired {
		g.mu.Unlock()
		return
	}
	g.state = Expired
	g.timer = nil
	g.mu.Unlock()

	if g.onExpire != nil {
		g.onExpire()
	}
}

// Signal records activity. It returns true when the timer was re-armed.
func (g *Guard) Signal(s Signal) bool {
	if !s.CountsAsActivity() {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.released || g.state == Expired {
		return false
	}
	g.armLocked()
	return true
}

// Teardown cancels the timer and detaches the guard.
func (g *Guard) Teardown() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.gen++
	g.released = true
}

// State reports whether the guard has expired.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Released reports whether Teardown has been called.
func (g *Guard) Released() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.released
}
