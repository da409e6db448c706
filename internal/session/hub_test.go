package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billhub/internal/core"
	"billhub/internal/log"
)

func newTestHub(t *testing.T) (*Hub, *clockwork.FakeClock, *MemoryKV) {
	t.Helper()
	kv := NewMemoryKV(1000)
	clock := clockwork.NewFakeClock()
	h := NewHub(kv, clock, Config{IdleTimeout: time.Second, IdleMessage: "idle"}, log.Discard())
	t.Cleanup(h.Close)
	return h, clock, kv
}

func TestHub_ExpiryClearsSessionAndRedirects(t *testing.T) {
	ctx := context.Background()
	h, clock, _ := newTestHub(t)
	tiers := h.Tiers("dev", "tab")
	require.NoError(t, tiers.Durable.Set(ctx, KeyUserPhone, "0770"))
	require.NoError(t, tiers.Tab.Set(ctx, KeyUserPhone, "0770"))

	var expired atomic.Int32
	h.OnExpire(func(string) { expired.Add(1) })
	h.Install("page", "dev", "tab")
	assert.Equal(t, Status{State: "active"}, h.Status("page"))

	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return expired.Load() == 1 }, waitFor, tick)

	assert.Equal(t, 0, h.Len(), "fired guard is dropped")
	assert.Equal(t, Status{State: "expired", Redirect: "/"}, h.Status("page"))
	assert.Equal(t, Status{State: "none"}, h.Status("page"), "redirect is handed out once")

	_, err := Identity(ctx, tiers)
	assert.ErrorIs(t, err, ErrNoIdentity)

	n, ok, err := TakeFlash(ctx, tiers.Tab)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, core.Notification{Kind: core.NotificationInfo, Message: "idle"}, n)

	_, ok, _ = TakeFlash(ctx, tiers.Tab)
	assert.False(t, ok, "flash is shown once")
}

func TestHub_InstallReplacesPreviousGuard(t *testing.T) {
	h, clock, _ := newTestHub(t)
	var expired atomic.Int32
	h.OnExpire(func(string) { expired.Add(1) })

	first := h.Install("page", "dev", "tab")
	clock.Advance(600 * time.Millisecond)
	h.Install("page", "dev", "tab")
	assert.True(t, first.Released())
	assert.Equal(t, 1, h.Len())

	clock.Advance(600 * time.Millisecond)
	assert.Never(t, func() bool { return expired.Load() > 0 }, quiet, tick)

	clock.Advance(400 * time.Millisecond)
	require.Eventually(t, func() bool { return expired.Load() == 1 }, waitFor, tick)
	assert.Never(t, func() bool { return expired.Load() > 1 }, quiet, tick)
}

func TestHub_SignalKeepsAlive(t *testing.T) {
	h, clock, _ := newTestHub(t)
	h.Install("page", "dev", "tab")

	for i := 0; i < 5; i++ {
		clock.Advance(800 * time.Millisecond)
		require.True(t, h.Signal("page", Signal{Kind: KeyDown}))
	}
	assert.Equal(t, "active", h.Status("page").State)
	assert.False(t, h.Signal("other", Signal{Kind: KeyDown}))
}

func TestHub_ReleaseStopsTimer(t *testing.T) {
	h, clock, _ := newTestHub(t)
	var expired atomic.Int32
	h.OnExpire(func(string) { expired.Add(1) })

	h.Install("page", "dev", "tab")
	h.Release("page")
	h.Release("page")
	clock.Advance(5 * time.Second)
	assert.Never(t, func() bool { return expired.Load() > 0 }, quiet, tick)
	assert.Equal(t, "none", h.Status("page").State)
}

func TestHub_ExpiredGuardsAreNotHeld(t *testing.T) {
	h, clock, _ := newTestHub(t)
	var expired atomic.Int32
	h.OnExpire(func(string) { expired.Add(1) })

	for i := 0; i < 50; i++ {
		h.Install(fmt.Sprintf("page-%d", i), "dev", fmt.Sprintf("tab-%d", i))
	}
	assert.Equal(t, 50, h.Len())

	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return expired.Load() == 50 }, waitFor, tick)
	assert.Equal(t, 0, h.Len())

	// Nobody came back for the redirects.
	assert.Equal(t, 0, h.CleanExpired())
	clock.Advance(11 * time.Minute)
	assert.Equal(t, 50, h.CleanExpired())
	assert.Equal(t, Status{State: "none"}, h.Status("page-0"))
}

func TestHub_UnmountedPageIsReleasedNotExpired(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV(1000)
	clock := clockwork.NewFakeClock()
	h := NewHub(kv, clock, Config{IdleTimeout: 3 * time.Minute}, log.Discard())
	t.Cleanup(h.Close)

	tiers := h.Tiers("dev", "tab")
	require.NoError(t, SignIn(ctx, tiers, "0770", true))

	var expired atomic.Int32
	h.OnExpire(func(string) { expired.Add(1) })
	h.Install("page", "dev", "tab")

	// The page never polls, as after the browser was closed.
	clock.Advance(3 * time.Minute)
	require.Eventually(t, func() bool { return h.Len() == 0 }, waitFor, tick)
	assert.Never(t, func() bool { return expired.Load() > 0 }, quiet, tick)
	assert.Equal(t, Status{State: "none"}, h.Status("page"))

	phone, err := Identity(ctx, tiers)
	require.NoError(t, err)
	assert.Equal(t, "0770", phone)
}

func TestHub_PollingPageExpires(t *testing.T) {
	h := NewHub(NewMemoryKV(100), clockwork.NewFakeClock(), Config{IdleTimeout: 3 * time.Minute}, log.Discard())
	t.Cleanup(h.Close)
	clock := h.clock.(*clockwork.FakeClock)

	var expired atomic.Int32
	h.OnExpire(func(string) { expired.Add(1) })
	h.Install("page", "dev", "tab")

	clock.Advance(2*time.Minute + 50*time.Second)
	assert.Equal(t, "active", h.Status("page").State)
	clock.Advance(10 * time.Second)
	require.Eventually(t, func() bool { return expired.Load() == 1 }, waitFor, tick)
	assert.Equal(t, Status{State: "expired", Redirect: "/"}, h.Status("page"))
}

func TestHub_ImmediateExpiryKeepsRedirect(t *testing.T) {
	// A zero timeout fires while Install is still running.
	h := NewHub(NewMemoryKV(100), clockwork.NewFakeClock(), Config{IdleTimeout: 0}, log.Discard())
	t.Cleanup(h.Close)

	var expired atomic.Int32
	h.OnExpire(func(string) { expired.Add(1) })
	h.Install("page", "dev", "tab")

	require.Eventually(t, func() bool { return expired.Load() == 1 }, waitFor, tick)
	assert.Equal(t, Status{State: "expired", Redirect: "/"}, h.Status("page"))
}

func TestHub_TiersAreIsolated(t *testing.T) {
	ctx := context.Background()
	h, _, _ := newTestHub(t)
	a := h.Tiers("dev-a", "tab-a")
	b := h.Tiers("dev-b", "tab-b")

	require.NoError(t, SignIn(ctx, a, "111", true))
	_, err := Identity(ctx, b)
	assert.ErrorIs(t, err, ErrNoIdentity)
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("storage unavailable")
}
func (failingStore) Set(context.Context, string, string) error {
	return errors.New("storage unavailable")
}
func (failingStore) Remove(context.Context, string) error { return errors.New("storage unavailable") }

func TestEndSession_StorageFailureStillNavigates(t *testing.T) {
	var went string
	nav := NavigatorFunc(func(p string) { went = p })
	EndSession(context.Background(), Tiers{Durable: failingStore{}, Tab: failingStore{}}, nav,
		core.Notification{Kind: core.NotificationInfo, Message: "bye"}, EntryPath, log.Discard())
	assert.Equal(t, "/", went)
}
