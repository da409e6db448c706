package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billhub/internal/cache"
	"billhub/internal/core"
	"billhub/internal/log"
	"billhub/internal/prefs"
	"billhub/internal/services"
	"billhub/internal/session"
	"billhub/internal/storage"
)

const (
	testPhone    = "07701234567"
	testPassword = "secret1"
)

type testEnv struct {
	srv   *httptest.Server
	repo  *storage.MemoryRepository
	hub   *session.Hub
	clock *clockwork.FakeClock
}

func newTestEnv(t *testing.T, checks map[string]Pinger) *testEnv {
	t.Helper()
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	auth := services.NewAuthService(repo, log.Discard())
	_, err := auth.Register(ctx, services.RegisterInput{Phone: testPhone, Name: "Ali", LastName: "Hassan", Password: testPassword})
	require.NoError(t, err)

	bills := []core.Bill{
		{ID: "W-1", Amount: 12500, Status: core.StatusUnpaid, DueDate: core.DueAt(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)), Month: "3", Year: "2024", Category: core.Water},
		{ID: "W-2", Amount: 9000, Status: core.StatusPaid, DueDate: core.DueAt(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)), Month: "2", Year: "2024", Category: core.Water},
		{ID: "E-1", Amount: 40000, Status: core.StatusUnpaid, DueDate: core.DueString("2024-03-15"), Month: "3", Year: "2024", Category: core.Electricity},
	}
	for _, b := range bills {
		require.NoError(t, repo.PutBill(ctx, testPhone, b))
	}

	clock := clockwork.NewFakeClock()
	hub := session.NewHub(session.NewMemoryKV(1000), clock, session.Config{IdleTimeout: 3 * time.Minute}, log.Discard())
	billSvc := services.NewBillService(repo, repo, nil, cache.NewLRUCache[[]core.Bill](100, time.Minute), log.Discard())

	s, err := NewServer(Config{RateLimitPerMinute: 10_000}, Deps{
		Auth:   auth,
		Bills:  billSvc,
		Hub:    hub,
		Checks: checks,
		Logger: log.Discard(),
	})
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler)
	t.Cleanup(func() {
		ts.Close()
		hub.Close()
	})
	return &testEnv{srv: ts, repo: repo, hub: hub, clock: clock}
}

// client keeps cookies and does not follow redirects.
func (e *testEnv) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func get(t *testing.T, c *http.Client, u string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func post(t *testing.T, c *http.Client, u string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := c.PostForm(u, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (e *testEnv) login(t *testing.T, c *http.Client, remember bool) {
	t.Helper()
	form := url.Values{"phone": {testPhone}, "password": {testPassword}}
	if remember {
		form.Set("remember", "1")
	}
	resp, _ := post(t, c, e.srv.URL+"/login", form)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/home", resp.Header.Get("Location"))
}

var guardMeta = regexp.MustCompile(`<meta name="billhub-guard" content="([^"]+)">`)

// guardPage returns the page id of the idle guard armed for a rendered page.
func guardPage(t *testing.T, body string) string {
	t.Helper()
	m := guardMeta.FindStringSubmatch(body)
	require.Len(t, m, 2, "page carries an idle guard")
	return m[1]
}

func (e *testEnv) status(t *testing.T, c *http.Client, page string) string {
	t.Helper()
	_, body := get(t, c, e.srv.URL+"/session/status?page="+url.QueryEscape(page))
	return body
}

func TestHealthz(t *testing.T) {
	e := newTestEnv(t, nil)
	resp, body := get(t, http.DefaultClient, e.srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"status":"ok"`)
}

func TestReadyz(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		e := newTestEnv(t, map[string]Pinger{
			"store":    PingFunc(func(context.Context) error { return nil }),
			"sessions": PingFunc(func(context.Context) error { return nil }),
		})
		resp, body := get(t, http.DefaultClient, e.srv.URL+"/readyz")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var got healthResponse
		require.NoError(t, json.Unmarshal([]byte(body), &got))
		assert.Equal(t, "ready", got.Status)
		assert.Equal(t, map[string]string{"store": "ok", "sessions": "ok"}, got.Checks)
	})

	t.Run("one failing check", func(t *testing.T) {
		e := newTestEnv(t, map[string]Pinger{
			"store":    PingFunc(func(context.Context) error { return nil }),
			"sessions": PingFunc(func(context.Context) error { return errors.New("redis down") }),
		})
		resp, body := get(t, http.DefaultClient, e.srv.URL+"/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Contains(t, body, "redis down")
	})
}

func TestLoginPage(t *testing.T) {
	e := newTestEnv(t, nil)
	resp, body := get(t, e.client(t), e.srv.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Billing Hub")
	assert.Contains(t, body, "https://wa.me/")
	assert.NotEmpty(t, resp.Header.Get("Content-Security-Policy"))
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name     string
		form     url.Values
		status   int
		contains string
	}{
		{"empty phone", url.Values{"password": {"x"}}, http.StatusUnprocessableEntity, "name=\"phone\""},
		{"unknown phone", url.Values{"phone": {"0000000"}, "password": {"x"}}, http.StatusUnauthorized, "Phone number is not registered"},
		{"wrong password", url.Values{"phone": {testPhone}, "password": {"nope"}}, http.StatusUnauthorized, "Incorrect password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t, nil)
			resp, body := post(t, e.client(t), e.srv.URL+"/login", tt.form)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, body, tt.contains)
		})
	}
}

func TestProtectedPagesRedirectWithoutIdentity(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.client(t)
	for _, path := range []string{"/home", "/bills/water", "/pay?billId=W-1", "/ads", "/announcements"} {
		resp, _ := get(t, c, e.srv.URL+path)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/", resp.Header.Get("Location"), path)
	}
}

func TestLoginShowsHomeWithFlashOnce(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.client(t)
	e.login(t, c, false)

	resp, body := get(t, c, e.srv.URL+"/home")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Hello, Ali Hassan")
	assert.Contains(t, body, "Signed in successfully")
	assert.Contains(t, body, "12,500")
	assert.Contains(t, body, "/static/idle.js")
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	_, body = get(t, c, e.srv.URL+"/home")
	assert.NotContains(t, body, "Signed in successfully")
	assert.Equal(t, 1, e.hub.Len())
}

func TestBillsPageFiltersAndSorts(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.client(t)
	e.login(t, c, false)

	_, body := get(t, c, e.srv.URL+"/bills/water")
	assert.Contains(t, body, "W-1")
	assert.Contains(t, body, "W-2")
	assert.NotContains(t, body, "E-1")
	assert.Less(t, strings.Index(body, "bill-W-1"), strings.Index(body, "bill-W-2"), "newest first")

	_, body = get(t, c, e.srv.URL+"/bills/water?status=paid")
	assert.NotContains(t, body, "bill-W-1")
	assert.Contains(t, body, "bill-W-2")

	_, body = get(t, c, e.srv.URL+"/bills/water?month=03&year=2024")
	assert.Contains(t, body, "bill-W-1")
	assert.NotContains(t, body, "bill-W-2")

	_, body = get(t, c, e.srv.URL+"/bills/water?sort=oldest")
	assert.Less(t, strings.Index(body, "bill-W-2"), strings.Index(body, "bill-W-1"))

	resp, body := get(t, c, e.srv.URL+"/bills/unknown")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "bill-W-1", "unknown service falls back to water")
}

func TestRequestBillCopy(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.client(t)
	e.login(t, c, false)
	get(t, c, e.srv.URL+"/home")

	form := url.Values{"billId": {"W-1"}, "q": {"status=unpaid"}}
	resp, _ := post(t, c, e.srv.URL+"/bills/water/request", form)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/bills/water?status=unpaid", resp.Header.Get("Location"))

	_, body := get(t, c, e.srv.URL+"/bills/water")
	assert.Contains(t, body, "Bill request sent successfully!")

	ok, err := e.repo.HasBillRequest(context.Background(), testPhone, "W-1")
	require.NoError(t, err)
	assert.True(t, ok)

	post(t, c, e.srv.URL+"/bills/water/request", form)
	_, body = get(t, c, e.srv.URL+"/bills/water")
	assert.Contains(t, body, "You have already requested this bill.")
}

func TestPay(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.client(t)
	e.login(t, c, false)
	get(t, c, e.srv.URL+"/home")

	_, body := get(t, c, e.srv.URL+"/pay")
	assert.Contains(t, body, "Missing payment info")

	_, body = get(t, c, e.srv.URL+"/pay?billId=W-1&service=water")
	assert.Contains(t, body, "12,500")
	assert.Contains(t, body, `name="method"`)
	assert.Equal(t, 0, e.hub.Len(), "pay screen has no idle guard")

	resp, _ := post(t, c, e.srv.URL+"/pay", url.Values{"billId": {"W-1"}, "service": {"water"}, "method": {"bitcoin"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = post(t, c, e.srv.URL+"/pay", url.Values{"billId": {"nope"}, "service": {"water"}, "method": {"card"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = post(t, c, e.srv.URL+"/pay", url.Values{"billId": {"W-1"}, "service": {"water"}, "method": {"zain"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/bills/water", resp.Header.Get("Location"))

	_, body = get(t, c, e.srv.URL+"/bills/water?status=unpaid")
	assert.Contains(t, body, "Payment completed successfully")
	assert.NotContains(t, body, "bill-W-1")
}

func TestLogout(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.client(t)
	e.login(t, c, true)
	_, home := get(t, c, e.srv.URL+"/home")

	resp, _ := post(t, c, e.srv.URL+"/logout", url.Values{"page": {guardPage(t, home)}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.Equal(t, 0, e.hub.Len())

	_, body := get(t, c, e.srv.URL+"/")
	assert.Contains(t, body, "Logged out successfully")
	assert.Contains(t, body, `value="`+testPhone+`"`, "remembered phone is pre-filled")

	resp, _ = get(t, c, e.srv.URL+"/home")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestIdleExpiryRedirectsThroughStatus(t *testing.T) {
	e := newTestEnv(t, nil)
	var expired atomic.Int32
	e.hub.OnExpire(func(string) { expired.Add(1) })

	c := e.client(t)
	e.login(t, c, false)
	_, home := get(t, c, e.srv.URL+"/home")
	page := guardPage(t, home)

	assert.JSONEq(t, `{"state":"active"}`, e.status(t, c, page))

	resp, _ := post(t, c, e.srv.URL+"/session/activity", url.Values{"page": {page}, "kind": {"keydown"}})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = post(t, c, e.srv.URL+"/session/activity", url.Values{"page": {page}, "kind": {"paste"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// The page keeps polling while it sits idle.
	e.clock.Advance(2*time.Minute + 50*time.Second)
	assert.JSONEq(t, `{"state":"active"}`, e.status(t, c, page))
	e.clock.Advance(10 * time.Second)
	require.Eventually(t, func() bool { return expired.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, e.hub.Len())

	assert.JSONEq(t, `{"state":"expired","redirect":"/"}`, e.status(t, c, page))

	_, body := get(t, c, e.srv.URL+"/")
	assert.Contains(t, body, "You were logged out due to inactivity")

	resp, _ = get(t, c, e.srv.URL+"/home")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestRememberedIdentitySurvivesBrowserRestart(t *testing.T) {
	e := newTestEnv(t, nil)
	var expired atomic.Int32
	e.hub.OnExpire(func(string) { expired.Add(1) })

	c := e.client(t)
	e.login(t, c, true)
	resp, _ := get(t, c, e.srv.URL+"/home")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Only the durable device cookie outlives the browser.
	u, err := url.Parse(e.srv.URL)
	require.NoError(t, err)
	restarted := e.client(t)
	for _, ck := range c.Jar.Cookies(u) {
		if ck.Name == deviceCookie {
			restarted.Jar.SetCookies(u, []*http.Cookie{ck})
		}
	}

	e.clock.Advance(3 * time.Minute)
	require.Eventually(t, func() bool { return e.hub.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, expired.Load())

	resp, body := get(t, restarted, e.srv.URL+"/home")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Hello, Ali Hassan")
}

func TestReleaseBeacon(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.client(t)
	e.login(t, c, false)
	_, home := get(t, c, e.srv.URL+"/home")
	page := guardPage(t, home)
	require.Equal(t, 1, e.hub.Len())

	resp, _ := post(t, c, e.srv.URL+"/session/release", url.Values{"page": {page}})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, e.hub.Len())
	assert.JSONEq(t, `{"state":"none"}`, e.status(t, c, page))

	resp, _ = post(t, c, e.srv.URL+"/session/release", url.Values{"page": {page}})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestTabsHaveSeparateGuards(t *testing.T) {
	e := newTestEnv(t, nil)
	var expired atomic.Int32
	e.hub.OnExpire(func(string) { expired.Add(1) })

	// One browser, so both tabs share every cookie.
	c := e.client(t)
	e.login(t, c, false)
	_, home := get(t, c, e.srv.URL+"/home")
	_, bills := get(t, c, e.srv.URL+"/bills/water")
	tabA, tabB := guardPage(t, home), guardPage(t, bills)
	require.NotEqual(t, tabA, tabB)

	// Pages without a guard leave the other tabs alone.
	resp, _ := get(t, c, e.srv.URL+"/ads")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = get(t, c, e.srv.URL+"/pay?billId=W-1&service=water")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, e.hub.Len())

	// Activity in tab B does not keep tab A alive.
	e.clock.Advance(2 * time.Minute)
	resp, _ = post(t, c, e.srv.URL+"/session/activity", url.Values{"page": {tabB}, "kind": {"mousedown"}})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	e.clock.Advance(50 * time.Second)
	assert.JSONEq(t, `{"state":"active"}`, e.status(t, c, tabA))
	assert.JSONEq(t, `{"state":"active"}`, e.status(t, c, tabB))

	e.clock.Advance(10 * time.Second)
	require.Eventually(t, func() bool { return expired.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.JSONEq(t, `{"state":"expired","redirect":"/"}`, e.status(t, c, tabA))
	assert.JSONEq(t, `{"state":"active"}`, e.status(t, c, tabB))
	assert.Equal(t, 1, e.hub.Len())
}

func TestPrefsToggle(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.client(t)

	resp, _ := post(t, c, e.srv.URL+"/prefs", url.Values{"dark": {"1"}, "lang": {"ar"}, "return": {"//evil.example"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	var found bool
	for _, ck := range resp.Cookies() {
		if ck.Name == prefs.CookieName {
			found = true
			assert.Equal(t, core.Preferences{DarkMode: true, Language: "ar"}, prefs.Decode(ck.Value))
		}
	}
	assert.True(t, found)

	_, body := get(t, c, e.srv.URL+"/")
	assert.Contains(t, body, `dir="rtl"`)
	assert.Contains(t, body, `class="dark"`)
}

func TestLocalPath(t *testing.T) {
	tests := map[string]string{
		"":                 "/",
		"/bills/water?x=1": "/bills/water?x=1",
		"//evil":           "/",
		"https://evil":     "/",
		"/\\evil":          "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, localPath(in), in)
	}
}
