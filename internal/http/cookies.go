package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"billhub/internal/log"
)

const (
	deviceCookie = "billhub_device"
	tabCookie    = "billhub_tab"
	cookieIDKey  = "id"
)

type ctxKey int

const (
	ctxDevice ctxKey = iota
	ctxTab
	ctxUser
	ctxPrefs
)

// sessionCookies issues the two signed id cookies. The device cookie backs
// the durable tier and outlives the browser; the tab cookie has no MaxAge
// and ends with the browser session.
type sessionCookies struct {
	store      *sessions.CookieStore
	durableAge time.Duration
	secure     bool
}

func newSessionCookies(secret []byte, durableAge time.Duration, secure bool) *sessionCookies {
	store := sessions.NewCookieStore(secret)
	store.MaxAge(int(durableAge.Seconds()))
	return &sessionCookies{
		store:      store,
		durableAge: durableAge,
		secure:     secure,
	}
}

func (c *sessionCookies) options(maxAge time.Duration) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ensure returns the id stored in the named cookie, minting and saving a new
// one when the cookie is missing or fails verification.
func (c *sessionCookies) ensure(w http.ResponseWriter, r *http.Request, name string, maxAge time.Duration) (string, error) {
	// A decode error still yields a fresh session.
	sess, _ := c.store.Get(r, name)
	sess.Options = c.options(maxAge)
	if id, ok := sess.Values[cookieIDKey].(string); ok {
		if _, err := uuid.Parse(id); err == nil {
			if maxAge > 0 {
				// Sliding expiry for the device cookie.
				return id, sess.Save(r, w)
			}
			return id, nil
		}
	}
	id := uuid.NewString()
	sess.Values[cookieIDKey] = id
	return id, sess.Save(r, w)
}

// withSession puts the device and tab ids in the request context.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		device, err := s.cookies.ensure(w, r, deviceCookie, s.cookies.durableAge)
		if err != nil {
			s.reqLog(r).ErrorContext(r.Context(), "Failed to issue device cookie", log.FieldError, err)
			http.Error(w, "session unavailable", http.StatusInternalServerError)
			return
		}
		tab, err := s.cookies.ensure(w, r, tabCookie, 0)
		if err != nil {
			s.reqLog(r).ErrorContext(r.Context(), "Failed to issue tab cookie", log.FieldError, err)
			http.Error(w, "session unavailable", http.StatusInternalServerError)
			return
		}
		ctx := context.WithValue(r.Context(), ctxDevice, device)
		ctx = context.WithValue(ctx, ctxTab, tab)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionIDs(ctx context.Context) (device, tab string) {
	device, _ = ctx.Value(ctxDevice).(string)
	tab, _ = ctx.Value(ctxTab).(string)
	return device, tab
}
