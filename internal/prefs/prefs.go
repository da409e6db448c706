// Package prefs loads display preferences from a cookie and announces
// changes to subscribers.
package prefs

import (
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"billhub/internal/core"
	"billhub/internal/i18n"
)

const (
	CookieName = "billhub_prefs"
	cookieAge  = 365 * 24 * time.Hour
)

// Encode renders p as a cookie value.
func Encode(p core.Preferences) string {
	v := url.Values{}
	v.Set("dark", strconv.FormatBool(p.DarkMode))
	if p.Language != "" {
		v.Set("lang", p.Language)
	}
	return v.Encode()
}

// Decode parses a cookie value. Unknown or malformed fields are zero.
func Decode(s string) core.Preferences {
	v, err := url.ParseQuery(s)
	if err != nil {
		return core.Preferences{}
	}
	dark, _ := strconv.ParseBool(v.Get("dark"))
	return core.Preferences{DarkMode: dark, Language: v.Get("lang")}
}

// FromRequest resolves the preferences for one request. The language falls
// back to Accept-Language and then to fallback.
func FromRequest(r *http.Request, fallback string) core.Preferences {
	var p core.Preferences
	if c, err := r.Cookie(CookieName); err == nil {
		p = Decode(c.Value)
	}
	p.Language = i18n.Negotiate(p.Language, r.Header.Get("Accept-Language"), fallback).String()
	return p
}

// Write stores p in the preferences cookie.
func Write(w http.ResponseWriter, p core.Preferences, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    Encode(p),
		Path:     "/",
		MaxAge:   int(cookieAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ChangeFunc receives the old and new preferences.
type ChangeFunc func(old, updated core.Preferences)

// Hub fans preference changes out to subscribers.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]ChangeFunc
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]ChangeFunc)}
}

// OnChange registers fn and returns a function that removes it.
func (h *Hub) OnChange(fn ChangeFunc) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// Publish notifies subscribers when updated differs from old and reports
// whether it did.
func (h *Hub) Publish(old, updated core.Preferences) bool {
	if old == updated {
		return false
	}
	h.mu.RLock()
	subs := make([]ChangeFunc, 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.RUnlock()

	for _, fn := range subs {
		fn(old, updated)
	}
	return true
}
