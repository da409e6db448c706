package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"billhub/internal/i18n"
	"billhub/internal/log"
	"billhub/internal/prefs"
	"billhub/internal/session"
)

// pageField carries the page id of an idle guard from the browser.
const pageField = "page"

// handleActivity forwards a throttled browser activity event to the page's
// idle guard.
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	sig, ok := session.ParseSignal(r.PostForm.Get("kind"), r.PostForm.Get("visibility"))
	if !ok {
		http.Error(w, "unknown activity kind", http.StatusBadRequest)
		return
	}
	if !s.deps.Hub.Signal(r.PostForm.Get(pageField), sig) {
		s.reqLog(r).DebugContext(r.Context(), "Activity ignored", log.FieldSignal, string(sig.Kind))
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleStatus reports the page's guard state. An expired guard carries the
// path the page must navigate to.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Hub.Status(r.URL.Query().Get(pageField)))
}

// handleRelease is the unload beacon of a guarded page.
func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	s.releaseGuard(r.PostForm.Get(pageField))
	w.WriteHeader(http.StatusNoContent)
}

// handlePrefs stores the dark mode and language toggles and returns to the
// page the form was posted from.
func (s *Server) handlePrefs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	old := requestPrefs(ctx)
	updated := old
	if v := r.PostForm.Get("dark"); v != "" {
		updated.DarkMode = v == "1" || v == "true" || v == "on"
	}
	if v := r.PostForm.Get("lang"); v != "" {
		updated.Language = i18n.Negotiate(v, "", s.cfg.DefaultLanguage).String()
	}

	prefs.Write(w, updated, s.cfg.SecureCookies)
	if s.deps.Prefs.Publish(old, updated) {
		s.reqLog(r).DebugContext(ctx, "Preferences updated", log.FieldComponent, log.ComponentPrefs)
	}
	http.Redirect(w, r, localPath(r.PostForm.Get("return")), http.StatusSeeOther)
}

// localPath accepts only same-site absolute paths.
func localPath(p string) string {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.ContainsAny(p, "\\\r\n") {
		return session.EntryPath
	}
	return p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
