package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"golang.org/x/text/language"

	"billhub/internal/core"
	"billhub/internal/i18n"
	"billhub/internal/log"
	"billhub/internal/prefs"
	"billhub/internal/session"
	appweb "billhub/web"
)

const defaultWhatsApp = "9647700000000"

// page is embedded in every view model.
type page struct {
	L       *i18n.Localizer
	Prefs   core.Preferences
	Flash   *core.Notification
	HelpURL string
	// Guard is the page id of the idle guard armed for this render. Pages
	// with one run the idle script.
	Guard string
	Path  string
	User  *core.User
}

func parseTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"theme": func(c core.Category) core.Theme {
			t, _ := c.Theme()
			return t
		},
	}
	t, err := template.New("").Funcs(funcs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

func (s *Server) withPrefs(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := prefs.FromRequest(r, s.cfg.DefaultLanguage)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxPrefs, p)))
	})
}

func requestPrefs(ctx context.Context) core.Preferences {
	p, _ := ctx.Value(ctxPrefs).(core.Preferences)
	return p
}

func localizer(ctx context.Context) *i18n.Localizer {
	tag, err := language.Parse(requestPrefs(ctx).Language)
	if err != nil {
		tag = language.English
	}
	return i18n.For(tag)
}

// basePage fills the shared fields and consumes the tab's one-shot flash.
func (s *Server) basePage(r *http.Request) page {
	ctx := r.Context()
	p := page{
		L:     localizer(ctx),
		Prefs: requestPrefs(ctx),
		Path:  r.URL.RequestURI(),
		User:  currentUser(ctx),
	}
	device, tab := sessionIDs(ctx)
	n, ok, err := session.TakeFlash(ctx, s.deps.Hub.Tiers(device, tab).Tab)
	if err != nil {
		s.reqLog(r).WarnContext(ctx, "Failed to read flash", log.FieldError, err)
	}
	if ok {
		p.Flash = &n
	}
	return p
}

// render executes name into a buffer before writing status and body.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.reqLog(r).ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err, "template", name, log.FieldOperation, log.OpRender)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// flash queues n for the next page on this tab.
func (s *Server) flash(r *http.Request, kind core.NotificationKind, message string) {
	device, tab := sessionIDs(r.Context())
	if err := session.PutFlash(r.Context(), s.deps.Hub.Tiers(device, tab).Tab, core.Notification{Kind: kind, Message: message}); err != nil {
		s.reqLog(r).WarnContext(r.Context(), "Failed to queue flash", log.FieldError, err)
	}
}

// helpURL builds the WhatsApp support link with a prefilled message.
func (s *Server) helpURL(message string) string {
	return "https://wa.me/" + s.cfg.SupportWhatsApp + "?text=" + url.QueryEscape(message)
}
