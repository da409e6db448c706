// Package http serves the resident-facing pages: login, home summary,
// bills, mock payment, ads and announcements.
package http

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"filippo.io/csrf"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"

	"billhub/internal/content"
	"billhub/internal/core"
	"billhub/internal/log"
	"billhub/internal/middleware/metrics"
	"billhub/internal/middleware/ratelimit"
	"billhub/internal/middleware/security"
	"billhub/internal/middleware/trace"
	"billhub/internal/prefs"
	"billhub/internal/services"
	"billhub/internal/session"
	appweb "billhub/web"
)

// Pinger is a dependency checked by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Config holds the HTTP-facing settings.
type Config struct {
	Addr               string
	SessionSecret      []byte
	RememberMeTTL      time.Duration
	SecureCookies      bool
	SupportWhatsApp    string
	DefaultLanguage    string
	RateLimitPerMinute int
}

// Deps are the collaborators the handlers call.
type Deps struct {
	Auth    *services.AuthService
	Bills   *services.BillService
	Hub     *session.Hub
	Prefs   *prefs.Hub
	Content *content.Catalog
	// Checks are run concurrently by /readyz.
	Checks map[string]Pinger
	Logger *log.Logger
}

type Server struct {
	http.Server
	cfg       Config
	deps      Deps
	templates *template.Template
	cookies   *sessionCookies
	limiter   *ratelimit.Limiter
	clientIP  *security.ClientIPResolver
	logger    *log.Logger
	started   time.Time
	now       func() time.Time

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and mounts every route.
func NewServer(cfg Config, deps Deps) (*Server, error) {
	if deps.Auth == nil || deps.Bills == nil || deps.Hub == nil {
		return nil, errors.New("auth, bills and session hub are required")
	}
	if deps.Logger == nil {
		deps.Logger = log.Discard()
	}
	if deps.Prefs == nil {
		deps.Prefs = prefs.NewHub()
	}
	if deps.Content == nil {
		deps.Content = content.Default()
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en"
	}
	if cfg.SupportWhatsApp == "" {
		cfg.SupportWhatsApp = defaultWhatsApp
	}
	if cfg.RememberMeTTL <= 0 {
		cfg.RememberMeTTL = 30 * 24 * time.Hour
	}
	logger := deps.Logger.WithComponent(log.ComponentHTTP)

	if len(cfg.SessionSecret) == 0 {
		cfg.SessionSecret = make([]byte, 32)
		if _, err := rand.Read(cfg.SessionSecret); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		logger.Warn("SESSION_SECRET not set, using a random key; sessions will not survive a restart")
	}

	t, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:       cfg,
		deps:      deps,
		templates: t,
		cookies:   newSessionCookies(cfg.SessionSecret, cfg.RememberMeTTL, cfg.SecureCookies),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		clientIP:  security.NewClientIPResolver(),
		logger:    logger,
		started:   time.Now(),
		now:       time.Now,
	}

	deps.Hub.OnExpire(func(string) {
		metrics.RecordSessionExpired()
		metrics.SetActiveGuards(deps.Hub.Len())
	})
	deps.Prefs.OnChange(func(old, updated core.Preferences) {
		metrics.RecordPrefsChange(updated.DarkMode, updated.Language)
		logger.Debug("Preferences changed",
			"dark_from", old.DarkMode, "dark_to", updated.DarkMode,
			"lang_from", old.Language, "lang_to", updated.Language)
	})

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	tracer := trace.NewMiddleware(s.deps.Logger, s.clientIP.ClientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	protection := csrf.New()

	r.Use(tracer.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(headers.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", metrics.Handler())

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssetMiddleware(3600)).Handle("/static/*", gzhttp.GzipHandler(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	r.Group(func(r chi.Router) {
		r.Use(protection.Handler)
		r.Use(s.limiter.Middleware(s.clientIP.ClientIP, nil))
		r.Use(gzip)
		r.Use(s.withSession)
		r.Use(s.withPrefs)

		r.Get("/", s.handleLoginPage)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Post("/prefs", s.handlePrefs)
		r.Post("/session/activity", s.handleActivity)
		r.Get("/session/status", s.handleStatus)
		r.Post("/session/release", s.handleRelease)

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)
			r.Use(security.NoStore)

			r.Get("/home", s.handleHome)
			r.Get("/bills/{service}", s.handleBills)
			r.Post("/bills/{service}/request", s.handleRequestBill)
			r.Get("/pay", s.handlePayPage)
			r.Post("/pay", s.handlePay)
			r.Get("/ads", s.handleAds)
			r.Get("/announcements", s.handleAnnouncements)
		})
	})

	return r
}

func gzip(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}

// Shutdown stops the rate limiter, tears down idle guards and drains
// in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.deps.Hub.Close()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) reqLog(r *http.Request) *log.Logger {
	return log.FromContext(r.Context())
}
