package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/text/language"

	"billhub/internal/cache"
	"billhub/internal/cli"
	"billhub/internal/content"
	"billhub/internal/core"
	apphttp "billhub/internal/http"
	"billhub/internal/i18n"
	"billhub/internal/log"
	"billhub/internal/services"
	"billhub/internal/session"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	res := cli.InitBackend(ctx, logger, cfg)

	hub := session.NewHub(res.Sessions, nil, session.Config{
		IdleTimeout: cfg.SessionIdleTimeout,
		IdleMessage: i18n.For(language.Make(cfg.DefaultLanguage)).T("home.idleLogout"),
		DurableTTL:  cfg.RememberMeTTL,
		TabTTL:      cfg.TabSessionTTL,
	}, logger)

	billCache := cache.NewLRUCache[[]core.Bill](10_000, cfg.BillsCacheTTL)
	caches := cache.NewManager(logger)
	caches.Register(billCache)
	caches.Register(hub)
	if kv, ok := res.Sessions.(*session.MemoryKV); ok {
		caches.Register(kv.Cleaner())
	}
	caches.StartCleanup(time.Minute)

	auth := services.NewAuthService(res.Store, logger)
	bills := services.NewBillService(res.Store, res.Store, res.Publisher, billCache, logger)

	srv, err := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		SessionSecret:      []byte(cfg.SessionSecret),
		RememberMeTTL:      cfg.RememberMeTTL,
		SecureCookies:      cfg.SecureCookies,
		SupportWhatsApp:    cfg.SupportWhatsApp,
		DefaultLanguage:    cfg.DefaultLanguage,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, apphttp.Deps{
		Auth:    auth,
		Bills:   bills,
		Hub:     hub,
		Content: content.Default(),
		Checks: map[string]apphttp.Pinger{
			"store":    res.Store,
			"sessions": hub,
		},
		Logger: logger,
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", log.FieldError, err)
		_ = res.Cleanup()
		os.Exit(1)
	}
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 15 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		caches.Stop()
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting billhub server",
		"port", cfg.Port, "store", cfg.DataBackend, "sessions", cfg.SessionBackend, "broker", res.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
