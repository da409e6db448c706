package http

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"billhub/internal/log"
)

const readyTimeout = 3 * time.Second

type healthResponse struct {
	Status string            `json:"status"`
	Uptime string            `json:"uptime,omitempty"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Uptime: time.Since(s.started).Truncate(time.Second).String(),
	})
}

// handleReady pings every dependency concurrently. Any failure makes the
// whole instance unready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	names := make([]string, 0, len(s.deps.Checks))
	for name := range s.deps.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		mu      sync.Mutex
		results = make(map[string]string, len(names))
	)
	var g errgroup.Group
	for _, name := range names {
		check := s.deps.Checks[name]
		g.Go(func() error {
			err := check.Ping(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				results[name] = err.Error()
				return err
			}
			results[name] = "ok"
			return nil
		})
	}

	resp := healthResponse{Status: "ready", Checks: results}
	status := http.StatusOK
	if err := g.Wait(); err != nil {
		s.reqLog(r).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
		resp.Status = "unready"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
