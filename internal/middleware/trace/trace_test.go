package trace

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"billhub/internal/log"
)

func TestMiddleware_AssignsRequestID(t *testing.T) {
	var seen string
	h := NewMiddleware(log.Discard(), nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		if log.FromContext(r.Context()).Component() != log.ComponentTrace {
			t.Errorf("expected request logger in context")
		}
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/home", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("request id %q is not a uuid", seen)
	}
	if got := rec.Header().Get(HeaderRequestID); got != seen {
		t.Errorf("response header = %q, want %q", got, seen)
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestMiddleware_KeepsValidIncomingID(t *testing.T) {
	m := NewMiddleware(log.Discard(), nil)
	h := m.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, id)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get(HeaderRequestID) != id {
		t.Errorf("incoming id was replaced")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "<script>")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get(HeaderRequestID) == "<script>" {
		t.Errorf("invalid incoming id was echoed")
	}

	if got := m.GetMetrics().TotalRequests; got != 2 {
		t.Errorf("TotalRequests = %d, want 2", got)
	}
}
