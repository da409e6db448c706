package google

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func callback(h http.Handler, query string) int {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?"+query, nil))
	return rec.Code
}

func TestCallbackHandler_RejectsWrongState(t *testing.T) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	h := callbackHandler("expected", codeCh, errCh)

	if got := callback(h, "state=forged&code=abc"); got != http.StatusBadRequest {
		t.Fatalf("forged state: got %d, want %d", got, http.StatusBadRequest)
	}
	if got := callback(h, "code=abc"); got != http.StatusBadRequest {
		t.Fatalf("missing state: got %d, want %d", got, http.StatusBadRequest)
	}
	if len(codeCh) != 0 || len(errCh) != 0 {
		t.Fatal("rejected callbacks must not deliver anything")
	}
}

func TestCallbackHandler_DeliversFirstCodeOnly(t *testing.T) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	h := callbackHandler("s1", codeCh, errCh)

	if got := callback(h, "state=s1&code=first"); got != http.StatusOK {
		t.Fatalf("first callback: got %d", got)
	}
	// A repeated redirect must not block the handler.
	if got := callback(h, "state=s1&code=second"); got != http.StatusConflict {
		t.Fatalf("second callback: got %d, want %d", got, http.StatusConflict)
	}
	if code := <-codeCh; code != "first" {
		t.Fatalf("code = %q, want first", code)
	}
}

func TestCallbackHandler_ReportsProviderError(t *testing.T) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	h := callbackHandler("s1", codeCh, errCh)

	if got := callback(h, "state=s1&error=access_denied"); got != http.StatusBadRequest {
		t.Fatalf("error callback: got %d", got)
	}
	if got := callback(h, "state=s1&error=access_denied"); got != http.StatusBadRequest {
		t.Fatalf("repeated error callback: got %d", got)
	}
	if err := <-errCh; err == nil || err.Error() != "oauth error: access_denied" {
		t.Fatalf("unexpected error: %v", err)
	}
}
