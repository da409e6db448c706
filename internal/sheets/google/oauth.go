package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	gsheet "google.golang.org/api/sheets/v4"
)

// AuthorizeConfig drives the one-time OAuth consent flow.
type AuthorizeConfig struct {
	ClientJSON   []byte
	RedirectPort string
	TokenFile    string
	Timeout      time.Duration
}

// Authorize prints a consent URL, waits for the redirect on localhost and
// saves the resulting token to cfg.TokenFile.
func Authorize(ctx context.Context, cfg AuthorizeConfig, out io.Writer) error {
	oc, err := goauth.ConfigFromJSON(cfg.ClientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return fmt.Errorf("oauth config: %w", err)
	}
	if cfg.RedirectPort == "" {
		cfg.RedirectPort = "8085"
	}
	if cfg.TokenFile == "" {
		cfg.TokenFile = "token.json"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	oc.RedirectURL = "http://localhost:" + cfg.RedirectPort + "/callback"

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	mux := http.NewServeMux()
	mux.Handle("/callback", callbackHandler(state, codeCh, errCh))
	srv := &http.Server{Addr: ":" + cfg.RedirectPort, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = srv.ListenAndServe() }()
	defer srv.Close()

	authURL := oc.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))
	fmt.Fprintf(out, "Open this URL to authorize:\n%s\n", authURL)

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	select {
	case code := <-codeCh:
		tok, err := oc.Exchange(ctx, code, oauth2.VerifierOption(verifier))
		if err != nil {
			return fmt.Errorf("token exchange: %w", err)
		}
		f, err := os.OpenFile(cfg.TokenFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("open token file: %w", err)
		}
		defer f.Close()
		if err := json.NewEncoder(f).Encode(tok); err != nil {
			return fmt.Errorf("write token: %w", err)
		}
		fmt.Fprintf(out, "Saved token to %s\n", cfg.TokenFile)
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return fmt.Errorf("authorization: %w", ctx.Err())
	}
}

// callbackHandler accepts the first redirect carrying the expected state.
// Later or forged redirects are answered without blocking.
func callbackHandler(state string, codeCh chan<- string, errCh chan<- error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		if e := q.Get("error"); e != "" {
			http.Error(w, "OAuth error: "+e, http.StatusBadRequest)
			select {
			case errCh <- errors.New("oauth error: " + e):
			default:
			}
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		select {
		case codeCh <- code:
			fmt.Fprintln(w, "You may close this window and return to the terminal.")
		default:
			http.Error(w, "authorization already received", http.StatusConflict)
		}
	})
}
