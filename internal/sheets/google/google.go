package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"billhub/internal/log"
	"billhub/internal/sheets"
)

// Client appends ledger rows to a Google spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

var _ sheets.LedgerWriter = (*Client)(nil)

// Config selects the spreadsheet and tab. SheetName is a base name; the
// current year is prefixed to it.
type Config struct {
	SpreadsheetID string
	SheetName     string
}

// NewFromEnv creates a Sheets client.
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS for a service account, otherwise
// GOOGLE_OAUTH_CLIENT_JSON/FILE plus GOOGLE_OAUTH_TOKEN_JSON/FILE as written
// by "billhubctl oauth-init".
func NewFromEnv(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	id := strings.TrimSpace(cfg.SpreadsheetID)
	if id == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	base := strings.TrimSpace(cfg.SheetName)
	if base == "" {
		base = "Bill Requests"
	}

	svc, err := newSheetsService(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: id,
		sheetName:     yearPrefixedName(base, time.Now().Year()),
		logger:        logger.WithComponent(log.ComponentSheets),
	}, nil
}

func newSheetsService(ctx context.Context, logger *log.Logger) (*gsheet.Service, error) {
	saJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	saFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if saJSON == "" && saFile == "" {
		saFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case saJSON != "":
		logger.InfoContext(ctx, "Using inline service account credentials")
		return serviceAccountService(ctx, []byte(saJSON))
	case saFile != "":
		b, err := os.ReadFile(saFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		logger.InfoContext(ctx, "Using service account credentials file", "path", saFile)
		return serviceAccountService(ctx, b)
	}

	logger.InfoContext(ctx, "No service account configured, falling back to OAuth token")
	httpClient, err := oauthHTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx, goption.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

func serviceAccountService(ctx context.Context, credentialsJSON []byte) (*gsheet.Service, error) {
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// oauthHTTPClient builds an authorized client from an OAuth client secret and
// a saved token.
func oauthHTTPClient(ctx context.Context) (*http.Client, error) {
	clientJSON, err := envOrFile("GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE")
	if err != nil {
		return nil, err
	}
	if clientJSON == nil {
		return nil, errors.New("missing oauth client (set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE)")
	}
	cfg, err := goauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}

	tokenJSON, err := envOrFile("GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE")
	if err != nil {
		return nil, err
	}
	if tokenJSON == nil {
		return nil, errors.New("missing oauth token (set GOOGLE_OAUTH_TOKEN_JSON or GOOGLE_OAUTH_TOKEN_FILE)")
	}
	var tok oauth2.Token
	if err := json.Unmarshal(tokenJSON, &tok); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, newHTTPClientWithPooling())
	return cfg.Client(ctx, &tok), nil
}

func envOrFile(jsonKey, fileKey string) ([]byte, error) {
	if v := strings.TrimSpace(os.Getenv(jsonKey)); v != "" {
		return []byte(v), nil
	}
	path := strings.TrimSpace(os.Getenv(fileKey))
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileKey, err)
	}
	return b, nil
}

// newHTTPClientWithPooling is the transport used under the OAuth client.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

// AppendEntry writes the entry on the first empty row of the ledger tab.
func (c *Client) AppendEntry(ctx context.Context, e sheets.Entry) (string, error) {
	if e.Event == "" || e.BillID == "" {
		return "", errors.New("ledger entry needs an event and a bill id")
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get sheet dimensions for %s: %w", c.sheetName, err)
	}
	nextRow := len(resp.Values) + 1

	row := e.Row()
	target := fmt.Sprintf("%s!A%d:%s%d", c.sheetName, nextRow, columnName(len(row)), nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, target, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update %s: %w", target, err)
	}

	c.logger.InfoContext(ctx, "Ledger row written",
		log.FieldBillID, e.BillID, log.FieldLedgerRef, target, log.FieldOperation, log.OpAppend)
	return target, nil
}

// columnName converts a 1-based column index to its A1 letter form.
func columnName(n int) string {
	var out []byte
	for n > 0 {
		n--
		out = append([]byte{byte('A' + n%26)}, out...)
		n /= 26
	}
	return string(out)
}

// yearPrefixedName supports "%d Name" patterns as well as plain base names.
func yearPrefixedName(base string, year int) string {
	if strings.Contains(base, "%d") {
		return fmt.Sprintf(base, year)
	}
	if strings.HasPrefix(base, strconv.Itoa(year)+" ") {
		return base
	}
	return fmt.Sprintf("%d %s", year, base)
}
