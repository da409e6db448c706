package google

import (
	"context"
	"strings"
	"testing"

	"billhub/internal/log"
	"billhub/internal/sheets"
)

func clearAuthEnv(t *testing.T) {
	for _, k := range []string{
		"GOOGLE_SERVICE_ACCOUNT_JSON", "GOOGLE_SERVICE_ACCOUNT_FILE", "GOOGLE_APPLICATION_CREDENTIALS",
		"GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE", "GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE",
	} {
		t.Setenv(k, "")
	}
}

func TestNewFromEnv_MissingSpreadsheetID(t *testing.T) {
	_, err := NewFromEnv(context.Background(), Config{}, log.Discard())
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewFromEnv_MissingOAuthClient(t *testing.T) {
	clearAuthEnv(t)
	_, err := NewFromEnv(context.Background(), Config{SpreadsheetID: "id"}, log.Discard())
	if err == nil || !strings.Contains(err.Error(), "missing oauth client") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewFromEnv_InvalidOAuthClient(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", "invalid-json")
	t.Setenv("GOOGLE_OAUTH_TOKEN_JSON", `{"access_token":"test"}`)

	_, err := NewFromEnv(context.Background(), Config{SpreadsheetID: "id"}, log.Discard())
	if err == nil || !strings.Contains(err.Error(), "oauth config") {
		t.Fatalf("expected oauth config error, got: %v", err)
	}
}

func TestAppendEntry_Validation(t *testing.T) {
	c := &Client{spreadsheetID: "id", sheetName: "2024 Bill Requests", logger: log.Discard()}

	if _, err := c.AppendEntry(context.Background(), sheets.Entry{}); err == nil {
		t.Fatalf("expected validation error")
	}
	_, err := c.AppendEntry(context.Background(), sheets.Entry{Event: sheets.EventBillPaid, BillID: "W1"})
	if err == nil || err.Error() != "sheets service not initialized" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestColumnName(t *testing.T) {
	cases := map[int]string{1: "A", 11: "K", 26: "Z", 27: "AA", 52: "AZ", 53: "BA"}
	for n, want := range cases {
		if got := columnName(n); got != want {
			t.Errorf("columnName(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestYearPrefixedName(t *testing.T) {
	cases := []struct {
		base string
		want string
	}{
		{"Bill Requests", "2025 Bill Requests"},
		{"%d Ledger", "2025 Ledger"},
		{"2025 Bill Requests", "2025 Bill Requests"},
	}
	for _, tc := range cases {
		if got := yearPrefixedName(tc.base, 2025); got != tc.want {
			t.Errorf("yearPrefixedName(%q) = %q, want %q", tc.base, got, tc.want)
		}
	}
}
