package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"billhub/internal/sheets"
)

// Ledger keeps ledger rows in memory. Used when no spreadsheet is configured.
type Ledger struct {
	mu      sync.Mutex
	entries []sheets.Entry
}

var _ sheets.LedgerWriter = (*Ledger)(nil)

func New() *Ledger {
	return &Ledger{}
}

// AppendEntry stores the entry and returns a synthetic row reference.
func (l *Ledger) AppendEntry(_ context.Context, e sheets.Entry) (string, error) {
	if e.Event == "" || e.BillID == "" {
		return "", errors.New("ledger entry needs an event and a bill id")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	return fmt.Sprintf("mem:%d", len(l.entries)), nil
}

// Entries returns a copy of every stored row.
func (l *Ledger) Entries() []sheets.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]sheets.Entry(nil), l.entries...)
}
