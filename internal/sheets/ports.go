package sheets

import (
	"context"
	"time"
)

// Ledger event names.
const (
	EventBillRequested = "bill.requested"
	EventBillPaid      = "bill.paid"
)

// Entry is one row of the bill ledger kept for the billing office.
type Entry struct {
	Event     string
	Reference string
	Phone     string
	Name      string
	BillID    string
	Category  string
	Amount    float64
	DueDate   string
	Month     string
	Year      string
	At        time.Time
}

// Row renders the entry as spreadsheet cells, in column order.
func (e Entry) Row() []any {
	return []any{
		e.At.UTC().Format(time.RFC3339),
		e.Event,
		e.Reference,
		e.Phone,
		e.Name,
		e.Category,
		e.BillID,
		e.Amount,
		e.DueDate,
		e.Month,
		e.Year,
	}
}

// LedgerWriter appends bill events to the office ledger.
type LedgerWriter interface {
	AppendEntry(ctx context.Context, e Entry) (rowRef string, err error)
}
