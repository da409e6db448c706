package billview

import (
	"net/url"
	"strings"
)

const (
	StatusAll    StatusFilter = "all"
	StatusPaid   StatusFilter = "paid"
	StatusUnpaid StatusFilter = "unpaid"
)

const (
	SortNewest     SortOrder = "newest"
	SortOldest     SortOrder = "oldest"
	SortAmountHigh SortOrder = "amountHigh"
	SortAmountLow  SortOrder = "amountLow"
)

// StatusFilter selects bills by payment state. Anything other than "all"
// or "paid" behaves like "unpaid".
type StatusFilter string

// SortOrder selects the list ordering. Unknown values behave like "newest".
type SortOrder string

// Selection is the set of filter and sort choices made on the bills screen.
// Empty Month or Year means "any".
type Selection struct {
	Month  string
	Year   string
	Status StatusFilter
	SortBy SortOrder
}

// DefaultSelection shows every bill, newest first.
func DefaultSelection() Selection {
	return Selection{Status: StatusAll, SortBy: SortNewest}
}

// SelectionFromQuery reads month, year, status and sort query parameters.
// Missing parameters keep their defaults; values are not validated here.
func SelectionFromQuery(q url.Values) Selection {
	sel := DefaultSelection()
	sel.Month = strings.TrimSpace(q.Get("month"))
	sel.Year = strings.TrimSpace(q.Get("year"))
	if v := strings.TrimSpace(q.Get("status")); v != "" {
		sel.Status = StatusFilter(v)
	}
	if v := strings.TrimSpace(q.Get("sort")); v != "" {
		sel.SortBy = SortOrder(v)
	}
	return sel
}

// Query encodes the selection back into query parameters, omitting defaults.
func (s Selection) Query() url.Values {
	q := url.Values{}
	if s.Month != "" {
		q.Set("month", s.Month)
	}
	if s.Year != "" {
		q.Set("year", s.Year)
	}
	if s.Status != "" && s.Status != StatusAll {
		q.Set("status", string(s.Status))
	}
	if s.SortBy != "" && s.SortBy != SortNewest {
		q.Set("sort", string(s.SortBy))
	}
	return q
}
