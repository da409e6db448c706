package billview

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"billhub/internal/core"
)

// FilterAndSort applies the month, year and status filters of sel to bills
// and returns the survivors in display order. The sort is stable, so bills
// with equal keys keep their input order. The input slice is left untouched.
func FilterAndSort(bills []core.Bill, sel Selection) []core.Bill {
	out := make([]core.Bill, 0, len(bills))
	for _, b := range bills {
		if !matchMonth(b, sel.Month) || !matchYear(b, sel.Year) || !matchStatus(b, sel.Status) {
			continue
		}
		out = append(out, b)
	}
	slices.SortStableFunc(out, comparator(sel.SortBy))
	return out
}

func matchMonth(b core.Bill, month string) bool {
	return month == "" || PadMonth(b.Month) == month
}

func matchYear(b core.Bill, year string) bool {
	return year == "" || b.Year == year
}

func matchStatus(b core.Bill, status StatusFilter) bool {
	switch status {
	case StatusAll:
		return true
	case StatusPaid:
		return b.Status.IsPaid()
	default:
		return !b.Status.IsPaid()
	}
}

func comparator(order SortOrder) func(a, b core.Bill) int {
	switch order {
	case SortOldest:
		return func(a, b core.Bill) int { return cmp.Compare(SortKey(a.DueDate), SortKey(b.DueDate)) }
	case SortAmountHigh:
		return func(a, b core.Bill) int { return cmp.Compare(amountKey(b), amountKey(a)) }
	case SortAmountLow:
		return func(a, b core.Bill) int { return cmp.Compare(amountKey(a), amountKey(b)) }
	default:
		return func(a, b core.Bill) int { return cmp.Compare(SortKey(b.DueDate), SortKey(a.DueDate)) }
	}
}

// PadMonth left pads m with zeros to two characters. Longer values are
// returned unchanged.
func PadMonth(m string) string {
	if n := utf8.RuneCountInString(m); n < 2 {
		return strings.Repeat("0", 2-n) + m
	}
	return m
}

// SortKey resolves a due date to Unix milliseconds for ordering.
// Missing or unparseable dates resolve to 0 so they sort as the oldest.
func SortKey(d core.DueDate) int64 {
	t, ok := d.Time()
	if !ok {
		return 0
	}
	return t.UnixMilli()
}

func amountKey(b core.Bill) float64 {
	if math.IsNaN(b.Amount) {
		return 0
	}
	return b.Amount
}

// LatestPerCategory returns, for every category present in bills, the bill
// with the greatest due date. Ties keep the first bill seen.
func LatestPerCategory(bills []core.Bill) map[core.Category]core.Bill {
	return LatestPerCategoryAt(bills, time.Now())
}

// LatestPerCategoryAt is LatestPerCategory with an explicit "now", used for
// bills whose due date cannot be resolved.
func LatestPerCategoryAt(bills []core.Bill, now time.Time) map[core.Category]core.Bill {
	latest := make(map[core.Category]core.Bill)
	seen := make(map[core.Category]time.Time)
	for _, b := range bills {
		at := groupingTime(b.DueDate, now)
		prev, ok := seen[b.Category]
		if ok && !at.After(prev) {
			continue
		}
		latest[b.Category] = b
		seen[b.Category] = at
	}
	return latest
}

func groupingTime(d core.DueDate, now time.Time) time.Time {
	if t, ok := d.Time(); ok {
		return t
	}
	return now
}

// InDisplayOrder flattens a LatestPerCategory result into category order.
// Categories outside the known set follow in name order.
func InDisplayOrder(latest map[core.Category]core.Bill) []core.Bill {
	out := make([]core.Bill, 0, len(latest))
	for _, c := range core.Categories() {
		if b, ok := latest[c]; ok {
			out = append(out, b)
		}
	}
	var extra []core.Category
	for c := range latest {
		if _, known := c.Theme(); !known {
			extra = append(extra, c)
		}
	}
	slices.Sort(extra)
	for _, c := range extra {
		out = append(out, latest[c])
	}
	return out
}

// Years lists the distinct non-empty years in bills, newest first.
func Years(bills []core.Bill) []string {
	var years []string
	for _, b := range bills {
		y := strings.TrimSpace(b.Year)
		if y == "" || slices.Contains(years, y) {
			continue
		}
		years = append(years, y)
	}
	slices.SortFunc(years, func(a, b string) int { return cmp.Compare(b, a) })
	return years
}
