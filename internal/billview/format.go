package billview

import (
	"time"

	"billhub/internal/core"
)

const dateLayout = "2006-01-02"

// FormatDueDate renders a due date as YYYY-MM-DD in UTC. Text that does not
// parse renders as "-". A bill with no due date at all shows today's date;
// this only affects display, never ordering.
func FormatDueDate(d core.DueDate, now time.Time) string {
	if t, ok := d.Time(); ok {
		return t.UTC().Format(dateLayout)
	}
	if d.IsUndated() {
		return now.UTC().Format(dateLayout)
	}
	return "-"
}
