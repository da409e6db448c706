// Package billview turns raw bill records into what the bill screens show.
//
// FilterAndSort narrows a bill list by month, year and payment status and
// orders it for the list view. LatestPerCategory picks the most recent bill
// of each category for the home summary. Both are pure: they never fail,
// never mutate their input, and are safe to call from concurrent requests.
//
// Malformed input degrades instead of erroring. An unparseable due date
// sorts as the oldest possible bill, a missing amount counts as zero, and
// an unknown status counts as unpaid.
package billview
