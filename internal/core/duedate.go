package core

import (
	"strings"
	"time"
)

type dueKind uint8

const (
	dueUndated dueKind = iota
	dueTimestamp
	dueString
)

// isoLayouts are tried in order when a due date arrives as text.
// Values without a zone are read as UTC.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01",
}

// DueDate holds a bill due date in whichever form the store delivered it:
// a structured timestamp, a raw ISO-8601 string, or nothing at all.
type DueDate struct {
	kind dueKind
	at   time.Time
	raw  string
}

// DueAt wraps a structured timestamp.
func DueAt(t time.Time) DueDate {
	return DueDate{kind: dueTimestamp, at: t}
}

// DueString wraps a textual due date. It is parsed lazily.
func DueString(s string) DueDate {
	return DueDate{kind: dueString, raw: s}
}

// Undated is the due date of a bill whose store field was missing.
func Undated() DueDate {
	return DueDate{}
}

// Time converts the due date to an instant. ok is false when the value is
// missing or the text does not parse.
func (d DueDate) Time() (t time.Time, ok bool) {
	switch d.kind {
	case dueTimestamp:
		return d.at, true
	case dueString:
		return ParseISO(d.raw)
	default:
		return time.Time{}, false
	}
}

// IsUndated reports whether the store had no due date at all.
func (d DueDate) IsUndated() bool {
	return d.kind == dueUndated
}

// IsText reports whether the due date arrived as a string.
func (d DueDate) IsText() bool {
	return d.kind == dueString
}

// Raw returns the original text for string due dates and RFC 3339 otherwise.
func (d DueDate) Raw() string {
	switch d.kind {
	case dueString:
		return d.raw
	case dueTimestamp:
		return d.at.UTC().Format(time.RFC3339Nano)
	default:
		return ""
	}
}

// ParseISO parses the ISO-8601 shapes the document store is known to emit.
func ParseISO(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
