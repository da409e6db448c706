package session

import "strings"

// SignalKind names a browser activity event.
type SignalKind string

const (
	PointerMove      SignalKind = "mousemove"
	PointerDown      SignalKind = "mousedown"
	KeyDown          SignalKind = "keydown"
	Scroll           SignalKind = "scroll"
	TouchStart       SignalKind = "touchstart"
	VisibilityChange SignalKind = "visibilitychange"
)

// Signal is one activity event forwarded from the page.
// Hidden is only meaningful for VisibilityChange.
type Signal struct {
	Kind   SignalKind
	Hidden bool
}

// ParseSignal reads the event name and document visibility ("hidden" or
// "visible") sent by the page. Unknown event names are rejected.
func ParseSignal(kind, visibility string) (Signal, bool) {
	k := SignalKind(strings.ToLower(strings.TrimSpace(kind)))
	switch k {
	case PointerMove, PointerDown, KeyDown, Scroll, TouchStart:
		return Signal{Kind: k}, true
	case VisibilityChange:
		return Signal{Kind: k, Hidden: strings.EqualFold(strings.TrimSpace(visibility), "hidden")}, true
	default:
		return Signal{}, false
	}
}

// CountsAsActivity reports whether the signal re-arms the idle timer.
// Going to the background is not activity; coming back is.
func (s Signal) CountsAsActivity() bool {
	if s.Kind == VisibilityChange {
		return !s.Hidden
	}
	return s.Kind != ""
}
