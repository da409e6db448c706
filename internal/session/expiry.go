package session

import (
	"context"

	"billhub/internal/core"
	"billhub/internal/log"
)

// Navigator sends the tab to another screen.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// EndSession queues notice on the tab tier, clears the identity from both
// tiers and navigates to entry. Storage failures are logged and swallowed;
// navigation always happens.
func EndSession(ctx context.Context, t Tiers, nav Navigator, notice core.Notification, entry string, logger *log.Logger) {
	if err := PutFlash(ctx, t.Tab, notice); err != nil {
		logger.WarnContext(ctx, "Failed to queue logout notice", log.FieldError, err)
	}
	if err := ClearIdentity(ctx, t); err != nil {
		logger.WarnContext(ctx, "Failed to clear identity", log.FieldError, err)
	}
	nav.Navigate(entry)
}
