package session

import (
	"context"
	"encoding/json"
	"fmt"

	"billhub/internal/core"
)

// PutFlash queues a one-shot notification for the next screen.
func PutFlash(ctx context.Context, s Store, n core.Notification) error {
	raw, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode flash: %w", err)
	}
	if err := s.Set(ctx, KeyFlashToast, string(raw)); err != nil {
		return fmt.Errorf("store flash: %w", err)
	}
	return nil
}

// TakeFlash reads and deletes the queued notification. A payload that does
// not decode is discarded and reported as absent.
func TakeFlash(ctx context.Context, s Store) (core.Notification, bool, error) {
	raw, ok, err := s.Get(ctx, KeyFlashToast)
	if err != nil || !ok {
		return core.Notification{}, false, err
	}
	if err := s.Remove(ctx, KeyFlashToast); err != nil {
		return core.Notification{}, false, fmt.Errorf("remove flash: %w", err)
	}
	var n core.Notification
	if err := json.Unmarshal([]byte(raw), &n); err != nil || n.Message == "" {
		return core.Notification{}, false, nil
	}
	return n, true, nil
}
