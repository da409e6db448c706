package session

import (
	"context"
	"errors"
	"time"
)

// Keys shared by both storage tiers.
const (
	KeyUserPhone     = "userPhone"
	KeyFlashToast    = "flashToast"
	KeyRememberMe    = "rememberMe"
	KeyRememberPhone = "rememberPhone"
)

// ErrNoIdentity is returned when neither tier holds a phone number.
var ErrNoIdentity = errors.New("no signed-in identity")

// KV is the shared backing store for every tier. Implementations must be
// safe for concurrent use. A ttl of zero means no expiry.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// Store is one storage tier as a page sees it: string values by key.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Tiers pairs the durable ("remember me") store with the tab store.
type Tiers struct {
	Durable Store
	Tab     Store
}

type scopedStore struct {
	kv     KV
	prefix string
	ttl    time.Duration
}

// Scoped returns a Store that namespaces keys under tier and id, so every
// device or tab gets its own key space in a shared KV.
func Scoped(kv KV, tier, id string, ttl time.Duration) Store {
	return &scopedStore{kv: kv, prefix: "billhub:" + tier + ":" + id + ":", ttl: ttl}
}

func (s *scopedStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.kv.Get(ctx, s.prefix+key)
}

func (s *scopedStore) Set(ctx context.Context, key, value string) error {
	return s.kv.Set(ctx, s.prefix+key, value, s.ttl)
}

func (s *scopedStore) Remove(ctx context.Context, key string) error {
	return s.kv.Delete(ctx, s.prefix+key)
}
