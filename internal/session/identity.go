package session

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// Identity returns the signed-in phone number, durable tier first.
func Identity(ctx context.Context, t Tiers) (string, error) {
	for _, s := range []Store{t.Durable, t.Tab} {
		phone, ok, err := s.Get(ctx, KeyUserPhone)
		if err != nil {
			return "", err
		}
		if ok && strings.TrimSpace(phone) != "" {
			return phone, nil
		}
	}
	return "", ErrNoIdentity
}

// SignIn writes the identity to the tier chosen by remember and clears it
// from the other one.
func SignIn(ctx context.Context, t Tiers, phone string, remember bool) error {
	var errs []error
	if remember {
		errs = append(errs,
			t.Durable.Set(ctx, KeyUserPhone, phone),
			t.Durable.Set(ctx, KeyRememberPhone, phone),
			t.Tab.Remove(ctx, KeyUserPhone),
		)
	} else {
		errs = append(errs,
			t.Tab.Set(ctx, KeyUserPhone, phone),
			t.Durable.Remove(ctx, KeyUserPhone),
			t.Durable.Remove(ctx, KeyRememberPhone),
		)
	}
	errs = append(errs, t.Durable.Set(ctx, KeyRememberMe, strconv.FormatBool(remember)))
	return errors.Join(errs...)
}

// Remembered returns the phone and checkbox state to pre-fill the login form.
func Remembered(ctx context.Context, t Tiers) (phone string, remember bool) {
	v, ok, err := t.Durable.Get(ctx, KeyRememberMe)
	if err != nil || !ok {
		return "", false
	}
	remember, _ = strconv.ParseBool(v)
	if remember {
		phone, _, _ = t.Durable.Get(ctx, KeyRememberPhone)
	}
	return phone, remember
}

// ClearIdentity removes the phone number from both tiers. Both removals are
// attempted even if the first fails.
func ClearIdentity(ctx context.Context, t Tiers) error {
	return errors.Join(
		t.Durable.Remove(ctx, KeyUserPhone),
		t.Tab.Remove(ctx, KeyUserPhone),
	)
}
