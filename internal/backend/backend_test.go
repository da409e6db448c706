package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billhub/internal/config"
	"billhub/internal/core"
	"billhub/internal/log"
)

const seedYAML = `
users:
  - phone: "07700000001"
    password: secret1
    name: Sara
    lastname: Ali
bills:
  - phone: "07700000001"
    billId: W-1
    category: water
    amount: 12500
    status: unpaid
    dueDate: "2024-03-10"
    month: "3"
    year: "2024"
  - phone: "07700000001"
    billId: E-1
    category: electricity
    amount: 40000
    dueDate: not a date
`

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	require.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:    "memory",
		SessionBackend: "memory",
		AMQPExchange:   "billhub",
	})
	require.NoError(t, err)
	assert.Equal(t, MemoryBackend, cfg.Type)
	assert.Equal(t, MemorySessions, cfg.Sessions)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets", SessionBackend: "memory"})
	assert.ErrorContains(t, err, "invalid backend type")

	_, err = FromAppConfig(&config.Config{DataBackend: "memory", SessionBackend: "redis"})
	assert.ErrorContains(t, err, "redis address")
}

func TestSeed_Apply(t *testing.T) {
	ctx := context.Background()
	seed, err := ParseSeed([]byte(seedYAML))
	require.NoError(t, err)

	f := NewFactory(log.Discard())
	res, err := f.CreateBackend(ctx, Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "seed.db"),
		Sessions:     MemorySessions,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Cleanup() })
	assert.Nil(t, res.Publisher)

	n, err := seed.Apply(ctx, res.Store)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Users: 1, Bills: 2}, n)

	// A second run leaves the existing user alone and upserts bills.
	n, err = seed.Apply(ctx, res.Store)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Users: 0, Bills: 2}, n)

	u, err := res.Store.UserByPhone(ctx, "07700000001")
	require.NoError(t, err)
	assert.Equal(t, "Sara Ali", u.DisplayName())
	assert.NotEqual(t, "secret1", u.PasswordHash)

	docs, err := res.Store.BillDocuments(ctx, "07700000001", "")
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestSeedBill_Defaults(t *testing.T) {
	b := SeedBill{ID: "G-1", Category: "gas"}.Bill()
	assert.Equal(t, core.StatusUnpaid, b.Status)
	assert.True(t, b.DueDate.IsUndated())
}

func TestSeed_RejectsUnknownCategory(t *testing.T) {
	seed := &Seed{Bills: []SeedBill{{Phone: "1", ID: "X", Category: "internet"}}}
	_, err := seed.Apply(context.Background(), newMemoryStore(t))
	assert.ErrorContains(t, err, "unknown bill category")
}

func newMemoryStore(t *testing.T) Store {
	t.Helper()
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, Sessions: MemorySessions})
	require.NoError(t, err)
	return res.Store
}
