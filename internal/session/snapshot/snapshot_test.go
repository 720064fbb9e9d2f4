package snapshot

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *Redis {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	prefix := "test:" + uuid.NewString() + ":"
	r, err := NewRedis(ctx, Options{Addr: addr, Prefix: prefix, TTL: time.Minute})
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRedisRoundTrip(t *testing.T) {
	r := setupRedis(t)
	ctx := context.Background()

	rec := &Record{
		Key:       "42:mines",
		ID:        uuid.New(),
		Kind:      "mines",
		Players:   []int64{42},
		ChatID:    -100,
		Wager:     decimal.RequireFromString("12.50"),
		Escrow:    map[int64]decimal.Decimal{42: decimal.RequireFromString("12.50")},
		Seed:      "abc",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		State:     map[string]any{"revealed": []int{1, 2}},
	}
	require.NoError(t, r.Save(ctx, rec))

	got, err := r.Load(ctx, "42:mines")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.ID, got.ID)
	assert.True(t, rec.Escrow[42].Equal(got.Escrow[42]))
	assert.Equal(t, []int64{42}, got.Players)

	all, err := r.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, r.Delete(ctx, "42:mines"))
	got, err = r.Load(ctx, "42:mines")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNewRedisWithClientDefaults(t *testing.T) {
	r := NewRedisWithClient(nil, "", 0)
	assert.Equal(t, DefaultPrefix, r.prefix)
	assert.Zero(t, r.ttl)
}
