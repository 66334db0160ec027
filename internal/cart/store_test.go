package cart

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickbite-dev/quickbite-backend/pkg/redis"
)

type stubKV struct {
	values map[string]string
}

func newStubKV() *stubKV {
	return &stubKV{values: map[string]string{}}
}

func (s *stubKV) Get(_ context.Context, key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (s *stubKV) Set(_ context.Context, key string, value any, _ time.Duration) error {
	s.values[key] = fmt.Sprint(value)
	return nil
}

func (s *stubKV) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func (s *stubKV) CartKey(userID string) string {
	return "qb:cart:" + userID
}

func TestRedisStoreRoundTrip(t *testing.T) {
	kv := newStubKV()
	store, err := NewRedisStore(kv, 0)
	require.NoError(t, err)
	ctx := context.Background()

	snap := Snapshot{Items: []Item{{ItemID: "dosa", Name: "Masala Dosa", UnitPriceCents: 12000, Quantity: 2}}}
	require.NoError(t, store.Save(ctx, "u1", snap))

	got, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "dosa", got.Items[0].ItemID)
	assert.Equal(t, 2, got.Items[0].Quantity)
}

func TestRedisStoreMissReturnsEmptySnapshot(t *testing.T) {
	store, err := NewRedisStore(newStubKV(), 0)
	require.NoError(t, err)

	got, err := store.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func TestRedisStoreDrop(t *testing.T) {
	kv := newStubKV()
	store, err := NewRedisStore(kv, 0)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "u1", Snapshot{Items: []Item{{ItemID: "x", Name: "X", Quantity: 1}}}))
	require.NoError(t, store.Drop(ctx, "u1"))

	got, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func TestNewRedisStoreRequiresKV(t *testing.T) {
	_, err := NewRedisStore(nil, 0)
	require.Error(t, err)
}
