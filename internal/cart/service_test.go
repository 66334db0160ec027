package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/quickbite-dev/quickbite-backend/pkg/errors"
)

type memoryStore struct {
	snaps map[string]Snapshot
}

func newMemoryStore() *memoryStore {
	return &memoryStore{snaps: map[string]Snapshot{}}
}

func (m *memoryStore) Load(_ context.Context, userID string) (Snapshot, error) {
	return m.snaps[userID], nil
}

func (m *memoryStore) Save(_ context.Context, userID string, snap Snapshot) error {
	m.snaps[userID] = snap
	return nil
}

func (m *memoryStore) Drop(_ context.Context, userID string) error {
	delete(m.snaps, userID)
	return nil
}

func newTestService(t *testing.T) (Service, *memoryStore) {
	t.Helper()
	store := newMemoryStore()
	svc, err := NewService(store)
	require.NoError(t, err)
	return svc, store
}

func paneerTikka() Item {
	return Item{ItemID: "paneer-tikka", Name: "Paneer Tikka", UnitPriceCents: 24900}
}

func TestAddInsertsWithQuantityOne(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	item := paneerTikka()
	item.Quantity = 5 // caller-provided quantity is ignored

	outcome, err := svc.Add(ctx, "u1", item)
	require.NoError(t, err)
	assert.Equal(t, AddOutcomeInserted, outcome)

	view, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 1, view.Items[0].Quantity)
	assert.Equal(t, int64(24900), view.TotalCents)
}

func TestAddExistingItemIsNoOp(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", paneerTikka())
	require.NoError(t, err)
	_, err = svc.IncreaseQty(ctx, "u1", "paneer-tikka")
	require.NoError(t, err)

	outcome, err := svc.Add(ctx, "u1", paneerTikka())
	require.NoError(t, err)
	assert.Equal(t, AddOutcomeAlreadyPresent, outcome)

	view, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity, "re-adding must not reset quantity")
}

func TestIncreaseAndDecreaseQty(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", paneerTikka())
	require.NoError(t, err)

	view, err := svc.IncreaseQty(ctx, "u1", "paneer-tikka")
	require.NoError(t, err)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, int64(49800), view.TotalCents)

	view, err = svc.DecreaseQty(ctx, "u1", "paneer-tikka")
	require.NoError(t, err)
	assert.Equal(t, 1, view.Items[0].Quantity)
}

func TestDecreaseQtyFloorsAtOne(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", paneerTikka())
	require.NoError(t, err)

	for range 3 {
		view, err := svc.DecreaseQty(ctx, "u1", "paneer-tikka")
		require.NoError(t, err)
		assert.Equal(t, 1, view.Items[0].Quantity)
	}
}

func TestAdjustQtyMissingItem(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.IncreaseQty(context.Background(), "u1", "ghost")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestRemoveIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", paneerTikka())
	require.NoError(t, err)

	view, err := svc.Remove(ctx, "u1", "paneer-tikka")
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	view, err = svc.Remove(ctx, "u1", "paneer-tikka")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestClearDropsSnapshot(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", paneerTikka())
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, "u1"))
	_, ok := store.snaps["u1"]
	assert.False(t, ok)

	view, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.TotalCents)
}

func TestTotalTracksMutations(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", Item{ItemID: "A", Name: "Masala Dosa", UnitPriceCents: 100})
	require.NoError(t, err)
	_, err = svc.IncreaseQty(ctx, "u1", "A")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "u1", Item{ItemID: "B", Name: "Lassi", UnitPriceCents: 50})
	require.NoError(t, err)

	view, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(250), view.TotalCents)

	view, err = svc.Remove(ctx, "u1", "A")
	require.NoError(t, err)
	assert.Equal(t, int64(50), view.TotalCents)
}

func TestAddKeepsShopIdentity(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	item := paneerTikka()
	item.ShopID = "shop-42"
	item.ShopName = "Madras Tiffin House"
	item.OwnerID = "owner-7"

	_, err := svc.Add(ctx, "u1", item)
	require.NoError(t, err)

	view, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "shop-42", view.Items[0].ShopID)
	assert.Equal(t, "Madras Tiffin House", view.Items[0].ShopName)
	assert.Equal(t, "owner-7", view.Items[0].OwnerID)
}

func TestValidationErrors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "", paneerTikka())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())

	_, err = svc.Add(ctx, "u1", Item{Name: "No ID"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Add(ctx, "u1", Item{ItemID: "x", Name: "Bad", UnitPriceCents: -1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
