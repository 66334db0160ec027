package cart

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/quickbite-dev/quickbite-backend/pkg/errors"
	"github.com/quickbite-dev/quickbite-backend/pkg/types"
)

// AddOutcome distinguishes a fresh insert from a no-op on an item that was
// already in the cart.
type AddOutcome string

const (
	AddOutcomeInserted       AddOutcome = "inserted"
	AddOutcomeAlreadyPresent AddOutcome = "already_present"
)

// View is the cart as returned to clients, with the derived total.
type View struct {
	Items      []Item `json:"items"`
	TotalCents int64  `json:"totalCents"`
}

// Service exposes the per-user cart operations.
type Service interface {
	Add(ctx context.Context, userID string, item Item) (AddOutcome, error)
	IncreaseQty(ctx context.Context, userID, itemID string) (*View, error)
	DecreaseQty(ctx context.Context, userID, itemID string) (*View, error)
	Remove(ctx context.Context, userID, itemID string) (*View, error)
	Clear(ctx context.Context, userID string) error
	Get(ctx context.Context, userID string) (*View, error)
}

type service struct {
	store Store
}

// NewService builds a cart service backed by the provided store.
func NewService(store Store) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	return &service{store: store}, nil
}

// Add puts the item in the cart with quantity 1. Adding an item that is
// already present leaves the cart untouched; quantity changes go through
// IncreaseQty.
func (s *service) Add(ctx context.Context, userID string, item Item) (AddOutcome, error) {
	if err := requireUser(userID); err != nil {
		return "", err
	}
	if strings.TrimSpace(item.ItemID) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if strings.TrimSpace(item.Name) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if item.UnitPriceCents < 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "item price must not be negative")
	}

	snap, err := s.store.Load(ctx, userID)
	if err != nil {
		return "", err
	}

	if findItem(snap.Items, item.ItemID) >= 0 {
		return AddOutcomeAlreadyPresent, nil
	}

	item.Quantity = 1
	snap.Items = append(snap.Items, item)
	if err := s.store.Save(ctx, userID, snap); err != nil {
		return "", err
	}
	return AddOutcomeInserted, nil
}

func (s *service) IncreaseQty(ctx context.Context, userID, itemID string) (*View, error) {
	return s.adjustQty(ctx, userID, itemID, +1)
}

// DecreaseQty lowers the quantity but never below 1; removal is explicit.
func (s *service) DecreaseQty(ctx context.Context, userID, itemID string) (*View, error) {
	return s.adjustQty(ctx, userID, itemID, -1)
}

func (s *service) adjustQty(ctx context.Context, userID, itemID string, delta int) (*View, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(itemID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}

	snap, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := findItem(snap.Items, itemID)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}

	next := snap.Items[idx].Quantity + delta
	if next < 1 {
		next = 1
	}
	if next != snap.Items[idx].Quantity {
		snap.Items[idx].Quantity = next
		if err := s.store.Save(ctx, userID, snap); err != nil {
			return nil, err
		}
	}
	return viewOf(snap), nil
}

// Remove drops the line entirely. Removing an absent item is a no-op so
// retried deletes stay safe.
func (s *service) Remove(ctx context.Context, userID, itemID string) (*View, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(itemID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}

	snap, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := findItem(snap.Items, itemID)
	if idx >= 0 {
		snap.Items = append(snap.Items[:idx], snap.Items[idx+1:]...)
		if err := s.store.Save(ctx, userID, snap); err != nil {
			return nil, err
		}
	}
	return viewOf(snap), nil
}

func (s *service) Clear(ctx context.Context, userID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	return s.store.Drop(ctx, userID)
}

func (s *service) Get(ctx context.Context, userID string) (*View, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	snap, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return viewOf(snap), nil
}

func viewOf(snap Snapshot) *View {
	var total int64
	for _, item := range snap.Items {
		total += types.LineTotalCents(item.UnitPriceCents, item.Quantity)
	}
	items := snap.Items
	if items == nil {
		items = []Item{}
	}
	return &View{Items: items, TotalCents: total}
}

func findItem(items []Item, itemID string) int {
	for i, item := range items {
		if item.ItemID == itemID {
			return i
		}
	}
	return -1
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	return nil
}
