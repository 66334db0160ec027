package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/quickbite-dev/quickbite-backend/pkg/errors"
	"github.com/quickbite-dev/quickbite-backend/pkg/redis"
)

// Item is a single cart line. Quantity is managed by the service; price,
// name and the owning shop are captured from the menu at add time.
type Item struct {
	ItemID         string `json:"itemId"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
	ImageURL       string `json:"imageUrl,omitempty"`
	ShopID         string `json:"shopId,omitempty"`
	ShopName       string `json:"shopName,omitempty"`
	OwnerID        string `json:"ownerId,omitempty"`
}

// Snapshot is the full cart state persisted per user. Reads and writes
// always move the whole snapshot, never individual lines.
type Snapshot struct {
	Items []Item `json:"items"`
}

// Store persists cart snapshots keyed by user.
type Store interface {
	Load(ctx context.Context, userID string) (Snapshot, error)
	Save(ctx context.Context, userID string, snap Snapshot) error
	Drop(ctx context.Context, userID string) error
}

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(userID string) string
}

type redisStore struct {
	kv  kvStore
	ttl time.Duration
}

// NewRedisStore builds a cart store backed by the shared Redis client.
// A zero ttl keeps carts until they are cleared.
func NewRedisStore(kv kvStore, ttl time.Duration) (Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("kv store required")
	}
	return &redisStore{kv: kv, ttl: ttl}, nil
}

func (s *redisStore) Load(ctx context.Context, userID string) (Snapshot, error) {
	raw, err := s.kv.Get(ctx, s.kv.CartKey(userID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Snapshot{}, nil
		}
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding cart snapshot")
	}
	return snap, nil
}

func (s *redisStore) Save(ctx context.Context, userID string, snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding cart snapshot")
	}
	if err := s.kv.Set(ctx, s.kv.CartKey(userID), string(raw), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart")
	}
	return nil
}

func (s *redisStore) Drop(ctx context.Context, userID string) error {
	if err := s.kv.Del(ctx, s.kv.CartKey(userID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart")
	}
	return nil
}
