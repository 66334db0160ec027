package redis

import (
	"testing"

	"github.com/quickbite-dev/quickbite-backend/pkg/config"
)

func TestKeyBuilders(t *testing.T) {
	c := &Client{}

	if got := c.CartKey("user-1"); got != "qb:cart:user-1" {
		t.Fatalf("unexpected cart key %q", got)
	}
	if got := c.IdempotencyKey("place-order", "abc"); got != "qb:idempotency:place-order:abc" {
		t.Fatalf("unexpected idempotency key %q", got)
	}
}

func TestBuildKeySkipsEmptyParts(t *testing.T) {
	c := &Client{}
	if got := c.buildKey("cart", "", "user-1"); got != "qb:cart:user-1" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error when url and address both missing")
	}
}

func TestOptionsFromConfigParsesURL(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{
		URL:      "redis://localhost:6379/2",
		PoolSize: 7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" {
		t.Fatalf("unexpected addr %q", opts.Addr)
	}
	if opts.DB != 2 {
		t.Fatalf("unexpected db %d", opts.DB)
	}
	if opts.PoolSize != 7 {
		t.Fatalf("pool size not applied: %d", opts.PoolSize)
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	c := &Client{}
	if err := c.Ping(t.Context()); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
	if _, err := c.Get(t.Context(), "k"); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
}
