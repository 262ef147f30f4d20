package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Fatalf("expected miss for unknown key")
	}

	c.Set(ctx, "token:usdc", "0x29219dd400f2Bf60E5a23d13Be72B486D4038894", time.Minute)
	value, ok := c.Get(ctx, "token:usdc")
	if !ok {
		t.Fatalf("expected hit after set")
	}
	if value != "0x29219dd400f2Bf60E5a23d13Be72B486D4038894" {
		t.Fatalf("unexpected value: %s", value)
	}
}

func TestMemoryExpiry(t *testing.T) {
	c := NewMemory()
	current := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	ctx := context.Background()
	c.Set(ctx, "key", "value", time.Minute)

	if _, ok := c.Get(ctx, "key"); !ok {
		t.Fatalf("expected hit before expiry")
	}

	current = current.Add(2 * time.Minute)
	if _, ok := c.Get(ctx, "key"); ok {
		t.Fatalf("expected miss after expiry")
	}
	// 过期条目被惰性清理。
	if len(c.entries) != 0 {
		t.Fatalf("expected expired entry to be evicted")
	}
}

func TestMemoryNonPositiveTTL(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	c.Set(ctx, "key", "value", 0)
	if _, ok := c.Get(ctx, "key"); ok {
		t.Fatalf("expected zero ttl to skip caching")
	}

	c.Set(ctx, "key", "value", -time.Second)
	if _, ok := c.Get(ctx, "key"); ok {
		t.Fatalf("expected negative ttl to skip caching")
	}
}

func TestMemoryClose(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()
	c.Set(ctx, "key", "value", time.Minute)
	if err := c.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.Get(ctx, "key"); ok {
		t.Fatalf("expected cache to be empty after close")
	}
}
