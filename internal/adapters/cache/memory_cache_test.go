package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mikey/email-triage-dashboard/internal/core"
	"go.uber.org/zap"
)

func sampleEntry(key string, expiresAt time.Time) *core.CacheEntry {
	return &core.CacheEntry{
		Key:       key,
		Spam:      core.LabelSpam,
		Category:  "promotions",
		Urgency:   "low",
		ModelUsed: "local",
		CreatedAt: expiresAt.Add(-time.Hour),
		ExpiresAt: expiresAt,
	}
}

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), 0)
	defer c.Stop()
	ctx := context.Background()

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := c.Set(ctx, sampleEntry("k", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Spam != core.LabelSpam || got.Category != "promotions" || got.Urgency != "low" {
		t.Errorf("unexpected entry %+v", got)
	}

	// Mutating the returned entry must not affect the cache
	got.Category = "changed"
	again, _ := c.Get(ctx, "k")
	if again.Category != "promotions" {
		t.Errorf("cache entry was mutated through returned pointer")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), 0)
	defer c.Stop()
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, sampleEntry("old", now.Add(-time.Minute)))
	_ = c.Set(ctx, sampleEntry("fresh", now.Add(time.Minute)))

	if _, err := c.Get(ctx, "old"); !errors.Is(err, ErrExpired) {
		t.Errorf("expected ErrExpired, got %v", err)
	}

	if err := c.Cleanup(ctx); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if _, err := c.Get(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected expired entry to be removed, got %v", err)
	}
	if _, err := c.Get(ctx, "fresh"); err != nil {
		t.Errorf("fresh entry should survive cleanup: %v", err)
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), 0)
	defer c.Stop()
	ctx := context.Background()

	_ = c.Set(ctx, sampleEntry("k", time.Now().Add(time.Hour)))
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryCacheStopIsIdempotent(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	c.Stop()
	c.Stop()
}
