package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemory_SetGet(t *testing.T) {
	c := NewMemory(10)
	ctx := context.Background()

	c.Set(ctx, "a", "1", time.Minute)
	got, ok := c.Get(ctx, "a")
	if !ok || got != "1" {
		t.Errorf("Get(a) = %q, %v; want 1, true", got, ok)
	}

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Error("Get on absent key should report miss")
	}
}

func TestMemory_Expiry(t *testing.T) {
	c := NewMemory(10)
	ctx := context.Background()

	c.Set(ctx, "short", "v", time.Nanosecond)
	time.Sleep(time.Millisecond)
	if _, ok := c.Get(ctx, "short"); ok {
		t.Error("expired entry should miss")
	}

	c.Set(ctx, "forever", "v", 0)
	time.Sleep(time.Millisecond)
	if _, ok := c.Get(ctx, "forever"); !ok {
		t.Error("zero-TTL entry must not expire")
	}
}

func TestMemory_Delete(t *testing.T) {
	c := NewMemory(10)
	ctx := context.Background()

	c.Set(ctx, "a", "1", time.Minute)
	c.Delete(ctx, "a")
	if _, ok := c.Get(ctx, "a"); ok {
		t.Error("deleted entry should miss")
	}

	// Deleting an absent key is a no-op.
	c.Delete(ctx, "absent")
}

func TestMemory_CapacityEviction(t *testing.T) {
	c := NewMemory(2)
	ctx := context.Background()

	c.Set(ctx, "a", "1", 0)
	c.Set(ctx, "b", "2", 0)
	c.Set(ctx, "c", "3", 0)

	if _, ok := c.Get(ctx, "a"); ok {
		t.Error("least recently used entry should be evicted")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestMemory_OverwriteKeepsSingleEntry(t *testing.T) {
	c := NewMemory(10)
	ctx := context.Background()

	c.Set(ctx, "a", "1", time.Minute)
	c.Set(ctx, "a", "2", time.Minute)
	got, _ := c.Get(ctx, "a")
	if got != "2" {
		t.Errorf("Get after overwrite = %q, want 2", got)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestMemory_CleanExpired(t *testing.T) {
	c := NewMemory(10)
	ctx := context.Background()

	c.Set(ctx, "a", "1", time.Nanosecond)
	c.Set(ctx, "b", "2", time.Hour)
	time.Sleep(time.Millisecond)

	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
	if _, ok := c.Get(ctx, "b"); !ok {
		t.Error("live entry should survive cleanup")
	}
}

func TestMemory_Ping(t *testing.T) {
	c := NewMemory(1)
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping() = %v", err)
	}
}
