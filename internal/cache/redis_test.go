package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	a := Key([]byte("jpeg-a"))
	b := Key([]byte("jpeg-b"))

	if !strings.HasPrefix(a, "meal-score:label:") {
		t.Errorf("key %q missing prefix", a)
	}
	if len(a) != len("meal-score:label:")+64 {
		t.Errorf("unexpected key length %d", len(a))
	}
	if a == b {
		t.Error("different images should have different keys")
	}
	if a != Key([]byte("jpeg-a")) {
		t.Error("key should be deterministic")
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	m := NewMemory(time.Hour)
	m.now = func() time.Time { return clock }

	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Fatal("empty cache should miss")
	}
	if err := m.Set(ctx, "k", "salad"); err != nil {
		t.Fatal(err)
	}
	if label, ok, err := m.Get(ctx, "k"); err != nil || !ok || label != "salad" {
		t.Errorf("Get = %q, %v, %v", label, ok, err)
	}

	clock = clock.Add(time.Hour)
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Error("entry should expire after ttl")
	}
}

func TestNewRedisCacheRequiresURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "", time.Hour); err == nil {
		t.Error("expected error for empty URL")
	}
	if _, err := NewRedisCache(context.Background(), "://bad", time.Hour); err == nil {
		t.Error("expected error for malformed URL")
	}
}

func TestOpenWithoutURLUsesMemory(t *testing.T) {
	c, err := Open(context.Background(), "", time.Hour)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := c.(*Memory); !ok {
		t.Fatalf("Open(\"\") = %T, want *Memory", c)
	}

	ctx := context.Background()
	if err := c.Set(ctx, Key([]byte("jpeg")), "pizza"); err != nil {
		t.Fatal(err)
	}
	if label, ok, _ := c.Get(ctx, Key([]byte("jpeg"))); !ok || label != "pizza" {
		t.Errorf("Get = %q, %v", label, ok)
	}
}

func TestOpenRejectsBadURL(t *testing.T) {
	c, err := Open(context.Background(), "not-a-url", time.Hour)
	if err == nil {
		t.Error("expected error for malformed redis URL")
	}
	if c != nil {
		t.Errorf("Open returned %T alongside an error", c)
	}
}
