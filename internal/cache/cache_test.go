package cache

import (
	"testing"
	"time"
)

func newTestCache(ttl time.Duration) (*Cache, *time.Time) {
	c := New(ttl)
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }
	return c, &current
}

func TestGetSet(t *testing.T) {
	c, _ := newTestCache(time.Hour)

	if _, ok := c.Get("show demands"); ok {
		t.Fatal("empty cache should miss")
	}

	c.Set("show demands", "SELECT * FROM demands")
	sql, ok := c.Get("show demands")
	if !ok || sql != "SELECT * FROM demands" {
		t.Fatalf("got %q, %v", sql, ok)
	}
}

func TestNormalization(t *testing.T) {
	c, _ := newTestCache(time.Hour)

	c.Set("Show Demands", "SELECT 1")

	for _, q := range []string{"show demands", "  SHOW DEMANDS  ", "Show Demands"} {
		if sql, ok := c.Get(q); !ok || sql != "SELECT 1" {
			t.Errorf("Get(%q) = %q, %v", q, sql, ok)
		}
	}
	if c.Stats().Entries != 1 {
		t.Errorf("normalized variants should share one entry, got %d", c.Stats().Entries)
	}
}

func TestExpiry(t *testing.T) {
	c, now := newTestCache(time.Hour)

	c.Set("q", "SELECT 1")

	*now = now.Add(59 * time.Minute)
	if _, ok := c.Get("q"); !ok {
		t.Fatal("entry should still be live")
	}

	*now = now.Add(2 * time.Minute)
	if _, ok := c.Get("q"); ok {
		t.Fatal("entry should have expired")
	}
	if c.Stats().Entries != 0 {
		t.Error("expired entry should be evicted on lookup")
	}
}

func TestSetOverwrites(t *testing.T) {
	c, _ := newTestCache(time.Hour)

	c.Set("q", "SELECT 1")
	c.Set("q", "SELECT 2")

	if sql, _ := c.Get("q"); sql != "SELECT 2" {
		t.Errorf("got %q, want overwrite", sql)
	}
	if c.Stats().Entries != 1 {
		t.Errorf("entries = %d, want 1", c.Stats().Entries)
	}
}

func TestClear(t *testing.T) {
	c, _ := newTestCache(time.Hour)
	c.Set("a", "SELECT 1")
	c.Set("b", "SELECT 2")

	c.Clear()
	if c.Stats().Entries != 0 {
		t.Errorf("entries = %d after Clear", c.Stats().Entries)
	}
}
