package cache

import (
	"testing"
	"time"
)

func TestLRUGetSet(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")

	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = %q, %v", v, ok)
	}

	// "b" is now least recently used and should be evicted.
	c.Set("c", "3")
	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if c.Size() != 2 {
		t.Errorf("Size = %d, want 2", c.Size())
	}
}

func TestLRUTTLExpiry(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	c.Set("k", 42)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to be missed")
	}
	if c.Size() != 0 {
		t.Errorf("Size after expiry = %d, want 0", c.Size())
	}
}

func TestLRUDeletePrefix(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	c.Set("summary:1:2025-12", 100)
	c.Set("summary:1:2025-11", 200)
	c.Set("summary:2:2025-12", 300)

	if n := c.DeletePrefix("summary:1:"); n != 2 {
		t.Errorf("DeletePrefix removed %d entries, want 2", n)
	}
	if _, ok := c.Get("summary:2:2025-12"); !ok {
		t.Error("unrelated key was removed")
	}
}

func TestLRUCleanExpired(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)

	if n := c.CleanExpired(); n != 2 {
		t.Errorf("CleanExpired = %d, want 2", n)
	}
}
