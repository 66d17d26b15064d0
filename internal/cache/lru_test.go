package cache

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(size int, ttl time.Duration) (*LRUCache[float64], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	c := NewLRUCache[float64](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Hour)

	c.Set("CNY/USD", 0.14)
	c.Set("USD/EUR", 0.92)
	c.Get("CNY/USD")
	c.Set("EUR/GBP", 0.85)

	if _, ok := c.Get("USD/EUR"); ok {
		t.Error("USD/EUR should have been evicted")
	}
	if v, ok := c.Get("CNY/USD"); !ok || v != 0.14 {
		t.Errorf("CNY/USD = %v, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d", c.Size())
	}
}

func TestLRUCache_TTL(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	clock.advance(30 * time.Second)
	c.Set("b", 3)
	clock.advance(45 * time.Second)

	if _, ok := c.Get("a"); ok {
		t.Error("a should have expired")
	}
	if n := c.CleanExpired(); n != 0 {
		t.Errorf("CleanExpired() = %d, a was already dropped by Get", n)
	}
	clock.advance(time.Minute)
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
}

func TestLRUCache_NoTTL(t *testing.T) {
	c, clock := newTestCache(10, 0)
	c.Set("a", 1)
	clock.advance(24 * 365 * time.Hour)
	if _, ok := c.Get("a"); !ok {
		t.Error("zero ttl should never expire")
	}
}

func TestLRUCache_Swap(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)

	if _, found := c.Swap("CNY/USD", 1.00); found {
		t.Error("first Swap should find nothing")
	}
	prev, found := c.Swap("CNY/USD", 1.03)
	if !found || prev != 1.00 {
		t.Errorf("Swap() = %v, %v", prev, found)
	}
	clock.advance(2 * time.Minute)
	if _, found := c.Swap("CNY/USD", 1.05); found {
		t.Error("expired value should not be returned")
	}
	if v, _ := c.Get("CNY/USD"); v != 1.05 {
		t.Errorf("Get() = %v", v)
	}
}

func TestLRUCache_Delete(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)
	c.Set("a", 1)
	c.Delete("a")
	c.Delete("missing")
	if c.Size() != 0 {
		t.Errorf("Size() = %d", c.Size())
	}
}

func TestJanitor(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	c.Set("a", 1)
	clock.advance(2 * time.Minute)

	j := NewJanitor(c)
	if n := j.Sweep(); n != 1 {
		t.Errorf("Sweep() = %d", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
