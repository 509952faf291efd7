package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestKey_Deterministic(t *testing.T) {
	a := Key("recipes", "list", "category_id=c1")
	b := Key("recipes", "list", "category_id=c1")
	if a != b {
		t.Errorf("Expected identical keys, got %q and %q", a, b)
	}
	if a == Key("recipes", "list", "category_id=c2") {
		t.Error("Expected different params to yield different keys")
	}
}

func TestCache_SetAndGet(t *testing.T) {
	c := New(1 * time.Second)

	c.Set("key1", "value1")

	val, found := c.Get("key1")
	if !found {
		t.Error("Expected to find key1")
	}
	if val != "value1" {
		t.Errorf("Expected value1, got %v", val)
	}
}

func TestCache_Expiration(t *testing.T) {
	c := New(50 * time.Millisecond)

	c.Set("key1", "value1")

	if _, found := c.Get("key1"); !found {
		t.Error("Expected to find key1 immediately")
	}

	time.Sleep(80 * time.Millisecond)

	if _, found := c.Get("key1"); found {
		t.Error("Expected key1 to be expired")
	}
}

func TestCache_FetchCachesResult(t *testing.T) {
	c := New(1 * time.Second)

	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return "fetched", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.Fetch(context.Background(), "k", fetch)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if v != "fetched" {
			t.Errorf("Expected fetched, got %v", v)
		}
	}

	if calls.Load() != 1 {
		t.Errorf("Expected a single fetch, got %d", calls.Load())
	}
}

func TestCache_FetchErrorNotCached(t *testing.T) {
	c := New(1 * time.Second)

	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("boom")
		}
		return "ok", nil
	}

	if _, err := c.Fetch(context.Background(), "k", fetch); err == nil {
		t.Fatal("Expected error from first fetch")
	}
	v, err := c.Fetch(context.Background(), "k", fetch)
	if err != nil || v != "ok" {
		t.Errorf("Expected retry to succeed, got %v %v", v, err)
	}
}

func TestCache_FetchDeduplicatesConcurrent(t *testing.T) {
	c := New(1 * time.Second)

	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Fetch(context.Background(), "k", fetch)
			if err != nil || v != "shared" {
				t.Errorf("Expected shared value, got %v %v", v, err)
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("Expected one in-flight fetch, got %d", calls.Load())
	}
}

func TestCache_InvalidatePrefix(t *testing.T) {
	c := New(1 * time.Second)

	c.Set(Key("recipes", "list", "a"), 1)
	c.Set(Key("recipes", "detail", "r1"), 2)
	c.Set(Key("categories", "list"), 3)

	c.InvalidatePrefix("recipes/")

	if _, found := c.Get(Key("recipes", "list", "a")); found {
		t.Error("Expected recipes list entry to be invalidated")
	}
	if _, found := c.Get(Key("recipes", "detail", "r1")); found {
		t.Error("Expected recipes detail entry to be invalidated")
	}
	if _, found := c.Get(Key("categories", "list")); !found {
		t.Error("Expected categories entry to survive")
	}
}
