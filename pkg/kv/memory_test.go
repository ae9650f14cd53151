package kv

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemoryStore_TakeIsSingleUse(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Set(ctx, "oauth:state:abc", []byte("google"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, err := s.Take(ctx, "oauth:state:abc")
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if string(v) != "google" {
		t.Errorf("expected google, got %q", v)
	}

	if _, err := s.Take(ctx, "oauth:state:abc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second take, got %v", err)
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	_ = s.Set(ctx, "short", []byte("1"), time.Minute)
	_ = s.Set(ctx, "forever", []byte("1"), 0)

	now = now.Add(time.Hour)

	if _, err := s.Take(ctx, "short"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected expired key to be gone, got %v", err)
	}
	if _, err := s.Take(ctx, "forever"); err != nil {
		t.Errorf("expected key without ttl to survive, got %v", err)
	}
}

func TestMemoryStore_DeleteMissingKey(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Delete(context.Background(), "nope"); err != nil {
		t.Fatalf("Delete of a missing key should succeed, got %v", err)
	}
}

func TestMemoryStore_ConcurrentTake(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.Set(ctx, "k", []byte("v"), time.Minute)

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Take(ctx, "k"); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins.Load())
	}
}

func TestMemoryStore_SetCopiesValue(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	buf := []byte("abc")
	_ = s.Set(ctx, "k", buf, 0)
	buf[0] = 'z'

	v, _ := s.Take(ctx, "k")
	if string(v) != "abc" {
		t.Fatalf("stored value changed with caller's buffer: %q", v)
	}
}
