package locks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedis(client, "test:", ttl), mr
}

func TestRedis_LockAndRelease(t *testing.T) {
	l, mr := newTestRedis(t, 10*time.Second)
	ctx := context.Background()

	release, err := l.Lock(ctx, "registrations")
	if err != nil {
		t.Fatalf("Lock returned error: %v", err)
	}
	if !mr.Exists("test:registrations") {
		t.Fatal("expected lock key to be set")
	}
	if ttl := mr.TTL("test:registrations"); ttl <= 0 || ttl > 10*time.Second {
		t.Errorf("expected ttl within 10s, got %v", ttl)
	}

	busy, cancel := context.WithTimeout(ctx, 80*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(busy, "registrations"); !errors.Is(err, ErrNotAcquired) {
		t.Fatalf("expected ErrNotAcquired while held, got %v", err)
	}

	release()
	release()
	if mr.Exists("test:registrations") {
		t.Fatal("expected lock key to be deleted on release")
	}

	again, err := l.Lock(ctx, "registrations")
	if err != nil {
		t.Fatalf("Lock after release returned error: %v", err)
	}
	again()
}

func TestRedis_WaitsForHolder(t *testing.T) {
	l, _ := newTestRedis(t, 10*time.Second)
	ctx := context.Background()

	release, err := l.Lock(ctx, "registrations")
	if err != nil {
		t.Fatalf("Lock returned error: %v", err)
	}
	go func() {
		time.Sleep(50 * time.Millisecond)
		release()
	}()

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	next, err := l.Lock(waitCtx, "registrations")
	if err != nil {
		t.Fatalf("expected lock after holder released, got %v", err)
	}
	next()
}

func TestRedis_ReleaseKeepsForeignToken(t *testing.T) {
	l, mr := newTestRedis(t, time.Second)
	ctx := context.Background()

	release, err := l.Lock(ctx, "registrations")
	if err != nil {
		t.Fatalf("Lock returned error: %v", err)
	}

	// The lease expired and another instance took the lock.
	mr.FastForward(2 * time.Second)
	if mr.Exists("test:registrations") {
		t.Fatal("expected lock to expire")
	}
	if err := mr.Set("test:registrations", "other-instance"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	release()
	got, err := mr.Get("test:registrations")
	if err != nil {
		t.Fatalf("expected foreign lock to survive release, got %v", err)
	}
	if got != "other-instance" {
		t.Errorf("expected other-instance, got %q", got)
	}
}
