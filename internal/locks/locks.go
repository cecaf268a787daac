// Package locks serialises admission across server goroutines or instances.
package locks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gdg-garage/crawl-registration-api/internal/config"
	"github.com/redis/go-redis/v9"
)

var ErrNotAcquired = errors.New("lock not acquired")

// Locker hands out exclusive locks by key. The returned release func is safe
// to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// New returns the locker selected by ADMISSION_LOCK.
func New(cfg *config.Config) (Locker, error) {
	switch cfg.AdmissionLock {
	case "local", "":
		return NewLocal(), nil
	case "none":
		return Noop{}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		return NewRedis(client, "crawl:admission:", 10*time.Second), nil
	default:
		return nil, fmt.Errorf("unknown ADMISSION_LOCK %q", cfg.AdmissionLock)
	}
}

// Noop never blocks. Concurrent admissions may then overbook a day.
type Noop struct{}

func (Noop) Lock(context.Context, string) (func(), error) { return func() {}, nil }

// Local is an in-process lock per key.
type Local struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewLocal() *Local {
	return &Local{slots: make(map[string]chan struct{})}
}

func (l *Local) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	ch := l.slot(key)
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("lock %s: %w: %w", key, ErrNotAcquired, ctx.Err())
	}
	var once sync.Once
	return func() { once.Do(func() { <-ch }) }, nil
}
