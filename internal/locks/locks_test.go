package locks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gdg-garage/crawl-registration-api/internal/config"
)

func TestLocal_SerialisesSameKey(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Lock(ctx, "tuesday")
			if err != nil {
				t.Errorf("Lock returned error: %v", err)
				return
			}
			defer release()

			mu.Lock()
			inside++
			maxSeen = max(maxSeen, inside)
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("expected at most one holder, saw %d", maxSeen)
	}
}

func TestLocal_DifferentKeysIndependent(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	release, err := l.Lock(ctx, "tuesday")
	if err != nil {
		t.Fatalf("Lock returned error: %v", err)
	}
	defer release()

	ctx2, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	other, err := l.Lock(ctx2, "thursday")
	if err != nil {
		t.Fatalf("expected thursday lock to be free, got %v", err)
	}
	other()
}

func TestLocal_ContextCancelled(t *testing.T) {
	l := NewLocal()
	release, _ := l.Lock(context.Background(), "tuesday")
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "tuesday"); !errors.Is(err, ErrNotAcquired) {
		t.Fatalf("expected ErrNotAcquired, got %v", err)
	}
}

func TestLocal_ReleaseTwice(t *testing.T) {
	l := NewLocal()
	release, _ := l.Lock(context.Background(), "tuesday")
	release()
	release()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	again, err := l.Lock(ctx, "tuesday")
	if err != nil {
		t.Fatalf("expected lock to be free after release, got %v", err)
	}
	again()
}

func TestNew(t *testing.T) {
	tests := []struct {
		mode    string
		want    any
		wantErr bool
	}{
		{"", &Local{}, false},
		{"local", &Local{}, false},
		{"none", Noop{}, false},
		{"redis", &Redis{}, false},
		{"zookeeper", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			l, err := New(&config.Config{AdmissionLock: tt.mode, RedisAddr: "localhost:6379"})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New returned error: %v", err)
			}
			switch tt.want.(type) {
			case *Local:
				if _, ok := l.(*Local); !ok {
					t.Errorf("expected *Local, got %T", l)
				}
			case Noop:
				if _, ok := l.(Noop); !ok {
					t.Errorf("expected Noop, got %T", l)
				}
			case *Redis:
				if _, ok := l.(*Redis); !ok {
					t.Errorf("expected *Redis, got %T", l)
				}
			}
		})
	}
}
