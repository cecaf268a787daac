// Package capacity counts confirmed seats across both registration shapes.
//
// Nothing here is cached. Every count re-reads the collections, which is fine
// for two events with a few dozen seats each and nothing more.
package capacity

import (
	"context"
	"fmt"

	"github.com/gdg-garage/crawl-registration-api/internal/models"
)

// Criteria selects the registrations to count. Zero fields match everything.
type Criteria struct {
	Day        models.DayLabel
	LocationID models.ID
}

// Counter counts confirmed registrations held in one storage shape.
type Counter interface {
	Count(ctx context.Context, c Criteria) (int, error)
}

// Ledger sums a set of counters, one per registration shape.
type Ledger struct {
	counters []Counter
}

func NewLedger(counters ...Counter) *Ledger {
	return &Ledger{counters: counters}
}

// CountConfirmed returns the number of seats taken under c. A label with no
// matching event and a label with no registrations both yield 0.
func (l *Ledger) CountConfirmed(ctx context.Context, c Criteria) (int, error) {
	total := 0
	for _, counter := range l.counters {
		n, err := counter.Count(ctx, c)
		if err != nil {
			return 0, fmt.Errorf("count confirmed: %w", err)
		}
		total += n
	}
	return total, nil
}

// Count lets a Ledger be nested as a Counter.
func (l *Ledger) Count(ctx context.Context, c Criteria) (int, error) {
	return l.CountConfirmed(ctx, c)
}

// Snapshot is the derived capacity view of one location or day.
type Snapshot struct {
	Capacity   int
	Registered int
	Available  int
}

func NewSnapshot(capacity, registered int) Snapshot {
	return Snapshot{
		Capacity:   capacity,
		Registered: registered,
		Available:  max(0, capacity-registered),
	}
}

func (s Snapshot) IsAvailable() bool { return s.Available > 0 }
