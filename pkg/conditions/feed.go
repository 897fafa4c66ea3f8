// Package conditions supplies live hydrologic estimates for reaches. The
// routing core only ever reads from a Feed; how and when the data is
// refreshed is owned here, never by the engine.
package conditions

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Conditions is the current model estimate for one reach.
type Conditions struct {
	VelocityMPS   float64
	StreamflowM3S float64
}

// Feed exposes per-reach live conditions plus a freshness marker that is
// surfaced to API callers.
type Feed interface {
	Lookup(ctx context.Context, reachID int64) (Conditions, bool)
	Timestamp() time.Time
}

// Source fetches a full conditions snapshot from the upstream model feed.
type Source func(ctx context.Context) (map[int64]Conditions, error)

// Clock abstracts time so staleness behavior is testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }

// CachedFeed caches a Source snapshot and refreshes it lazily once the TTL
// has passed. A failed refresh keeps serving the stale snapshot; the
// timestamp then reports how old the data really is.
type CachedFeed struct {
	source Source
	clock  Clock
	ttl    time.Duration
	logger *slog.Logger

	mu        sync.Mutex
	data      map[int64]Conditions
	fetchedAt time.Time
}

func NewCachedFeed(source Source, clock Clock, ttl time.Duration, logger *slog.Logger) *CachedFeed {
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedFeed{source: source, clock: clock, ttl: ttl, logger: logger}
}

func (f *CachedFeed) Lookup(ctx context.Context, reachID int64) (Conditions, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.maybeRefresh(ctx)
	c, ok := f.data[reachID]
	return c, ok
}

func (f *CachedFeed) Timestamp() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchedAt
}

// maybeRefresh fetches a new snapshot when the cached one is older than
// the TTL. Caller holds the mutex.
func (f *CachedFeed) maybeRefresh(ctx context.Context) {
	now := f.clock.Now()
	if f.data != nil && now.Sub(f.fetchedAt) <= f.ttl {
		return
	}
	snapshot, err := f.source(ctx)
	if err != nil {
		f.logger.Warn("conditions refresh failed, serving stale data",
			"error", err, "fetched_at", f.fetchedAt)
		return
	}
	f.data = snapshot
	f.fetchedAt = now
	f.logger.Debug("conditions refreshed", "reaches", len(snapshot))
}

// StaticFeed serves a fixed snapshot. Used for offline runs and tests.
type StaticFeed struct {
	Data      map[int64]Conditions
	FetchedAt time.Time
}

func (f *StaticFeed) Lookup(_ context.Context, reachID int64) (Conditions, bool) {
	c, ok := f.Data[reachID]
	return c, ok
}

func (f *StaticFeed) Timestamp() time.Time { return f.FetchedAt }
