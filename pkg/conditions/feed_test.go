package conditions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type countingSource struct {
	calls    int
	snapshot map[int64]Conditions
	err      error
}

func (s *countingSource) fetch(ctx context.Context) (map[int64]Conditions, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshot, nil
}

func TestCachedFeedRefreshesOncePerTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 10, 6, 0, 0, 0, time.UTC)}
	source := &countingSource{snapshot: map[int64]Conditions{1: {VelocityMPS: 0.8}}}
	feed := NewCachedFeed(source.fetch, clock, 15*time.Minute, nil)

	c, ok := feed.Lookup(context.Background(), 1)
	require.True(t, ok)
	require.Equal(t, 0.8, c.VelocityMPS)
	require.Equal(t, 1, source.calls)
	require.Equal(t, clock.now, feed.Timestamp())

	// within the TTL: served from cache
	clock.advance(10 * time.Minute)
	_, ok = feed.Lookup(context.Background(), 1)
	require.True(t, ok)
	require.Equal(t, 1, source.calls)

	// past the TTL: one refresh
	clock.advance(10 * time.Minute)
	source.snapshot = map[int64]Conditions{1: {VelocityMPS: 1.1}}
	c, _ = feed.Lookup(context.Background(), 1)
	require.Equal(t, 2, source.calls)
	require.Equal(t, 1.1, c.VelocityMPS)
	require.Equal(t, clock.now, feed.Timestamp())
}

func TestCachedFeedServesStaleOnRefreshFailure(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 10, 6, 0, 0, 0, time.UTC)}
	source := &countingSource{snapshot: map[int64]Conditions{7: {VelocityMPS: 0.5}}}
	feed := NewCachedFeed(source.fetch, clock, time.Minute, nil)

	_, ok := feed.Lookup(context.Background(), 7)
	require.True(t, ok)
	fetchedAt := feed.Timestamp()

	clock.advance(2 * time.Minute)
	source.err = errors.New("model feed down")

	c, ok := feed.Lookup(context.Background(), 7)
	require.True(t, ok)
	require.Equal(t, 0.5, c.VelocityMPS)
	// timestamp keeps reporting how old the data really is
	require.Equal(t, fetchedAt, feed.Timestamp())
}

func TestCachedFeedUnknownReach(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	source := &countingSource{snapshot: map[int64]Conditions{}}
	feed := NewCachedFeed(source.fetch, clock, time.Minute, nil)

	_, ok := feed.Lookup(context.Background(), 42)
	require.False(t, ok)
}

func TestStaticFeed(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	feed := &StaticFeed{Data: map[int64]Conditions{1: {StreamflowM3S: 12}}, FetchedAt: ts}

	c, ok := feed.Lookup(context.Background(), 1)
	require.True(t, ok)
	require.Equal(t, 12.0, c.StreamflowM3S)
	require.Equal(t, ts, feed.Timestamp())

	_, ok = feed.Lookup(context.Background(), 2)
	require.False(t, ok)
}
