package seen

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/feral-file/ff-ugc/internal/adapter"
	"github.com/feral-file/ff-ugc/internal/logger"
	"github.com/feral-file/ff-ugc/internal/metrics"
	"github.com/feral-file/ff-ugc/internal/store"
)

// Config holds the unseen count cache settings. A zero CacheTTL disables the cache.
type Config struct {
	CacheSize int
	CacheTTL  time.Duration
}

// Tracker keeps the per-user "last seen approved content" watermark and counts what is new since
type Tracker interface {
	// MarkSeen moves the user's watermark to now and returns it
	MarkSeen(ctx context.Context, userID string) (time.Time, error)
	// GetLastSeen returns the user's watermark, nil when the user never marked anything as seen
	GetLastSeen(ctx context.Context, userID string) (*time.Time, error)
	// CountApprovedSince counts the user's accepted submissions processed strictly after since.
	// A nil since counts every accepted submission.
	CountApprovedSince(ctx context.Context, userID string, since *time.Time) (int64, error)
	// UnseenApprovedCount counts the accepted submissions processed after the user's watermark
	UnseenApprovedCount(ctx context.Context, userID string) (int64, error)
	// Invalidate drops cached unseen counts
	Invalidate(userIDs ...string)
}

type tracker struct {
	store   store.Store
	clock   adapter.Clock
	metrics *metrics.Metrics
	cache   *expirable.LRU[string, int64]

	// generation is bumped by every invalidation. A count is cached only when no
	// invalidation happened while it was being read.
	mu         sync.Mutex
	generation uint64
}

// NewTracker creates a new seen state tracker
func NewTracker(st store.Store, clock adapter.Clock, cfg Config, m *metrics.Metrics) Tracker {
	t := &tracker{
		store:   st,
		clock:   clock,
		metrics: m,
	}

	if cfg.CacheTTL > 0 {
		size := cfg.CacheSize
		if size <= 0 {
			size = 10000
		}
		t.cache = expirable.NewLRU[string, int64](size, nil, cfg.CacheTTL)
	}

	return t
}

// MarkSeen moves the user's watermark to now
func (t *tracker) MarkSeen(ctx context.Context, userID string) (time.Time, error) {
	now := t.clock.Now().UTC().Truncate(time.Microsecond)
	if err := t.store.UpsertSentinel(ctx, userID, now); err != nil {
		return time.Time{}, err
	}
	t.Invalidate(userID)

	logger.DebugCtx(ctx, "Marked content seen", zap.String("userID", userID), zap.Time("watermark", now))
	return now, nil
}

// GetLastSeen returns the user's watermark
func (t *tracker) GetLastSeen(ctx context.Context, userID string) (*time.Time, error) {
	watermark, err := t.store.FindSentinel(ctx, userID)
	if err != nil {
		return nil, err
	}
	if watermark == nil {
		return nil, nil
	}

	lastSeen := watermark.LastSeenAt.UTC()
	return &lastSeen, nil
}

// CountApprovedSince counts the user's accepted submissions processed after since
func (t *tracker) CountApprovedSince(ctx context.Context, userID string, since *time.Time) (int64, error) {
	return t.store.CountAccepted(ctx, userID, since)
}

// UnseenApprovedCount counts the accepted submissions processed after the user's watermark
func (t *tracker) UnseenApprovedCount(ctx context.Context, userID string) (int64, error) {
	if t.cache != nil {
		if count, ok := t.cache.Get(userID); ok {
			t.metrics.UnseenCacheLookup(true)
			return count, nil
		}
		t.metrics.UnseenCacheLookup(false)
	}

	generation := t.currentGeneration()

	lastSeen, err := t.GetLastSeen(ctx, userID)
	if err != nil {
		return 0, err
	}

	count, err := t.CountApprovedSince(ctx, userID, lastSeen)
	if err != nil {
		return 0, err
	}

	t.cacheCount(userID, count, generation)

	return count, nil
}

func (t *tracker) currentGeneration() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.generation
}

// cacheCount caches count unless an invalidation ran since generation was read
func (t *tracker) cacheCount(userID string, count int64, generation uint64) {
	if t.cache == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.generation != generation {
		return
	}
	t.cache.Add(userID, count)
}

// Invalidate drops cached unseen counts of the given users
func (t *tracker) Invalidate(userIDs ...string) {
	if t.cache == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.generation++
	for _, userID := range userIDs {
		t.cache.Remove(userID)
	}
}
