package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DeveloperForam/test-house-design/internal/models"
	"github.com/DeveloperForam/test-house-design/internal/money"
	"github.com/DeveloperForam/test-house-design/pkg/redis"
)

// ErrCacheMiss is returned when neither cache layer holds a current summary.
var ErrCacheMiss = errors.New("cache miss")

// SummaryCache keeps booking summaries in memory and in Redis.
//
// Every write to a booking moves its generation in Redis. Entries carry the
// generation they were loaded under and are only served while it is still
// current, so a summary loaded before a payment and stored after it is never
// returned, on this instance or any other.
type SummaryCache struct {
	redis    KV
	logger   *zap.Logger
	memCache *MemoryCache
	ttl      time.Duration
}

// MemoryCache is the in-process layer.
type MemoryCache struct {
	mu     sync.RWMutex
	data   map[string]*CacheEntry
	maxAge time.Duration
}

type CacheEntry struct {
	Generation string          `json:"generation"`
	Booking    *models.Booking `json:"booking"`
	CachedAt   time.Time       `json:"-"`
}

// NewSummaryCache creates the cache. The memory layer is swept until ctx is done.
func NewSummaryCache(ctx context.Context, redisClient KV, logger *zap.Logger, ttl, memoryTTL time.Duration) *SummaryCache {
	return &SummaryCache{
		redis:    redisClient,
		logger:   logger,
		memCache: NewMemoryCache(ctx, memoryTTL),
		ttl:      ttl,
	}
}

func NewMemoryCache(ctx context.Context, maxAge time.Duration) *MemoryCache {
	cache := &MemoryCache{
		data:   make(map[string]*CacheEntry),
		maxAge: maxAge,
	}
	go cache.cleanup(ctx)
	return cache
}

// Generation returns the current generation of the summary requested as
// bookingID. Callers read it before loading the summary and pass it to Set.
func (sc *SummaryCache) Generation(ctx context.Context, bookingID string) (string, error) {
	gen, err := sc.redis.Get(ctx, sc.generationKey(bookingID))
	if errors.Is(err, redis.ErrKeyNotFound) {
		return "", nil
	}
	return gen, err
}

// Get checks memory first, then Redis. Entries from an older generation are misses.
func (sc *SummaryCache) Get(ctx context.Context, bookingID string) (*models.Booking, error) {
	gen, err := sc.Generation(ctx, bookingID)
	if err != nil {
		sc.logger.Warn("summary generation unavailable, skipping cache", zap.Error(err))
		return nil, ErrCacheMiss
	}
	key := sc.cacheKey(bookingID)

	if b := sc.memCache.Get(key, gen); b != nil {
		sc.logger.Debug("summary cache hit (memory)", zap.String("booking_id", bookingID))
		return b, nil
	}

	data, err := sc.redis.Get(ctx, key)
	if err == nil {
		var entry CacheEntry
		if err := json.Unmarshal([]byte(data), &entry); err == nil && entry.Booking != nil && entry.Generation == gen {
			sc.logger.Debug("summary cache hit (redis)", zap.String("booking_id", bookingID))
			sc.memCache.Set(key, gen, entry.Booking)
			return copyBooking(entry.Booking), nil
		}
	}

	sc.logger.Debug("summary cache miss", zap.String("booking_id", bookingID))
	return nil, ErrCacheMiss
}

// Set stores the summary under the id it was requested by, tagged with the
// generation read before it was loaded.
func (sc *SummaryCache) Set(ctx context.Context, bookingID, generation string, b *models.Booking) error {
	key := sc.cacheKey(bookingID)
	sc.memCache.Set(key, generation, copyBooking(b))

	data, err := json.Marshal(CacheEntry{Generation: generation, Booking: b})
	if err != nil {
		return fmt.Errorf("failed to marshal booking summary: %w", err)
	}
	if err := sc.redis.Set(ctx, key, data, sc.ttl); err != nil {
		sc.logger.Error("failed to cache summary in redis", zap.Error(err), zap.String("key", key))
		return err
	}
	return nil
}

// Invalidate moves the generation of the booking's id and display code and
// drops their entries. The generation outlives any entry written under the
// previous one.
func (sc *SummaryCache) Invalidate(ctx context.Context, b *models.Booking) {
	gen := uuid.NewString()
	for _, id := range []string{b.ID, b.BookingCode} {
		if id == "" {
			continue
		}
		if err := sc.redis.Set(ctx, sc.generationKey(id), gen, 2*sc.ttl); err != nil {
			sc.logger.Error("failed to move summary generation", zap.Error(err), zap.String("booking_id", id))
		}
		key := sc.cacheKey(id)
		sc.memCache.Delete(key)
		if err := sc.redis.Delete(ctx, key); err != nil {
			sc.logger.Error("failed to invalidate summary", zap.Error(err), zap.String("key", key))
		}
	}
}

func (sc *SummaryCache) BookingCreated(ctx context.Context, b *models.Booking) {
	sc.Invalidate(ctx, b)
}

func (sc *SummaryCache) PaymentRecorded(ctx context.Context, b *models.Booking, p *models.Payment, pendingAfter money.Money) {
	sc.Invalidate(ctx, b)
}

// Size is the number of summaries held in memory.
func (sc *SummaryCache) Size() int {
	return sc.memCache.Len()
}

func (sc *SummaryCache) cacheKey(bookingID string) string {
	return fmt.Sprintf("summary:%s", bookingID)
}

func (sc *SummaryCache) generationKey(bookingID string) string {
	return fmt.Sprintf("summary:gen:%s", bookingID)
}

func (mc *MemoryCache) Get(key, generation string) *models.Booking {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	entry, exists := mc.data[key]
	if !exists || entry.Generation != generation || time.Since(entry.CachedAt) > mc.maxAge {
		return nil
	}
	return copyBooking(entry.Booking)
}

func (mc *MemoryCache) Set(key, generation string, b *models.Booking) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.data[key] = &CacheEntry{Generation: generation, Booking: b, CachedAt: time.Now()}
}

func (mc *MemoryCache) Delete(key string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	delete(mc.data, key)
}

// Len is the number of entries held in memory, expired or not.
func (mc *MemoryCache) Len() int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return len(mc.data)
}

// cleanup periodically removes expired entries
func (mc *MemoryCache) cleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mc.mu.Lock()
			now := time.Now()
			for key, entry := range mc.data {
				if now.Sub(entry.CachedAt) > mc.maxAge {
					delete(mc.data, key)
				}
			}
			mc.mu.Unlock()
		}
	}
}

func copyBooking(b *models.Booking) *models.Booking {
	cp := *b
	return &cp
}
