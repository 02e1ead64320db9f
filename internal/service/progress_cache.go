package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"finlearn/internal/cache"
	"finlearn/internal/domain"
	"finlearn/internal/logger"
	"finlearn/internal/util"

	"go.uber.org/zap"
)

// ErrProgressNotCached is returned by ProgressCache.Get on a miss.
var ErrProgressNotCached = errors.New("course progress not found in cache")

// initialGeneration is used until a user's progress is first invalidated.
const initialGeneration = "0"

// ProgressCache holds computed course progress per (user, course). Entries are
// keyed by a per-user generation: Get reports the generation it looked under
// and Put must be given that value, so a result computed before an
// invalidation lands on a key nobody reads any more.
type ProgressCache interface {
	Get(ctx context.Context, userID, courseID string) (*domain.CourseProgress, string, error)
	Put(ctx context.Context, userID, courseID, generation string, progress *domain.CourseProgress) error
	InvalidateUser(ctx context.Context, userID string) error
}

type progressCache struct {
	cache domain.Cache
	ttl   time.Duration
}

func NewProgressCache(c domain.Cache, ttl time.Duration) ProgressCache {
	if c == nil || ttl <= 0 {
		logger.Get().Warn("ProgressCache initialized without a cache backend. Service will be no-op.")
		return &noopProgressCache{}
	}
	return &progressCache{cache: c, ttl: ttl}
}

func (p *progressCache) generation(ctx context.Context, userID string) (string, error) {
	gen, err := p.cache.Get(ctx, cache.ProgressGenerationKey(userID))
	if errors.Is(err, domain.ErrCacheMiss) {
		return initialGeneration, nil
	}
	if err != nil {
		return "", domain.NewInternalError("failed to read progress generation", err)
	}
	return gen, nil
}

// Get returns ErrProgressNotCached together with a usable generation on a
// miss. Any other error leaves the generation empty and Put must be skipped.
func (p *progressCache) Get(ctx context.Context, userID, courseID string) (*domain.CourseProgress, string, error) {
	gen, err := p.generation(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	key := cache.CourseProgressKey(userID, courseID, gen)
	data, err := p.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, gen, ErrProgressNotCached
		}
		return nil, "", domain.NewInternalError("failed to read course progress from cache", err)
	}

	var progress domain.CourseProgress
	if err := json.Unmarshal([]byte(data), &progress); err != nil {
		logger.Get().Warn("Dropping undecodable progress cache entry", zap.String("key", key), zap.Error(err))
		_ = p.cache.Delete(ctx, key)
		return nil, gen, ErrProgressNotCached
	}
	return &progress, gen, nil
}

func (p *progressCache) Put(ctx context.Context, userID, courseID, generation string, progress *domain.CourseProgress) error {
	if progress == nil {
		return domain.NewInvalidInputError("cannot cache nil progress")
	}
	if generation == "" {
		return domain.NewInvalidInputError("cannot cache progress without a generation")
	}
	data, err := json.Marshal(progress)
	if err != nil {
		return domain.NewInternalError("failed to marshal course progress", err)
	}

	key := cache.CourseProgressKey(userID, courseID, generation)
	index := cache.CourseProgressIndexKey(userID)
	if err := p.cache.Set(ctx, key, string(data), p.ttl); err != nil {
		return domain.NewInternalError("failed to cache course progress", err)
	}
	if err := p.cache.HSet(ctx, index, courseID, key); err != nil {
		return domain.NewInternalError("failed to index course progress", err)
	}
	// The index outlives its entries by one TTL at most.
	if err := p.cache.Expire(ctx, index, p.ttl); err != nil {
		return domain.NewInternalError("failed to set progress index expiry", err)
	}
	return nil
}

// InvalidateUser rotates the generation first, so the old entries are
// unreachable even if deleting them fails.
func (p *progressCache) InvalidateUser(ctx context.Context, userID string) error {
	if err := p.cache.Set(ctx, cache.ProgressGenerationKey(userID), util.NewULID(), 0); err != nil {
		return domain.NewInternalError("failed to rotate progress generation", err)
	}

	index := cache.CourseProgressIndexKey(userID)
	entries, err := p.cache.HGetAll(ctx, index)
	if err != nil {
		return domain.NewInternalError("failed to read progress index", err)
	}
	keys := make([]string, 0, len(entries)+1)
	for _, key := range entries {
		keys = append(keys, key)
	}
	keys = append(keys, index)
	if err := p.cache.Delete(ctx, keys...); err != nil {
		return domain.NewInternalError("failed to invalidate course progress", err)
	}
	logger.Get().Debug("Invalidated course progress cache", zap.String("userID", userID), zap.Int("entries", len(entries)))
	return nil
}

type noopProgressCache struct{}

func (noopProgressCache) Get(ctx context.Context, userID, courseID string) (*domain.CourseProgress, string, error) {
	return nil, initialGeneration, ErrProgressNotCached
}

func (noopProgressCache) Put(ctx context.Context, userID, courseID, generation string, progress *domain.CourseProgress) error {
	return nil
}

func (noopProgressCache) InvalidateUser(ctx context.Context, userID string) error {
	return nil
}
