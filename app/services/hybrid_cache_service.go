package services

import (
	"context"
	"time"

	"github.com/township-classifier/app/models"
	"go.uber.org/zap"
)

// HybridCacheService layers Redis (fast, volatile) over MongoDB (durable).
// Reads fall through Redis to MongoDB; MongoDB hits are copied back to
// Redis in the background so the next lookup stays in L1.
type HybridCacheService struct {
	redis  *RedisCacheService
	mongo  *MongoCacheService
	logger *zap.Logger
}

// NewHybridCacheService builds the two-level cache.
func NewHybridCacheService(redis *RedisCacheService, mongo *MongoCacheService, logger *zap.Logger) *HybridCacheService {
	return &HybridCacheService{
		redis:  redis,
		mongo:  mongo,
		logger: logger,
	}
}

// Get checks Redis first, then MongoDB.
func (hcs *HybridCacheService) Get(ctx context.Context, key string) (*models.ClassificationEntry, bool, error) {
	entry, found, err := hcs.redis.Get(ctx, key)
	if err == nil && found {
		return entry, true, nil
	}
	if err != nil {
		hcs.logger.Warn("Redis lookup failed, falling back to MongoDB", zap.Error(err))
	}

	entry, found, err = hcs.mongo.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}

	go hcs.syncToRedis(key, entry)

	return entry, true, nil
}

// Set writes to both levels in parallel; a failure in either is an error.
func (hcs *HybridCacheService) Set(ctx context.Context, key string, entry *models.ClassificationEntry) error {
	errCh := make(chan error, 2)

	go func() {
		errCh <- hcs.redis.Set(ctx, key, entry)
	}()
	go func() {
		errCh <- hcs.mongo.Set(ctx, key, entry)
	}()

	var firstErr error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Delete removes the fingerprint from both levels.
func (hcs *HybridCacheService) Delete(ctx context.Context, key string) error {
	redisErr := hcs.redis.Delete(ctx, key)
	mongoErr := hcs.mongo.Delete(ctx, key)

	if mongoErr != nil {
		return mongoErr
	}
	return redisErr
}

// Clear empties both levels.
func (hcs *HybridCacheService) Clear(ctx context.Context) error {
	redisErr := hcs.redis.Clear(ctx)
	mongoErr := hcs.mongo.Clear(ctx)

	if mongoErr != nil {
		return mongoErr
	}
	return redisErr
}

// InvalidateByVocabularyVersion drops entries from an older township
// vocabulary in both levels.
func (hcs *HybridCacheService) InvalidateByVocabularyVersion(ctx context.Context, vocabularyVersion string) error {
	if err := hcs.redis.InvalidateByVocabularyVersion(ctx, vocabularyVersion); err != nil {
		hcs.logger.Warn("Redis invalidation failed", zap.Error(err))
	}
	return hcs.mongo.InvalidateByVocabularyVersion(ctx, vocabularyVersion)
}

// GetStats merges the per-level counters. Total items come from MongoDB,
// the durable source of truth.
func (hcs *HybridCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	redisStats, redisErr := hcs.redis.GetStats(ctx)
	mongoStats, mongoErr := hcs.mongo.GetStats(ctx)
	if mongoErr != nil {
		return nil, mongoErr
	}
	if redisErr != nil {
		return mongoStats, nil
	}

	totalHits := redisStats.TotalHits + mongoStats.TotalHits
	totalMiss := mongoStats.TotalMiss
	hitRate := float64(0)
	if totalHits+totalMiss > 0 {
		hitRate = float64(totalHits) / float64(totalHits+totalMiss)
	}

	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  totalHits,
		TotalMiss:  totalMiss,
		TotalItems: mongoStats.TotalItems,
	}, nil
}

// Exists checks both levels.
func (hcs *HybridCacheService) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := hcs.redis.Exists(ctx, key)
	if err == nil && exists {
		return true, nil
	}
	return hcs.mongo.Exists(ctx, key)
}

// GetTTL reports the Redis TTL when present, otherwise the MongoDB lifetime.
func (hcs *HybridCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := hcs.redis.GetTTL(ctx, key)
	if err == nil && ttl > 0 {
		return ttl, nil
	}
	return hcs.mongo.GetTTL(ctx, key)
}

// Close closes both backends.
func (hcs *HybridCacheService) Close() error {
	redisErr := hcs.redis.Close()
	mongoErr := hcs.mongo.Close()

	if mongoErr != nil {
		return mongoErr
	}
	return redisErr
}

// WarmUp preloads MongoDB's hottest classifications into its L1.
func (hcs *HybridCacheService) WarmUp(ctx context.Context, limit int) error {
	return hcs.mongo.WarmUp(ctx, limit)
}

func (hcs *HybridCacheService) syncToRedis(key string, entry *models.ClassificationEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := hcs.redis.Set(ctx, key, entry); err != nil {
		hcs.logger.Debug("Failed to sync entry to Redis", zap.Error(err), zap.String("fingerprint", key))
	}
}
