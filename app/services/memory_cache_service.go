package services

import (
	"context"
	"sync"
	"time"

	"github.com/township-classifier/app/models"
	"go.uber.org/zap"
)

// MemoryCacheService is a process-local cache used when neither Redis nor
// MongoDB is configured, and in tests.
type MemoryCacheService struct {
	mu         sync.RWMutex
	entries    map[string]*models.ClassificationEntry
	timestamps map[string]time.Time
	ttl        time.Duration
	logger     *zap.Logger

	hits   int64
	misses int64
}

// NewMemoryCacheService builds an empty in-memory cache.
func NewMemoryCacheService(logger *zap.Logger) *MemoryCacheService {
	return &MemoryCacheService{
		entries:    make(map[string]*models.ClassificationEntry),
		timestamps: make(map[string]time.Time),
		ttl:        24 * time.Hour,
		logger:     logger,
	}
}

// Get looks up a classification entry.
func (mcs *MemoryCacheService) Get(ctx context.Context, key string) (*models.ClassificationEntry, bool, error) {
	mcs.mu.RLock()
	entry, ok := mcs.entries[key]
	storedAt, hasTime := mcs.timestamps[key]
	mcs.mu.RUnlock()

	if !ok {
		mcs.mu.Lock()
		mcs.misses++
		mcs.mu.Unlock()
		return nil, false, nil
	}

	if hasTime && time.Since(storedAt) > mcs.ttl {
		mcs.mu.Lock()
		delete(mcs.entries, key)
		delete(mcs.timestamps, key)
		mcs.misses++
		mcs.mu.Unlock()
		return nil, false, nil
	}

	mcs.mu.Lock()
	mcs.hits++
	mcs.mu.Unlock()
	return entry, true, nil
}

// Set stores a classification entry.
func (mcs *MemoryCacheService) Set(ctx context.Context, key string, entry *models.ClassificationEntry) error {
	mcs.mu.Lock()
	defer mcs.mu.Unlock()

	mcs.entries[key] = entry
	mcs.timestamps[key] = time.Now()
	return nil
}

// Delete removes a fingerprint.
func (mcs *MemoryCacheService) Delete(ctx context.Context, key string) error {
	mcs.mu.Lock()
	defer mcs.mu.Unlock()

	delete(mcs.entries, key)
	delete(mcs.timestamps, key)
	return nil
}

// Clear empties the cache.
func (mcs *MemoryCacheService) Clear(ctx context.Context) error {
	mcs.mu.Lock()
	defer mcs.mu.Unlock()

	mcs.entries = make(map[string]*models.ClassificationEntry)
	mcs.timestamps = make(map[string]time.Time)
	return nil
}

// InvalidateByVocabularyVersion drops entries classified against a
// different township vocabulary.
func (mcs *MemoryCacheService) InvalidateByVocabularyVersion(ctx context.Context, vocabularyVersion string) error {
	mcs.mu.Lock()
	defer mcs.mu.Unlock()

	removed := 0
	for key, entry := range mcs.entries {
		if entry.VocabularyVersion != vocabularyVersion {
			delete(mcs.entries, key)
			delete(mcs.timestamps, key)
			removed++
		}
	}

	mcs.logger.Info("Invalidated stale in-memory entries", zap.Int("removed", removed))
	return nil
}

// GetStats reports hit-rate statistics.
func (mcs *MemoryCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	mcs.mu.RLock()
	defer mcs.mu.RUnlock()

	total := mcs.hits + mcs.misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(mcs.hits) / float64(total)
	}

	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  mcs.hits,
		TotalMiss:  mcs.misses,
		TotalItems: int64(len(mcs.entries)),
	}, nil
}

// Exists checks presence of a fingerprint.
func (mcs *MemoryCacheService) Exists(ctx context.Context, key string) (bool, error) {
	mcs.mu.RLock()
	defer mcs.mu.RUnlock()

	_, ok := mcs.entries[key]
	return ok, nil
}

// GetTTL returns remaining lifetime for a key.
func (mcs *MemoryCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	mcs.mu.RLock()
	defer mcs.mu.RUnlock()

	storedAt, ok := mcs.timestamps[key]
	if !ok {
		return 0, nil
	}

	remaining := mcs.ttl - time.Since(storedAt)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Close is a no-op for the in-memory cache.
func (mcs *MemoryCacheService) Close() error {
	return nil
}
