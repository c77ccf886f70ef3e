package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/township-classifier/app/models"
)

// CacheStats summarizes classification-cache effectiveness.
type CacheStats struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// cacheCounters tracks hit and miss totals. Get runs from concurrent batch
// jobs, so the counters are atomic.
type cacheCounters struct {
	hits   atomic.Int64
	misses atomic.Int64
}

func (c *cacheCounters) hit()  { c.hits.Add(1) }
func (c *cacheCounters) miss() { c.misses.Add(1) }

func (c *cacheCounters) snapshot() (hits, misses int64, hitRate float64) {
	hits = c.hits.Load()
	misses = c.misses.Load()
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return hits, misses, hitRate
}

// ICacheService is the classification cache boundary. Keys are coordinate
// fingerprints ("lat,lng" rounded to 5 decimals); values are earlier model
// answers. The cache is a performance layer in front of the classification
// client, not a durable result store.
type ICacheService interface {
	// Get looks up a cached classification for a fingerprint.
	Get(ctx context.Context, key string) (*models.ClassificationEntry, bool, error)

	// Set stores a classification.
	Set(ctx context.Context, key string, entry *models.ClassificationEntry) error

	// Delete removes one fingerprint.
	Delete(ctx context.Context, key string) error

	// Clear removes everything.
	Clear(ctx context.Context) error

	// InvalidateByVocabularyVersion drops entries classified against an
	// older township vocabulary.
	InvalidateByVocabularyVersion(ctx context.Context, vocabularyVersion string) error

	// GetStats reports hit-rate statistics.
	GetStats(ctx context.Context) (*CacheStats, error)

	// Exists checks whether a fingerprint is cached.
	Exists(ctx context.Context, key string) (bool, error)

	// GetTTL returns the remaining TTL for a key where the backend has one.
	GetTTL(ctx context.Context, key string) (time.Duration, error)

	// Close releases backend connections if any.
	Close() error
}
