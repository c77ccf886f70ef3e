package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/township-classifier/app/models"
	"go.uber.org/zap"
)

func testEntry(fingerprint, township string) *models.ClassificationEntry {
	rec := &models.CoordinateRecord{Lat: 23.95871, Lng: 120.57462, Township: township}
	entry := models.NewClassificationEntry(rec, models.SourceGemini)
	entry.Fingerprint = fingerprint
	return entry
}

func TestMemoryCache_SetGet(t *testing.T) {
	cache := NewMemoryCacheService(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "23.95871,120.57462", testEntry("23.95871,120.57462", "員林市")))

	entry, found, err := cache.Get(ctx, "23.95871,120.57462")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "員林市", entry.Township)

	_, found, err = cache.Get(ctx, "0.00000,0.00000")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCacheService(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", testEntry("k", "鹿港鎮")))
	require.NoError(t, cache.Delete(ctx, "k"))

	_, found, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCache_InvalidateByVocabularyVersion(t *testing.T) {
	cache := NewMemoryCacheService(zap.NewNop())
	ctx := context.Background()

	current := testEntry("a", "員林市")
	stale := testEntry("b", "員林鎮")
	stale.VocabularyVersion = "changhua-2014"

	require.NoError(t, cache.Set(ctx, "a", current))
	require.NoError(t, cache.Set(ctx, "b", stale))

	require.NoError(t, cache.InvalidateByVocabularyVersion(ctx, models.VocabularyVersion))

	_, found, _ := cache.Get(ctx, "a")
	assert.True(t, found)
	_, found, _ = cache.Get(ctx, "b")
	assert.False(t, found)
}

func TestMemoryCache_Stats(t *testing.T) {
	cache := NewMemoryCacheService(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", testEntry("k", "花壇鄉")))

	cache.Get(ctx, "k")
	cache.Get(ctx, "missing")

	stats, err := cache.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalHits)
	assert.Equal(t, int64(1), stats.TotalMiss)
	assert.Equal(t, int64(1), stats.TotalItems)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
}

func TestMemoryCache_Clear(t *testing.T) {
	cache := NewMemoryCacheService(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", testEntry("k", "芬園鄉")))
	require.NoError(t, cache.Clear(ctx))

	exists, err := cache.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}
