package services

import (
	"context"

	"github.com/township-classifier/app/models"
	"github.com/township-classifier/internal/classifier"
	"go.uber.org/zap"
)

// CachedClassifier wraps a classifier with the classification cache. Points
// whose rounded coordinates were classified before are answered locally;
// only the misses are sent upstream.
type CachedClassifier struct {
	inner  classifier.Classifier
	cache  ICacheService
	logger *zap.Logger
}

// NewCachedClassifier builds the caching decorator.
func NewCachedClassifier(inner classifier.Classifier, cache ICacheService, logger *zap.Logger) *CachedClassifier {
	return &CachedClassifier{
		inner:  inner,
		cache:  cache,
		logger: logger,
	}
}

// Classify answers cached points immediately and delegates the rest.
func (cc *CachedClassifier) Classify(ctx context.Context, points []classifier.Point) ([]classifier.Result, error) {
	results := make([]classifier.Result, 0, len(points))
	misses := make([]classifier.Point, 0, len(points))

	for _, p := range points {
		key := fingerprint(p.Lat, p.Lng)
		entry, found, err := cc.cache.Get(ctx, key)
		if err != nil {
			cc.logger.Warn("Cache lookup failed, classifying upstream", zap.Error(err), zap.Int("id", p.ID))
			misses = append(misses, p)
			continue
		}
		if found && entry.Township != models.TownshipFailed {
			results = append(results, classifier.Result{ID: p.ID, Township: entry.Township})
			continue
		}
		misses = append(misses, p)
	}

	if len(misses) == 0 {
		cc.logger.Debug("Batch fully served from cache", zap.Int("points", len(points)))
		return results, nil
	}

	upstream, err := cc.inner.Classify(ctx, misses)
	if err != nil {
		return nil, err
	}

	byID := make(map[int]classifier.Point, len(misses))
	for _, p := range misses {
		byID[p.ID] = p
	}

	for _, r := range upstream {
		p, ok := byID[r.ID]
		if !ok {
			continue
		}
		if models.IsValidTownship(r.Township) {
			cc.storeResult(ctx, p, r.Township)
		}
	}

	return append(results, upstream...), nil
}

func (cc *CachedClassifier) storeResult(ctx context.Context, p classifier.Point, township string) {
	rec := &models.CoordinateRecord{ID: p.ID, Lat: p.Lat, Lng: p.Lng, Township: township}
	entry := models.NewClassificationEntry(rec, models.SourceGemini)

	if err := cc.cache.Set(ctx, entry.Fingerprint, entry); err != nil {
		cc.logger.Warn("Failed to store classification in cache", zap.Error(err), zap.String("fingerprint", entry.Fingerprint))
	}
}

func fingerprint(lat, lng float64) string {
	rec := models.CoordinateRecord{Lat: lat, Lng: lng}
	return rec.Fingerprint()
}
