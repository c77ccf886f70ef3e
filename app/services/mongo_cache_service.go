package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/township-classifier/app/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoCacheService is the durable L2 classification cache with an
// in-process LRU front.
type MongoCacheService struct {
	client     *mongo.Client
	collection *mongo.Collection
	l1Cache    *lru.Cache[string, *models.ClassificationEntry]
	logger     *zap.Logger
	ttlHours   int

	// Stats
	counters cacheCounters
	l1Hits   atomic.Int64
}

// NewMongoCacheService connects to MongoDB and prepares the cache collection.
func NewMongoCacheService(mongoURI, dbName string, logger *zap.Logger) (*MongoCacheService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	collection := client.Database(dbName).Collection("classification_cache")

	l1Cache, err := lru.New[string, *models.ClassificationEntry](1000)
	if err != nil {
		return nil, fmt.Errorf("create L1 cache: %w", err)
	}

	mcs := &MongoCacheService{
		client:     client,
		collection: collection,
		l1Cache:    l1Cache,
		logger:     logger,
		ttlHours:   24 * 30,
	}

	if err := mcs.createIndexes(ctx); err != nil {
		logger.Warn("Failed to create cache indexes", zap.Error(err))
	}

	return mcs, nil
}

func (mcs *MongoCacheService) createIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "fingerprint", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "vocabulary_version", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "last_accessed", Value: -1}},
		},
	}

	_, err := mcs.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// Get looks up a classification by fingerprint, L1 first then MongoDB.
func (mcs *MongoCacheService) Get(ctx context.Context, key string) (*models.ClassificationEntry, bool, error) {
	if entry, ok := mcs.l1Cache.Get(key); ok {
		mcs.l1Hits.Add(1)
		mcs.counters.hit()
		return entry, true, nil
	}

	var entry models.ClassificationEntry
	err := mcs.collection.FindOne(ctx, bson.M{"fingerprint": key}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		mcs.counters.miss()
		return nil, false, nil
	}
	if err != nil {
		mcs.logger.Error("Mongo cache lookup failed", zap.Error(err), zap.String("fingerprint", key))
		return nil, false, err
	}

	if entry.IsExpired(mcs.ttlHours) {
		mcs.counters.miss()
		go mcs.deleteAsync(key)
		return nil, false, nil
	}

	mcs.counters.hit()
	mcs.l1Cache.Add(key, &entry)
	go mcs.updateAccessStats(key)

	return &entry, true, nil
}

// Set stores a classification entry, replacing any entry for the same
// fingerprint.
func (mcs *MongoCacheService) Set(ctx context.Context, key string, entry *models.ClassificationEntry) error {
	entry.Fingerprint = key

	opts := options.Replace().SetUpsert(true)
	_, err := mcs.collection.ReplaceOne(ctx, bson.M{"fingerprint": key}, entry, opts)
	if err != nil {
		mcs.logger.Error("Mongo cache store failed", zap.Error(err), zap.String("fingerprint", key))
		return err
	}

	mcs.l1Cache.Add(key, entry)
	mcs.logger.Debug("Stored in Mongo cache", zap.String("fingerprint", key), zap.String("township", entry.Township))
	return nil
}

// Delete removes one fingerprint from both levels.
func (mcs *MongoCacheService) Delete(ctx context.Context, key string) error {
	mcs.l1Cache.Remove(key)

	_, err := mcs.collection.DeleteOne(ctx, bson.M{"fingerprint": key})
	return err
}

// Clear drops every cached classification.
func (mcs *MongoCacheService) Clear(ctx context.Context) error {
	mcs.l1Cache.Purge()

	result, err := mcs.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return err
	}

	mcs.logger.Info("Cleared Mongo cache", zap.Int64("deleted", result.DeletedCount))
	return nil
}

// InvalidateByVocabularyVersion removes entries classified against a
// different township vocabulary than the one given.
func (mcs *MongoCacheService) InvalidateByVocabularyVersion(ctx context.Context, vocabularyVersion string) error {
	mcs.l1Cache.Purge()

	filter := bson.M{"vocabulary_version": bson.M{"$ne": vocabularyVersion}}
	result, err := mcs.collection.DeleteMany(ctx, filter)
	if err != nil {
		return err
	}

	mcs.logger.Info("Invalidated stale cache entries",
		zap.String("current_version", vocabularyVersion),
		zap.Int64("deleted", result.DeletedCount))
	return nil
}

// GetStats reports hit-rate statistics including the document count.
func (mcs *MongoCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	hits, misses, hitRate := mcs.counters.snapshot()

	count, err := mcs.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		count = 0
	}

	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: count,
	}, nil
}

// Exists checks presence of a fingerprint.
func (mcs *MongoCacheService) Exists(ctx context.Context, key string) (bool, error) {
	if mcs.l1Cache.Contains(key) {
		return true, nil
	}

	count, err := mcs.collection.CountDocuments(ctx, bson.M{"fingerprint": key})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetTTL returns remaining lifetime based on created_at and the cache TTL.
func (mcs *MongoCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	var entry models.ClassificationEntry
	err := mcs.collection.FindOne(ctx, bson.M{"fingerprint": key}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	expiry := entry.CreatedAt.Add(time.Duration(mcs.ttlHours) * time.Hour)
	remaining := time.Until(expiry)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Close disconnects from MongoDB.
func (mcs *MongoCacheService) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return mcs.client.Disconnect(ctx)
}

// WarmUp preloads the most frequently used classifications into the L1.
func (mcs *MongoCacheService) WarmUp(ctx context.Context, limit int) error {
	opts := options.Find().
		SetSort(bson.D{{Key: "access_count", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := mcs.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("warm up query: %w", err)
	}
	defer cursor.Close(ctx)

	loaded := 0
	for cursor.Next(ctx) {
		var entry models.ClassificationEntry
		if err := cursor.Decode(&entry); err != nil {
			continue
		}
		mcs.l1Cache.Add(entry.Fingerprint, &entry)
		loaded++
	}

	mcs.logger.Info("Warmed up L1 cache", zap.Int("loaded", loaded))
	return cursor.Err()
}

// GetL1Stats reports the in-process LRU size and hit count.
func (mcs *MongoCacheService) GetL1Stats() (int, int64) {
	return mcs.l1Cache.Len(), mcs.l1Hits.Load()
}

func (mcs *MongoCacheService) updateAccessStats(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{"last_accessed": time.Now()},
		"$inc": bson.M{"access_count": 1},
	}

	if _, err := mcs.collection.UpdateOne(ctx, bson.M{"fingerprint": key}, update); err != nil {
		mcs.logger.Debug("Failed to update access stats", zap.Error(err))
	}
}

func (mcs *MongoCacheService) deleteAsync(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := mcs.collection.DeleteOne(ctx, bson.M{"fingerprint": key}); err != nil {
		mcs.logger.Debug("Failed to delete expired entry", zap.Error(err))
	}
}

// SetTTLHours overrides the entry lifetime.
func (mcs *MongoCacheService) SetTTLHours(hours int) {
	mcs.ttlHours = hours
}
