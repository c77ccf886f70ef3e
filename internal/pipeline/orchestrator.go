// Package pipeline drives the full record set through the classification
// client in fixed-size chunks. Chunks are strictly serialized to respect the
// upstream service's rate limits; a chunk failure is isolated to its own
// records and never aborts the run.
package pipeline

import (
	"context"
	"time"

	"github.com/township-classifier/app/models"
	"github.com/township-classifier/internal/classifier"
	"github.com/township-classifier/internal/vocab"
	"go.uber.org/zap"
)

// Defaults for the chunking policy.
const (
	DefaultChunkSize      = 4
	DefaultInterChunkWait = 1500 * time.Millisecond
)

// ProgressFunc receives the cumulative processed count and a snapshot copy
// of all records. Invoked before and after every chunk; processedCount is
// monotonically non-decreasing across a run.
type ProgressFunc func(processedCount int, snapshot []models.CoordinateRecord)

// Orchestrator runs classification passes over record batches.
type Orchestrator struct {
	classifier classifier.Classifier
	matcher    *vocab.Matcher
	chunkSize  int
	wait       time.Duration
	logger     *zap.Logger
}

// NewOrchestrator creates an Orchestrator. Non-positive chunkSize or wait
// fall back to the defaults.
func NewOrchestrator(c classifier.Classifier, matcher *vocab.Matcher, chunkSize int, wait time.Duration, logger *zap.Logger) *Orchestrator {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if wait <= 0 {
		wait = DefaultInterChunkWait
	}
	return &Orchestrator{
		classifier: c,
		matcher:    matcher,
		chunkSize:  chunkSize,
		wait:       wait,
		logger:     logger,
	}
}

// Process mutates records in place, classifying each exactly once. Every
// chunk is attempted exactly once; there is no retry within a run. Returns
// ctx.Err when cancelled between chunks, leaving untouched records pending;
// no other error escapes a full invocation.
func (o *Orchestrator) Process(ctx context.Context, records []*models.CoordinateRecord, onProgress ProgressFunc) error {
	processed := 0

	for start := 0; start < len(records); start += o.chunkSize {
		end := start + o.chunkSize
		if end > len(records) {
			end = len(records)
		}
		chunk := records[start:end]

		for _, rec := range chunk {
			rec.Status = models.StatusProcessing
		}
		o.notify(onProgress, processed, records)

		// Fixed delay before every chunk after the first; a deliberately
		// simple rate-limiting policy for the upstream service.
		if start > 0 {
			if err := o.sleep(ctx); err != nil {
				o.revertPending(records[start:])
				return err
			}
		}

		results, err := o.classifier.Classify(ctx, toPoints(chunk))
		if err != nil {
			// Blast radius is one chunk: mark it failed, keep going.
			o.logger.Warn("Classification call failed",
				zap.Int("chunk_start", chunk[0].ID),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err))
			for _, rec := range chunk {
				rec.Status = models.StatusError
				rec.Township = models.TownshipFailed
			}
		} else {
			o.apply(chunk, results)
		}

		processed += len(chunk)
		o.notify(onProgress, processed, records)

		if ctx.Err() != nil {
			o.revertPending(records[end:])
			return ctx.Err()
		}
	}

	return nil
}

// apply matches results to records strictly by id and validates each
// township through the vocabulary matcher. A missing id or an unresolvable
// township is an error for that record alone.
func (o *Orchestrator) apply(chunk []*models.CoordinateRecord, results []classifier.Result) {
	byID := make(map[int]string, len(results))
	for _, r := range results {
		byID[r.ID] = r.Township
	}

	for _, rec := range chunk {
		raw, found := byID[rec.ID]
		if !found {
			rec.Status = models.StatusError
			rec.Township = models.TownshipFailed
			continue
		}
		canonical, ok := o.matcher.Resolve(raw)
		if !ok {
			o.logger.Debug("Rejected township outside vocabulary",
				zap.Int("id", rec.ID),
				zap.String("raw", raw))
			rec.Status = models.StatusError
			rec.Township = models.TownshipFailed
			continue
		}
		rec.Status = models.StatusCompleted
		rec.Township = canonical
	}
}

// notify hands the callback a copy of the records so later chunk mutations
// cannot alias into an observer's snapshot.
func (o *Orchestrator) notify(onProgress ProgressFunc, processed int, records []*models.CoordinateRecord) {
	if onProgress == nil {
		return
	}
	snapshot := make([]models.CoordinateRecord, len(records))
	for i, rec := range records {
		snapshot[i] = *rec
	}
	onProgress(processed, snapshot)
}

// sleep waits the inter-chunk delay, cancellable through ctx.
func (o *Orchestrator) sleep(ctx context.Context) error {
	t := time.NewTimer(o.wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// revertPending returns not-yet-attempted records from processing back to
// pending when a run stops early.
func (o *Orchestrator) revertPending(rest []*models.CoordinateRecord) {
	for _, rec := range rest {
		if rec.Status == models.StatusProcessing {
			rec.Status = models.StatusPending
		}
	}
}

func toPoints(chunk []*models.CoordinateRecord) []classifier.Point {
	points := make([]classifier.Point, len(chunk))
	for i, rec := range chunk {
		points[i] = classifier.Point{ID: rec.ID, Lat: rec.Lat, Lng: rec.Lng}
	}
	return points
}
