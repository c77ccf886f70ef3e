package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/township-classifier/app/models"
	"github.com/township-classifier/internal/parser"
	"github.com/township-classifier/internal/pipeline"
	"github.com/township-classifier/internal/projection"
	"go.uber.org/zap"
)

var (
	ErrJobNotFound   = errors.New("job not found")
	ErrNoCoordinates = errors.New("no coordinate pairs found in input")
)

// Job lifecycle states exposed by the status endpoint.
const (
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

// PipelineService owns batch conversion jobs: parse the uploaded text,
// project every pair to WGS84, then run the chunked classification
// pipeline in the background while callers poll for progress.
type PipelineService struct {
	parser       *parser.CoordinateParser
	orchestrator *pipeline.Orchestrator
	logger       *zap.Logger
	startTime    time.Time
	mu           sync.RWMutex

	// Job management
	jobs       map[string]*JobStatus
	jobRecords map[string][]models.CoordinateRecord
	jobCancels map[string]context.CancelFunc
}

// JobStatus is the polled view of one batch job.
type JobStatus struct {
	JobID              string
	Status             string
	Progress           float64
	Processed          int
	Total              int
	EstimatedRemaining int
	Message            string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewPipelineService builds the job manager.
func NewPipelineService(p *parser.CoordinateParser, orch *pipeline.Orchestrator, logger *zap.Logger) *PipelineService {
	return &PipelineService{
		parser:       p,
		orchestrator: orch,
		logger:       logger,
		startTime:    time.Now(),
		jobs:         make(map[string]*JobStatus),
		jobRecords:   make(map[string][]models.CoordinateRecord),
		jobCancels:   make(map[string]context.CancelFunc),
	}
}

// ConvertText parses free-form text and converts every pair to WGS84
// without classification. Used by the synchronous convert endpoint.
func (ps *PipelineService) ConvertText(text string) ([]models.CoordinateRecord, error) {
	pairs := ps.parser.Parse(text)
	if len(pairs) == 0 {
		return nil, ErrNoCoordinates
	}

	records := buildRecords(pairs)
	out := make([]models.CoordinateRecord, len(records))
	for i, rec := range records {
		out[i] = *rec
	}
	return out, nil
}

// StartBatchJob parses the text, registers the job, and kicks off the
// classification pipeline in the background. Returns the record count.
func (ps *PipelineService) StartBatchJob(jobID, text string) (int, error) {
	pairs := ps.parser.Parse(text)
	if len(pairs) == 0 {
		return 0, ErrNoCoordinates
	}
	records := buildRecords(pairs)

	ctx, cancel := context.WithCancel(context.Background())

	ps.mu.Lock()
	ps.jobs[jobID] = &JobStatus{
		JobID:              jobID,
		Status:             JobStatusRunning,
		Progress:           0.0,
		Processed:          0,
		Total:              len(records),
		EstimatedRemaining: ps.EstimateBatchProcessingTime(len(records)),
		Message:            "processing",
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
	ps.jobRecords[jobID] = snapshotRecords(records)
	ps.jobCancels[jobID] = cancel
	ps.mu.Unlock()

	go ps.runJob(ctx, jobID, records)

	return len(records), nil
}

func (ps *PipelineService) runJob(ctx context.Context, jobID string, records []*models.CoordinateRecord) {
	total := len(records)

	onProgress := func(processed int, snapshot []models.CoordinateRecord) {
		ps.mu.Lock()
		defer ps.mu.Unlock()

		ps.jobRecords[jobID] = snapshot
		if job, exists := ps.jobs[jobID]; exists {
			job.Processed = processed
			job.Progress = float64(processed) / float64(total)
			job.EstimatedRemaining = ps.EstimateBatchProcessingTime(total - processed)
			job.UpdatedAt = time.Now()
		}
	}

	err := ps.orchestrator.Process(ctx, records, onProgress)

	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.jobRecords[jobID] = snapshotRecords(records)
	delete(ps.jobCancels, jobID)

	job, exists := ps.jobs[jobID]
	if !exists {
		return
	}
	job.UpdatedAt = time.Now()
	job.EstimatedRemaining = 0

	if err != nil {
		job.Status = JobStatusFailed
		job.Message = err.Error()
		ps.logger.Warn("Batch job stopped", zap.String("job_id", jobID), zap.Error(err))
		return
	}

	job.Status = JobStatusDone
	job.Progress = 1.0
	job.Processed = total
	job.Message = "completed"
	ps.logger.Info("Batch job completed", zap.String("job_id", jobID), zap.Int("total", total))
}

// RunBatch parses, converts, and classifies synchronously. Used by the
// one-shot CLI; the converted records are returned even when
// classification stops early.
func (ps *PipelineService) RunBatch(ctx context.Context, text string, onProgress func(processed, total int)) ([]models.CoordinateRecord, error) {
	pairs := ps.parser.Parse(text)
	if len(pairs) == 0 {
		return nil, ErrNoCoordinates
	}
	records := buildRecords(pairs)
	total := len(records)

	var progress pipeline.ProgressFunc
	if onProgress != nil {
		progress = func(processed int, _ []models.CoordinateRecord) {
			onProgress(processed, total)
		}
	}

	err := ps.orchestrator.Process(ctx, records, progress)
	return snapshotRecords(records), err
}

// CancelJob stops a running job. Records not yet dispatched stay pending.
func (ps *PipelineService) CancelJob(jobID string) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.jobs[jobID]; !exists {
		return ErrJobNotFound
	}

	cancel, running := ps.jobCancels[jobID]
	if !running {
		return nil
	}
	cancel()
	return nil
}

// GetJobStatus returns a copy of the job status.
func (ps *PipelineService) GetJobStatus(jobID string) (*JobStatus, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	job, exists := ps.jobs[jobID]
	if !exists {
		return nil, ErrJobNotFound
	}

	copied := *job
	return &copied, nil
}

// GetJobRecords returns the latest snapshot of the job's records.
func (ps *PipelineService) GetJobRecords(jobID string) ([]models.CoordinateRecord, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	records, exists := ps.jobRecords[jobID]
	if !exists {
		return nil, ErrJobNotFound
	}

	out := make([]models.CoordinateRecord, len(records))
	copy(out, records)
	return out, nil
}

// EstimateBatchProcessingTime estimates wall-clock seconds for a batch,
// based on the chunk size and inter-chunk wait of the pipeline.
func (ps *PipelineService) EstimateBatchProcessingTime(recordCount int) int {
	if recordCount <= 0 {
		return 0
	}
	chunks := (recordCount + pipeline.DefaultChunkSize - 1) / pipeline.DefaultChunkSize
	perChunkMs := int(pipeline.DefaultInterChunkWait/time.Millisecond) + 2000
	return chunks * perChunkMs / 1000
}

// GetStartTime returns when the service booted.
func (ps *PipelineService) GetStartTime() time.Time {
	return ps.startTime
}

// GetStats returns service uptime and job counters.
func (ps *PipelineService) GetStats() map[string]interface{} {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	running := 0
	for _, job := range ps.jobs {
		if job.Status == JobStatusRunning {
			running++
		}
	}

	uptime := time.Since(ps.startTime)

	return map[string]interface{}{
		"uptime_seconds": int64(uptime.Seconds()),
		"start_time":     ps.startTime.Format(time.RFC3339),
		"total_jobs":     len(ps.jobs),
		"running_jobs":   running,
		"status":         "running",
	}
}

func buildRecords(pairs []models.RawCoordinatePair) []*models.CoordinateRecord {
	records := make([]*models.CoordinateRecord, len(pairs))
	for i, pair := range pairs {
		lat, lng := projection.ToWGS84(pair.X, pair.Y)
		records[i] = &models.CoordinateRecord{
			ID:        i + 1,
			OriginalX: pair.X,
			OriginalY: pair.Y,
			Lat:       lat,
			Lng:       lng,
			Status:    models.StatusPending,
		}
	}
	return records
}

func snapshotRecords(records []*models.CoordinateRecord) []models.CoordinateRecord {
	out := make([]models.CoordinateRecord, len(records))
	for i, rec := range records {
		out[i] = *rec
	}
	return out
}
