package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/township-classifier/app/models"
	"github.com/township-classifier/internal/parser"
	"github.com/township-classifier/internal/pipeline"
	"github.com/township-classifier/internal/vocab"
	"go.uber.org/zap"
)

func newTestPipelineService(fake *fakeClassifier) *PipelineService {
	logger := zap.NewNop()
	orch := pipeline.NewOrchestrator(fake, vocab.NewMatcher(logger), 100, time.Millisecond, logger)
	return NewPipelineService(parser.NewCoordinateParser(logger), orch, logger)
}

func waitForJob(t *testing.T, ps *PipelineService, jobID string) *JobStatus {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		status, err := ps.GetJobStatus(jobID)
		require.NoError(t, err)
		if status.Status != JobStatusRunning {
			return status
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return nil
}

func TestConvertText(t *testing.T) {
	ps := newTestPipelineService(&fakeClassifier{handle: answerAll("彰化市")})

	records, err := ps.ConvertText("P1,203456.7,2660123.4\nP2,204000.0,2661000.0")

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].ID)
	assert.Equal(t, 203456.7, records[0].OriginalX)
	assert.Equal(t, models.StatusPending, records[0].Status)
	assert.InDelta(t, 24.04, records[0].Lat, 0.05)
	assert.InDelta(t, 120.54, records[0].Lng, 0.05)
}

func TestConvertText_NoCoordinates(t *testing.T) {
	ps := newTestPipelineService(&fakeClassifier{handle: answerAll("彰化市")})

	_, err := ps.ConvertText("no coordinates here")

	assert.ErrorIs(t, err, ErrNoCoordinates)
}

func TestStartBatchJob_CompletesAndClassifies(t *testing.T) {
	ps := newTestPipelineService(&fakeClassifier{handle: answerAll("彰化市")})

	total, err := ps.StartBatchJob("job-1", "P1,203456.7,2660123.4\nP2,204000.0,2661000.0")
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	status := waitForJob(t, ps, "job-1")
	assert.Equal(t, JobStatusDone, status.Status)
	assert.Equal(t, 2, status.Processed)
	assert.InDelta(t, 1.0, status.Progress, 1e-9)

	records, err := ps.GetJobRecords("job-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, models.StatusCompleted, rec.Status)
		assert.Equal(t, "彰化市", rec.Township)
	}
}

func TestStartBatchJob_EmptyInput(t *testing.T) {
	ps := newTestPipelineService(&fakeClassifier{handle: answerAll("彰化市")})

	_, err := ps.StartBatchJob("job-1", "header only\n")

	assert.ErrorIs(t, err, ErrNoCoordinates)

	_, err = ps.GetJobStatus("job-1")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestGetJobStatus_Unknown(t *testing.T) {
	ps := newTestPipelineService(&fakeClassifier{handle: answerAll("彰化市")})

	_, err := ps.GetJobStatus("nope")
	assert.ErrorIs(t, err, ErrJobNotFound)

	_, err = ps.GetJobRecords("nope")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestRunBatch(t *testing.T) {
	ps := newTestPipelineService(&fakeClassifier{handle: answerAll("鹿港鎮")})

	var lastProcessed int
	records, err := ps.RunBatch(context.Background(), "P1,203456.7,2660123.4", func(processed, total int) {
		lastProcessed = processed
		assert.Equal(t, 1, total)
	})

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, lastProcessed)
	assert.Equal(t, models.StatusCompleted, records[0].Status)
	assert.Equal(t, "鹿港鎮", records[0].Township)
}

func TestEstimateBatchProcessingTime(t *testing.T) {
	ps := newTestPipelineService(&fakeClassifier{handle: answerAll("彰化市")})

	assert.Equal(t, 0, ps.EstimateBatchProcessingTime(0))
	assert.Greater(t, ps.EstimateBatchProcessingTime(8), 0)
	assert.GreaterOrEqual(t,
		ps.EstimateBatchProcessingTime(100),
		ps.EstimateBatchProcessingTime(10))
}
