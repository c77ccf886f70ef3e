package controllers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/township-classifier/app/models"
	"github.com/township-classifier/app/requests"
	"github.com/township-classifier/app/responses"
	"github.com/township-classifier/app/services"
	"github.com/township-classifier/helpers/utils"
	"github.com/township-classifier/internal/export"
	"github.com/township-classifier/internal/projection"
	"go.uber.org/zap"
)

const maxUploadBytes = 10 << 20

// CoordinateController handles coordinate conversion and batch job requests.
type CoordinateController struct {
	pipelineService *services.PipelineService
	cacheService    services.ICacheService
	logger          *zap.Logger
}

// NewCoordinateController builds the controller.
func NewCoordinateController(pipelineService *services.PipelineService, cacheService services.ICacheService, logger *zap.Logger) *CoordinateController {
	return &CoordinateController{
		pipelineService: pipelineService,
		cacheService:    cacheService,
		logger:          logger,
	}
}

// Convert converts pasted coordinate text synchronously, without
// township classification.
func (cc *CoordinateController) Convert(c *gin.Context) {
	var req requests.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:     "INVALID_REQUEST",
			Message:   "Invalid request: " + err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	startTime := time.Now()

	records, err := cc.pipelineService.ConvertText(req.Text)
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:     "NO_COORDINATES",
			Message:   "No valid coordinate pairs found in the input text",
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, responses.ConvertResponse{
		Records:          records,
		Total:            len(records),
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
	})
}

// ConvertPair converts a single TWD97 pair.
func (cc *CoordinateController) ConvertPair(c *gin.Context) {
	var req requests.ConvertPairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:     "INVALID_REQUEST",
			Message:   "Invalid request: " + err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	lat, lng := projection.ToWGS84(*req.X, *req.Y)
	record := models.CoordinateRecord{
		ID:        1,
		OriginalX: *req.X,
		OriginalY: *req.Y,
		Lat:       lat,
		Lng:       lng,
		Status:    models.StatusCompleted,
	}

	c.JSON(http.StatusOK, responses.ConvertResponse{
		Records: []models.CoordinateRecord{record},
		Total:   1,
	})
}

// CreateJob starts a batch conversion and classification job. Coordinates
// come either as JSON text or as an uploaded .xlsx workbook.
func (cc *CoordinateController) CreateJob(c *gin.Context) {
	text, err := cc.readJobInput(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:     "INVALID_REQUEST",
			Message:   "Invalid request: " + err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	jobID := utils.GenerateUUID()

	total, err := cc.pipelineService.StartBatchJob(jobID, text)
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:     "NO_COORDINATES",
			Message:   "No valid coordinate pairs found in the input",
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	cc.logger.Info("Batch job created",
		zap.String("job_id", jobID),
		zap.Int("total_coordinates", total))

	c.JSON(http.StatusAccepted, responses.CreateJobResponse{
		JobID:            jobID,
		TotalCoordinates: total,
		EstimatedSeconds: cc.pipelineService.EstimateBatchProcessingTime(total),
		Message:          "Job created and processing",
	})
}

// readJobInput pulls the coordinate text out of either a multipart xlsx
// upload or a JSON body.
func (cc *CoordinateController) readJobInput(c *gin.Context) (string, error) {
	if fileHeader, err := c.FormFile("file"); err == nil {
		if fileHeader.Size > maxUploadBytes {
			return "", fmt.Errorf("uploaded file exceeds %d bytes", int64(maxUploadBytes))
		}

		f, err := fileHeader.Open()
		if err != nil {
			return "", err
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
		if err != nil {
			return "", err
		}

		return export.ReadExcelText(bytes.NewReader(data))
	}

	var req requests.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return "", err
	}
	if req.Text == "" {
		return "", fmt.Errorf("text is required when no file is uploaded")
	}
	return req.Text, nil
}

// GetJobStatus reports job progress.
func (cc *CoordinateController) GetJobStatus(c *gin.Context) {
	jobID := c.Param("jobID")

	status, err := cc.pipelineService.GetJobStatus(jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:     "JOB_NOT_FOUND",
			Message:   "Job not found: " + jobID,
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, responses.JobStatusResponse{
		JobID:              jobID,
		Status:             status.Status,
		Progress:           status.Progress,
		Processed:          status.Processed,
		Total:              status.Total,
		EstimatedRemaining: status.EstimatedRemaining,
		Message:            status.Message,
	})
}

// GetJobResults returns the current record snapshot of a job, including
// partially classified batches while the job is still running.
func (cc *CoordinateController) GetJobResults(c *gin.Context) {
	jobID := c.Param("jobID")

	status, err := cc.pipelineService.GetJobStatus(jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:     "JOB_NOT_FOUND",
			Message:   "Job not found: " + jobID,
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	records, err := cc.pipelineService.GetJobRecords(jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:     "JOB_NOT_FOUND",
			Message:   "Job not found: " + jobID,
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, responses.JobResultsResponse{
		JobID:   jobID,
		Status:  status.Status,
		Records: records,
		Total:   len(records),
	})
}

// ExportJob downloads job results as CSV or an Excel workbook.
func (cc *CoordinateController) ExportJob(c *gin.Context) {
	jobID := c.Param("jobID")

	records, err := cc.pipelineService.GetJobRecords(jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:     "JOB_NOT_FOUND",
			Message:   "Job not found: " + jobID,
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	format := c.DefaultQuery("format", "csv")
	timestamp := time.Now().Format("20060102_150405")

	switch format {
	case "xlsx":
		filename := fmt.Sprintf("townships_%s.xlsx", timestamp)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

		if err := export.WriteExcel(c.Writer, records); err != nil {
			cc.logger.Error("Excel export failed", zap.String("job_id", jobID), zap.Error(err))
		}
	case "csv":
		filename := fmt.Sprintf("townships_%s.csv", timestamp)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
		c.Header("Content-Type", "text/csv; charset=utf-8")

		if err := export.WriteCSV(c.Writer, records); err != nil {
			cc.logger.Error("CSV export failed", zap.String("job_id", jobID), zap.Error(err))
		}
	default:
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:     "INVALID_FORMAT",
			Message:   "Unsupported export format: " + format,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
}

// CancelJob stops a running batch job.
func (cc *CoordinateController) CancelJob(c *gin.Context) {
	jobID := c.Param("jobID")

	if err := cc.pipelineService.CancelJob(jobID); err != nil {
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:     "JOB_NOT_FOUND",
			Message:   "Job not found: " + jobID,
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "Job cancellation requested",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// ListTownships returns the closed classification vocabulary.
func (cc *CoordinateController) ListTownships(c *gin.Context) {
	townships := models.Townships()

	c.JSON(http.StatusOK, responses.TownshipListResponse{
		Townships:         townships,
		Total:             len(townships),
		VocabularyVersion: models.VocabularyVersion,
	})
}

// HealthCheck reports service health.
func (cc *CoordinateController) HealthCheck(c *gin.Context) {
	uptime := time.Since(cc.pipelineService.GetStartTime())

	c.JSON(http.StatusOK, responses.HealthCheckResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    uptime.String(),
		Version:   "1.0.0",
		Services: map[string]string{
			"pipeline": "healthy",
			"cache":    "healthy",
		},
	})
}
