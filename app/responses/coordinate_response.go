package responses

import (
	"github.com/township-classifier/app/models"
)

// ConvertResponse is the synchronous conversion result.
type ConvertResponse struct {
	Records          []models.CoordinateRecord `json:"records"`            // converted coordinates
	Total            int                       `json:"total"`              // number of pairs parsed
	ProcessingTimeMs int64                     `json:"processing_time_ms"` // server-side time
}

// CreateJobResponse acknowledges a new batch job.
type CreateJobResponse struct {
	JobID            string `json:"job_id"`            // poll this ID for status
	TotalCoordinates int    `json:"total_coordinates"` // pairs accepted into the job
	EstimatedSeconds int    `json:"estimated_seconds"` // rough completion estimate
	Message          string `json:"message"`
}

// JobStatusResponse is the polled job state.
type JobStatusResponse struct {
	JobID              string  `json:"job_id"`
	Status             string  `json:"status"`              // running|done|failed
	Progress           float64 `json:"progress"`            // 0.0 - 1.0
	Processed          int     `json:"processed"`           // records attempted so far
	Total              int     `json:"total"`               // records in the job
	EstimatedRemaining int     `json:"estimated_remaining"` // seconds
	Message            string  `json:"message"`
}

// JobResultsResponse returns the current record snapshot of a job.
type JobResultsResponse struct {
	JobID   string                    `json:"job_id"`
	Status  string                    `json:"status"`
	Records []models.CoordinateRecord `json:"records"`
	Total   int                       `json:"total"`
}

// TownshipListResponse lists the closed classification vocabulary.
type TownshipListResponse struct {
	Townships         []string `json:"townships"`
	Total             int      `json:"total"`
	VocabularyVersion string   `json:"vocabulary_version"`
}

// CacheStatsResponse reports classification cache effectiveness.
type CacheStatsResponse struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error     string      `json:"error"`             // machine-readable code
	Message   string      `json:"message"`           // human-readable message
	Details   interface{} `json:"details,omitempty"` // optional context
	Timestamp string      `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// SuccessResponse is the uniform success envelope for admin actions.
type SuccessResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// HealthCheckResponse is the health probe payload.
type HealthCheckResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}
