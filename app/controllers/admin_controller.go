package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/township-classifier/app/responses"
	"github.com/township-classifier/app/services"
	"go.uber.org/zap"
)

// AdminController handles cache maintenance and stats requests.
type AdminController struct {
	pipelineService *services.PipelineService
	cacheService    services.ICacheService
	logger          *zap.Logger
}

// NewAdminController builds the controller.
func NewAdminController(pipelineService *services.PipelineService, cacheService services.ICacheService, logger *zap.Logger) *AdminController {
	return &AdminController{
		pipelineService: pipelineService,
		cacheService:    cacheService,
		logger:          logger,
	}
}

// InvalidateCache drops cached classifications from older township
// vocabularies.
func (ac *AdminController) InvalidateCache(c *gin.Context) {
	vocabularyVersion := c.Query("vocabulary_version")
	if vocabularyVersion == "" {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:     "MISSING_VERSION",
			Message:   "vocabulary_version query parameter is required",
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	startTime := time.Now()

	if err := ac.cacheService.InvalidateByVocabularyVersion(c.Request.Context(), vocabularyVersion); err != nil {
		ac.logger.Error("Cache invalidation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:     "INVALIDATE_ERROR",
			Message:   "Cache invalidation failed: " + err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	processingTime := time.Since(startTime)
	ac.logger.Info("Cache invalidated",
		zap.String("vocabulary_version", vocabularyVersion),
		zap.Duration("duration", processingTime))

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success: true,
		Message: "Cache invalidated",
		Data: map[string]interface{}{
			"vocabulary_version": vocabularyVersion,
			"processing_time_ms": processingTime.Milliseconds(),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// ClearCache empties the classification cache entirely.
func (ac *AdminController) ClearCache(c *gin.Context) {
	if err := ac.cacheService.Clear(c.Request.Context()); err != nil {
		ac.logger.Error("Cache clear failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:     "CLEAR_ERROR",
			Message:   "Cache clear failed: " + err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "Cache cleared",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// GetCacheStats reports cache effectiveness.
func (ac *AdminController) GetCacheStats(c *gin.Context) {
	stats, err := ac.cacheService.GetStats(c.Request.Context())
	if err != nil {
		ac.logger.Error("Cache stats lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:     "STATS_ERROR",
			Message:   "Cache stats lookup failed: " + err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, responses.CacheStatsResponse{
		HitRate:    stats.HitRate,
		TotalHits:  stats.TotalHits,
		TotalMiss:  stats.TotalMiss,
		TotalItems: stats.TotalItems,
	})
}

// GetStats reports service uptime and job counters.
func (ac *AdminController) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "Service stats",
		Data:      ac.pipelineService.GetStats(),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
