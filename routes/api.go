package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/township-classifier/app/controllers"
)

// SetupAPIRoutes registers the versioned API surface.
func SetupAPIRoutes(router *gin.Engine, coordinateController *controllers.CoordinateController, adminController *controllers.AdminController) {
	v1 := router.Group("/v1")
	{
		coordinates := v1.Group("/coordinates")
		{
			coordinates.POST("/convert", coordinateController.Convert)
			coordinates.POST("/convert/pair", coordinateController.ConvertPair)
			coordinates.POST("/jobs", coordinateController.CreateJob)
			coordinates.GET("/jobs/:jobID/status", coordinateController.GetJobStatus)
			coordinates.GET("/jobs/:jobID/results", coordinateController.GetJobResults)
			coordinates.GET("/jobs/:jobID/export", coordinateController.ExportJob)
			coordinates.POST("/jobs/:jobID/cancel", coordinateController.CancelJob)
		}

		v1.GET("/townships", coordinateController.ListTownships)

		admin := v1.Group("/admin")
		{
			admin.POST("/cache/invalidate", adminController.InvalidateCache)
			admin.POST("/cache/clear", adminController.ClearCache)
			admin.GET("/cache/stats", adminController.GetCacheStats)
			admin.GET("/stats", adminController.GetStats)
		}

		v1.GET("/health", coordinateController.HealthCheck)
	}
}

// SetupHealthRoutes registers the unversioned probes.
func SetupHealthRoutes(router *gin.Engine, coordinateController *controllers.CoordinateController) {
	router.GET("/health", coordinateController.HealthCheck)
	router.GET("/ready", coordinateController.HealthCheck)
	router.GET("/live", coordinateController.HealthCheck)
}

// SetupAllRoutes wires middleware and every route group.
func SetupAllRoutes(router *gin.Engine, coordinateController *controllers.CoordinateController, adminController *controllers.AdminController) {
	setupMiddleware(router)

	SetupHealthRoutes(router, coordinateController)
	SetupAPIRoutes(router, coordinateController, adminController)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":  "Route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}

func setupMiddleware(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
}
