package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/township-classifier/app/config"
	"github.com/township-classifier/app/controllers"
	"github.com/township-classifier/app/services"
	"github.com/township-classifier/internal/classifier"
	"github.com/township-classifier/internal/parser"
	"github.com/township-classifier/internal/pipeline"
	"github.com/township-classifier/internal/vocab"
	"github.com/township-classifier/routes"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	if err := config.Load("config/pipeline.yaml"); err != nil {
		panic(err)
	}

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	logger.Info("Starting Township Classifier Service...")

	// Initialize cache (in-memory for the slim entrypoint)
	cacheService := services.NewMemoryCacheService(logger)

	// Initialize the Gemini classifier
	geminiConfig := classifier.DefaultGeminiConfig(os.Getenv("GEMINI_API_KEY"))
	if config.C.Gemini.Model != "" {
		geminiConfig.Model = config.C.Gemini.Model
	}
	geminiConfig.EnableGoogleSearch = config.C.Gemini.EnableGoogleSearch

	geminiClient, err := classifier.NewGeminiClient(geminiConfig, logger)
	if err != nil {
		logger.Fatal("Failed to create Gemini client", zap.Error(err))
	}
	cachedClassifier := services.NewCachedClassifier(geminiClient, cacheService, logger)

	// Initialize pipeline
	coordinateParser := parser.NewCoordinateParser(logger)
	matcher := vocab.NewMatcher(logger)
	orchestrator := pipeline.NewOrchestrator(cachedClassifier, matcher,
		config.C.Chunking.ChunkSize, config.InterChunkDelay(), logger)

	pipelineService := services.NewPipelineService(coordinateParser, orchestrator, logger)

	// Initialize controllers
	coordinateController := controllers.NewCoordinateController(pipelineService, cacheService, logger)
	adminController := controllers.NewAdminController(pipelineService, cacheService, logger)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	routes.SetupAllRoutes(router, coordinateController, adminController)

	// Start server
	port := getPort()
	go func() {
		logger.Info("Starting HTTP server", zap.String("port", port))
		if err := router.Run(":" + port); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Give outstanding requests a deadline for completion
	_, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Server exited")
}

func getPort() string {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return port
}
