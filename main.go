package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
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
	// 1. Load configuration
	loadConfig()

	// 2. Initialize logger
	logger := initLogger()
	defer logger.Sync()

	logger.Info("Starting Township Classifier Service")

	// 3. Initialize the classification cache (Redis L1 + MongoDB L2 when
	// configured, in-memory otherwise)
	cacheService := initCache(logger)
	defer cacheService.Close()

	// 4. Initialize the Gemini classifier
	geminiConfig := classifier.DefaultGeminiConfig(viper.GetString("gemini.api_key"))
	if model := viper.GetString("gemini.model"); model != "" {
		geminiConfig.Model = model
	}
	geminiConfig.EnableGoogleSearch = viper.GetBool("gemini.enable_google_search")

	geminiClient, err := classifier.NewGeminiClient(geminiConfig, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Gemini client", zap.Error(err))
	}

	cachedClassifier := services.NewCachedClassifier(geminiClient, cacheService, logger)

	// 5. Initialize pipeline components
	coordinateParser := parser.NewCoordinateParser(logger)
	matcher := vocab.NewMatcher(logger)

	chunkSize := getEnvInt("CHUNK_SIZE", pipeline.DefaultChunkSize)
	interChunkWait := time.Duration(getEnvInt("INTER_CHUNK_DELAY_MS", 1500)) * time.Millisecond
	orchestrator := pipeline.NewOrchestrator(cachedClassifier, matcher, chunkSize, interChunkWait, logger)

	// 6. Initialize services
	pipelineService := services.NewPipelineService(coordinateParser, orchestrator, logger)

	// 7. Initialize controllers
	coordinateController := controllers.NewCoordinateController(pipelineService, cacheService, logger)
	adminController := controllers.NewAdminController(pipelineService, cacheService, logger)

	// 8. Initialize Gin router and routes
	router := gin.New()
	routes.SetupAllRoutes(router, coordinateController, adminController)

	// 9. Start server
	port := getEnv("APP_PORT", "8080")
	logger.Info("Township Classifier Service starting", zap.String("port", port))

	if err := router.Run(":" + port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

// loadConfig loads configuration from file and env vars.
func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	// Set defaults
	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("gemini.model", "gemini-2.5-flash")
	viper.SetDefault("gemini.enable_google_search", true)
	viper.SetDefault("mongo.url", "")
	viper.SetDefault("mongo.database", "township_classifier")
	viper.SetDefault("redis.url", "")
	viper.SetDefault("cache.warmup_limit", 500)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Cannot read config file: %v", err)
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		viper.Set("gemini.api_key", key)
	}
}

// initLogger initializes the structured logger.
func initLogger() *zap.Logger {
	env := getEnv("APP_ENV", "development")

	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	logger, err := config.Build()
	if err != nil {
		log.Fatal("Cannot initialize logger:", err)
	}

	return logger
}

// initCache builds the best cache the configuration allows. Redis plus
// MongoDB gives the hybrid two-level cache; either alone is used directly;
// with neither configured the service runs on the in-memory cache.
func initCache(logger *zap.Logger) services.ICacheService {
	redisURL := getEnv("REDIS_URL", viper.GetString("redis.url"))
	mongoURL := getEnv("MONGO_URL", viper.GetString("mongo.url"))
	mongoDB := viper.GetString("mongo.database")

	var redisCache *services.RedisCacheService
	if redisURL != "" {
		rc, err := services.NewRedisCacheService(redisURL, logger)
		if err != nil {
			logger.Warn("Redis unavailable", zap.Error(err))
		} else {
			redisCache = rc
		}
	}

	var mongoCache *services.MongoCacheService
	if mongoURL != "" {
		mc, err := services.NewMongoCacheService(mongoURL, mongoDB, logger)
		if err != nil {
			logger.Warn("MongoDB unavailable", zap.Error(err))
		} else {
			mongoCache = mc
			if err := mc.WarmUp(context.Background(), viper.GetInt("cache.warmup_limit")); err != nil {
				logger.Warn("Failed to warm up cache", zap.Error(err))
			}
		}
	}

	switch {
	case redisCache != nil && mongoCache != nil:
		logger.Info("Using hybrid Redis+MongoDB classification cache")
		return services.NewHybridCacheService(redisCache, mongoCache, logger)
	case mongoCache != nil:
		logger.Info("Using MongoDB classification cache")
		return mongoCache
	case redisCache != nil:
		logger.Info("Using Redis classification cache")
		return redisCache
	default:
		logger.Info("Using in-memory classification cache")
		return services.NewMemoryCacheService(logger)
	}
}

// getEnv returns an environment variable or the default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an environment variable as int or the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
