package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prefixlens/backend/config"
	"github.com/prefixlens/backend/internal/usecase"
)

// NewRouter builds the clustering service from cfg and mounts it on a router
func NewRouter(cfg *config.Config) *gin.Engine {
	svc := usecase.NewClusteringService(usecase.ClusteringServiceConfig{
		Workers:            cfg.Clustering.Workers,
		NormalizeBucketKey: cfg.Clustering.NormalizeBucketKey,
		Stopwords:          cfg.Clustering.Stopwords,
		EnableDebugLogging: cfg.Clustering.Debug,
	})
	return SetupRouter(cfg, NewHandler(svc))
}

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/cluster", handler.Cluster)
		v1.POST("/prefix", handler.CommonPrefix)
	}

	return router
}
