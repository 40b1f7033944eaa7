package api

import (
	"strings"
	"time"

	"github.com/andresuchdata/atim/backend-go/internal/api/handlers"
	"github.com/andresuchdata/atim/backend-go/internal/api/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Services struct {
	Analysis  handlers.Analyzer
	Inventory handlers.InventoryService
	Reports   handlers.ReportResolver
}

type Options struct {
	AllowedOrigins []string
	Debug          bool
	UploadDir      string
	MaxUploadBytes int64
	MaxConcurrent  int64
	TrendProvider  string
	LLMEnabled     bool
}

func NewRouter(services *Services, opts Options) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.Metrics())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.AllowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(opts.AllowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	if opts.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = opts.MaxUploadBytes
	}

	health := handlers.NewHealthHandler(opts.TrendProvider, opts.LLMEnabled)
	router.GET("/health", health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api/v1")
	apiGroup.GET("/health", health.Health)

	if services != nil {
		if services.Analysis != nil {
			analysisHandler := handlers.NewAnalysisHandler(services.Analysis, opts.UploadDir, opts.MaxUploadBytes, opts.MaxConcurrent, opts.Debug)
			apiGroup.POST("/upload", analysisHandler.Upload)
		}

		if services.Inventory != nil {
			inventoryHandler := handlers.NewInventoryHandler(services.Inventory, opts.Debug)
			inventoryGroup := apiGroup.Group("/inventory")
			{
				inventoryGroup.GET("/summary", inventoryHandler.GetSummary)
				inventoryGroup.GET("/low-stock", inventoryHandler.GetLowStock)
				inventoryGroup.POST("/stock", inventoryHandler.UpdateStock)
				inventoryGroup.POST("/reload", inventoryHandler.Reload)
			}
		}

		if services.Reports != nil {
			reportHandler := handlers.NewReportHandler(services.Reports)
			router.GET("/reports/:filename", reportHandler.GetReport)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
