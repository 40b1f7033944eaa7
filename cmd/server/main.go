package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/atim/backend-go/internal/api"
	"github.com/andresuchdata/atim/backend-go/internal/app"
	"github.com/andresuchdata/atim/backend-go/internal/config"
	"github.com/andresuchdata/atim/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
		logger.UseJSON()
	}

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer a.Close()

	router := api.NewRouter(&api.Services{
		Analysis:  a.Analysis,
		Inventory: a.Inventory,
		Reports:   a.Reports,
	}, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Debug:          cfg.Server.Mode == "debug",
		UploadDir:      cfg.App.UploadDir,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		MaxConcurrent:  cfg.Analysis.MaxConcurrent,
		TrendProvider:  a.Ranker.ProviderName(),
		LLMEnabled:     a.LLMEnabled,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().
			Str("port", cfg.Server.Port).
			Str("trend_provider", a.Ranker.ProviderName()).
			Bool("llm_enabled", a.LLMEnabled).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 10 seconds to finish
	// the requests it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
