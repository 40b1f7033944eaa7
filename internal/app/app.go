// Package app builds the runtime components from configuration. Both the
// HTTP server and the CLI construct their dependencies here once.
package app

import (
	"context"
	"time"

	"github.com/andresuchdata/atim/backend-go/internal/cache"
	"github.com/andresuchdata/atim/backend-go/internal/config"
	"github.com/andresuchdata/atim/backend-go/internal/recommend"
	"github.com/andresuchdata/atim/backend-go/internal/report"
	"github.com/andresuchdata/atim/backend-go/internal/service"
	"github.com/andresuchdata/atim/backend-go/internal/storage"
	"github.com/andresuchdata/atim/backend-go/internal/trend"
	"github.com/rs/zerolog/log"
)

// App holds the wired components and whatever must be closed on exit.
type App struct {
	Config    *config.Config
	Cache     cache.TrendSeriesCache
	Ranker    *trend.Ranker
	Advisor   *recommend.Recommender
	Reports   *report.Generator
	Analysis  *service.AnalysisService
	Inventory *service.InventoryService

	LLMEnabled bool

	closers []func() error
}

// New wires every component. Optional integrations that fail to start
// (cache, model, storage) are logged and skipped.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	seriesCache, err := cache.NewTrendSeriesCache(ctx, cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("app: trend cache unavailable, continuing without it")
		seriesCache = cache.NewNoopTrendSeriesCache()
	}
	a.Cache = seriesCache
	a.closers = append(a.closers, seriesCache.Close)

	a.Ranker = NewRanker(cfg.Trends, seriesCache)

	var llm recommend.LLM
	if cfg.LLM.APIKey != "" {
		gemini, err := recommend.NewGeminiClient(ctx, cfg.LLM)
		if err != nil {
			log.Warn().Err(err).Msg("app: gemini unavailable, using rule-based recommendations")
		} else {
			llm = gemini
			a.LLMEnabled = true
			a.closers = append(a.closers, gemini.Close)
		}
	} else {
		log.Info().Msg("app: GEMINI_API_KEY not set, using rule-based recommendations")
	}
	a.Advisor = recommend.NewRecommender(llm,
		recommend.WithRetry(cfg.LLM.RetryAttempts, time.Duration(cfg.LLM.RetryInitialMS)*time.Millisecond),
	)

	var reportOpts []report.Option
	objects, err := storage.New(cfg.Storage)
	if err != nil {
		log.Warn().Err(err).Msg("app: object storage unavailable, reports stay local")
	} else if objects != nil {
		reportOpts = append(reportOpts, report.WithPublisher(objects, cfg.Storage.ReportPrefix, cfg.Storage.PublicBaseURL))
	}
	a.Reports, err = report.NewGenerator(cfg.App.ReportDir, reportOpts...)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Analysis = service.NewAnalysisService(a.Ranker, a.Advisor, a.Reports, service.AnalysisOptions{
		MaxKeywords:         cfg.Trends.MaxKeywords,
		MinConfidence:       cfg.Trends.MinConfidence,
		SyntheticCount:      cfg.Trends.SyntheticCount,
		Season:              cfg.Analysis.Season,
		Events:              cfg.Analysis.Events,
		DefaultLeadTimeDays: cfg.Inventory.DefaultLeadTimeDays,
		Timeout:             cfg.AnalysisTimeout(),
	})
	a.Inventory = service.NewInventoryService(cfg.Inventory.CSVPath, cfg.Inventory.DefaultLeadTimeDays)

	return a, nil
}

// NewRanker builds the trend ranker for cfg. Without a SerpAPI key the
// ranker uses the no-op provider, which sends every run down the
// synthetic path.
func NewRanker(cfg config.TrendsConfig, seriesCache trend.SeriesCache) *trend.Ranker {
	var provider trend.Provider = trend.NoopProvider{}
	switch {
	case cfg.Provider == "serpapi" && cfg.SerpAPIKey != "":
		provider = trend.NewSerpAPIProvider(cfg.SerpAPIKey, cfg.SerpAPIBaseURL, time.Duration(cfg.RequestTimeout)*time.Second)
	case cfg.Provider == "serpapi":
		log.Warn().Msg("app: SERPAPI_KEY not set, trends will be synthetic")
	case cfg.Provider != "none" && cfg.Provider != "":
		log.Warn().Str("provider", cfg.Provider).Msg("app: unknown trend provider, trends will be synthetic")
	}

	retry := trend.DefaultRetryPolicy
	if cfg.RetryAttempts > 0 {
		retry.Attempts = cfg.RetryAttempts
	}
	if cfg.RetryBaseSeconds > 0 {
		retry.Base = seconds(cfg.RetryBaseSeconds)
	}

	return trend.NewRanker(provider,
		trend.WithCache(seriesCache),
		trend.WithThrottle(trend.NewThrottle(seconds(cfg.MinDelaySeconds), seconds(cfg.MaxDelaySeconds), nil)),
		trend.WithRetryPolicy(retry),
		trend.WithRegion(cfg.Geo, cfg.Timeframe),
	)
}

// Close releases clients in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("app: close failed")
		}
	}
	a.closers = nil
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
