package service

import (
	"context"
	"errors"
	"time"

	"github.com/andresuchdata/atim/backend-go/internal/analytics"
	"github.com/andresuchdata/atim/backend-go/internal/domain"
	"github.com/andresuchdata/atim/backend-go/internal/inventory"
	"github.com/andresuchdata/atim/backend-go/internal/metrics"
	"github.com/andresuchdata/atim/backend-go/internal/recommend"
	"github.com/andresuchdata/atim/backend-go/internal/report"
	"github.com/andresuchdata/atim/backend-go/internal/trend"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ResultTrendLimit caps the trends returned to callers.
const ResultTrendLimit = 10

// TrendRanker ranks keywords by trend confidence.
type TrendRanker interface {
	Rank(ctx context.Context, keywords []string, maxKeywords int, minConfidence float64) (domain.TrendList, error)
}

// Advisor produces recommendations and never fails.
type Advisor interface {
	Recommend(ctx context.Context, req recommend.Request) domain.Recommendation
}

// ReportWriter persists a rendered report.
type ReportWriter interface {
	Write(ctx context.Context, d report.Data) (report.Artifact, error)
}

// AnalysisOptions holds the run defaults.
type AnalysisOptions struct {
	MaxKeywords         int
	MinConfidence       float64
	SyntheticCount      int
	Season              string
	Events              []string
	DefaultLeadTimeDays int
	Timeout             time.Duration
}

// AnalysisRequest describes one run. Zero limits use the service defaults.
type AnalysisRequest struct {
	CSVPath       string
	MaxKeywords   int
	MinConfidence *float64
}

type AnalysisService struct {
	ranker  TrendRanker
	advisor Advisor
	reports ReportWriter
	opts    AnalysisOptions
	now     func() time.Time
}

func NewAnalysisService(ranker TrendRanker, advisor Advisor, reports ReportWriter, opts AnalysisOptions) *AnalysisService {
	if opts.SyntheticCount <= 0 {
		opts.SyntheticCount = trend.DefaultSyntheticCount
	}
	return &AnalysisService{
		ranker:  ranker,
		advisor: advisor,
		reports: reports,
		opts:    opts,
		now:     time.Now,
	}
}

// Run loads the inventory, ranks its keywords, asks for recommendations and
// renders the report. Provider and model failures degrade to synthetic
// trends and rule-based advice; only inventory errors and cancellation fail
// the run.
func (s *AnalysisService) Run(ctx context.Context, req AnalysisRequest) (*domain.AnalysisResult, error) {
	observe := metrics.TrackAnalysis(time.Now())

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	result, err := s.run(ctx, req)
	switch {
	case err == nil:
		observe("ok")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		observe("canceled")
	default:
		observe("error")
	}
	return result, err
}

func (s *AnalysisService) run(ctx context.Context, req AnalysisRequest) (*domain.AnalysisResult, error) {
	runID := uuid.NewString()
	started := s.now()
	logger := log.With().Str("run_id", runID).Str("csv", req.CSVPath).Logger()

	store, err := inventory.NewStore(req.CSVPath, inventory.NewDefaultsCalculator(s.opts.DefaultLeadTimeDays))
	if err != nil {
		return nil, err
	}

	items := store.Items()
	summary := store.Summary()
	keywords := store.Keywords()

	maxKeywords := s.opts.MaxKeywords
	if req.MaxKeywords > 0 {
		maxKeywords = req.MaxKeywords
	}
	minConfidence := s.opts.MinConfidence
	if req.MinConfidence != nil {
		minConfidence = *req.MinConfidence
	}

	logger.Info().Int("items", len(items)).Int("keywords", len(keywords)).Msg("analysis: started")

	trends, err := s.ranker.Rank(ctx, keywords, maxKeywords, minConfidence)
	if err != nil {
		return nil, err
	}
	if trends.Empty() && len(keywords) > 0 {
		logger.Warn().Msg("analysis: no trend data, using synthetic trends")
		trends = trend.SyntheticList(keywords, s.opts.SyntheticCount, nil)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := s.advisor.Recommend(ctx, recommend.Request{
		Trends:  trends.Results,
		Items:   items,
		Summary: summary,
		Season:  s.opts.Season,
		Events:  s.opts.Events,
	})

	lowStock := store.LowStock()
	metrics.LowStockItems.Set(float64(len(lowStock)))

	snapshot := analytics.Aggregate(items, trends.Results)

	result := &domain.AnalysisResult{
		RunID:            runID,
		InventorySummary: summary,
		TrendingProducts: trends.Top(ResultTrendLimit),
		SyntheticTrends:  trends.Synthetic,
		Recommendation:   rec,
		LowStockCount:    len(lowStock),
		LowStockItems:    lowStock,
		Analytics:        snapshot,
	}

	if s.reports != nil {
		art, err := s.reports.Write(ctx, report.Data{
			RunID:          runID,
			GeneratedAt:    started,
			Trends:         trends.Results,
			Synthetic:      trends.Synthetic,
			Summary:        summary,
			Recommendation: rec,
			LowStock:       lowStock,
			Analytics:      snapshot,
		})
		if err != nil {
			logger.Error().Err(err).Msg("analysis: report generation failed")
		} else {
			result.ReportURL = art.URL
		}
	}

	logger.Info().
		Int("trends", len(trends.Results)).
		Bool("synthetic", trends.Synthetic).
		Str("recommendation_source", rec.Source).
		Int("low_stock", len(lowStock)).
		Msg("analysis: completed")

	return result, nil
}
