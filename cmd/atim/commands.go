package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andresuchdata/atim/backend-go/internal/app"
	"github.com/andresuchdata/atim/backend-go/internal/cache"
	"github.com/andresuchdata/atim/backend-go/internal/config"
	"github.com/andresuchdata/atim/backend-go/internal/domain"
	"github.com/andresuchdata/atim/backend-go/internal/drive"
	"github.com/andresuchdata/atim/backend-go/internal/inventory"
	"github.com/andresuchdata/atim/backend-go/internal/service"
	"github.com/andresuchdata/atim/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runAnalyze(cfg *config.Config) cli.ActionFunc {
	return func(c *cli.Context) error {
		ctx, cancel := signalContext(c.Context)
		defer cancel()

		a, err := app.New(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		statuses, err := parseStatuses(c.StringSlice("status"))
		if err != nil {
			return err
		}

		if c.Bool("refresh") {
			if _, err := clearTrendCache(ctx, a.Cache); err != nil {
				return err
			}
		}

		minConfidence := c.Float64("min-confidence")
		result, err := a.Analysis.Run(ctx, service.AnalysisRequest{
			CSVPath:       c.String("csv"),
			MaxKeywords:   c.Int("max-keywords"),
			MinConfidence: &minConfidence,
		})
		if err != nil {
			return err
		}

		result.TrendingProducts = filterByStatus(result.TrendingProducts, statuses)

		if c.Bool("json") {
			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		printResult(c, result)
		return nil
	}
}

func parseStatuses(labels []string) (map[domain.TrendStatus]bool, error) {
	if len(labels) == 0 {
		return nil, nil
	}
	out := make(map[domain.TrendStatus]bool, len(labels))
	for _, l := range labels {
		s, ok := domain.ParseTrendStatus(l)
		if !ok {
			return nil, &domain.ValidationError{Field: "status", Message: fmt.Sprintf("unknown trend status %q", l)}
		}
		out[s] = true
	}
	return out, nil
}

func filterByStatus(trends []domain.TrendResult, statuses map[domain.TrendStatus]bool) []domain.TrendResult {
	if len(statuses) == 0 {
		return trends
	}
	kept := make([]domain.TrendResult, 0, len(trends))
	for _, t := range trends {
		if statuses[t.Status] {
			kept = append(kept, t)
		}
	}
	return kept
}

func printResult(c *cli.Context, r *domain.AnalysisResult) {
	w := c.App.Writer
	fmt.Fprintf(w, "Run %s\n", r.RunID)
	fmt.Fprintf(w, "Items: %d  Low stock: %d  Inventory value: %s\n\n",
		r.InventorySummary.TotalItems, r.InventorySummary.LowStockItems,
		inventory.FormatCurrency(r.InventorySummary.TotalInventoryValue))

	if r.SyntheticTrends {
		fmt.Fprintln(w, "Trends (simulated, provider returned no data):")
	} else {
		fmt.Fprintln(w, "Trends:")
	}
	for _, t := range r.TrendingProducts {
		fmt.Fprintf(w, "  %-30s %-9s confidence %6.2f  velocity %7.2f  strength %6.2f\n",
			t.Keyword, t.Status, t.Confidence, t.Velocity, t.Strength)
	}

	fmt.Fprintf(w, "\nRecommendations (%s):\n%s\n", r.Recommendation.Source, r.Recommendation.Text)
	if r.ReportURL != "" {
		fmt.Fprintf(w, "\nReport: %s\n", r.ReportURL)
	}
}

func runUpdateStock(cfg *config.Config) cli.ActionFunc {
	return func(c *cli.Context) error {
		store, err := inventory.NewStore(c.String("csv"), inventory.NewDefaultsCalculator(cfg.Inventory.DefaultLeadTimeDays))
		if err != nil {
			return err
		}

		product := c.String("product")
		found, err := store.UpdateStock(product, c.Int("stock"), true)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("product not found: %s", product)
		}

		log.Info().Str("product", product).Int("stock", c.Int("stock")).Str("csv", store.Path()).Msg("stock updated")
		return nil
	}
}

func runNormalize(cfg *config.Config) cli.ActionFunc {
	return func(c *cli.Context) error {
		src := c.String("csv")
		dest := c.String("out")
		if dest == "" {
			dest = src
		}
		return normalizeInto(cfg, src, dest)
	}
}

// normalizeInto validates src and writes it to dest with every column filled.
func normalizeInto(cfg *config.Config, src, dest string) error {
	items, err := inventory.LoadFile(src, inventory.NewDefaultsCalculator(cfg.Inventory.DefaultLeadTimeDays))
	if err != nil {
		return err
	}
	if err := inventory.SaveFile(dest, items); err != nil {
		return err
	}
	log.Info().Str("source", src).Str("dest", dest).Int("items", len(items)).Msg("inventory normalized")
	return nil
}

func runDrivePull(cfg *config.Config) cli.ActionFunc {
	return func(c *cli.Context) error {
		ctx, cancel := signalContext(c.Context)
		defer cancel()

		svc, err := drive.NewService(ctx, c.String("credentials"))
		if err != nil {
			return err
		}

		folderID, err := svc.FindFolderByPath(ctx, c.String("folder-path"))
		if err != nil {
			return err
		}

		downloader := drive.NewDownloader(svc)
		opts := drive.DownloadOptions{
			FolderID:    folderID,
			DownloadDir: cfg.App.UploadDir,
		}

		if c.Bool("all") {
			paths, err := downloader.DownloadFolderCSV(ctx, opts)
			if err != nil {
				return err
			}
			return mergeInto(cfg, paths, c.String("dest"))
		}

		path, err := downloader.DownloadLatest(ctx, opts)
		if err != nil {
			return err
		}
		return normalizeInto(cfg, path, c.String("dest"))
	}
}

// mergeInto concatenates the valid rows of every source into dest. Sources
// without valid rows are logged and skipped.
func mergeInto(cfg *config.Config, sources []string, dest string) error {
	calc := inventory.NewDefaultsCalculator(cfg.Inventory.DefaultLeadTimeDays)

	var merged []domain.InventoryItem
	for _, src := range sources {
		items, err := inventory.LoadFile(src, calc)
		if err != nil {
			log.Warn().Err(err).Str("source", src).Msg("skipping inventory file")
			continue
		}
		merged = append(merged, items...)
	}
	if len(merged) == 0 {
		return fmt.Errorf("merge %d files: %w", len(sources), domain.ErrEmptyDataset)
	}

	if err := inventory.SaveFile(dest, merged); err != nil {
		return err
	}
	log.Info().Int("files", len(sources)).Int("items", len(merged)).Str("dest", dest).Msg("inventory merged")
	return nil
}

func runCacheClear(cfg *config.Config) cli.ActionFunc {
	return func(c *cli.Context) error {
		ctx, cancel := signalContext(c.Context)
		defer cancel()

		seriesCache, err := cache.NewTrendSeriesCache(ctx, cfg.Cache)
		if err != nil {
			return err
		}
		defer seriesCache.Close()

		removed, err := clearTrendCache(ctx, seriesCache)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Removed %d cached trend series\n", removed)
		return nil
	}
}

func clearTrendCache(ctx context.Context, seriesCache cache.TrendSeriesCache) (int, error) {
	removed, err := seriesCache.InvalidateAll(ctx)
	if err != nil {
		return removed, fmt.Errorf("clear trend cache: %w", err)
	}
	log.Info().Int("removed", removed).Msg("trend cache cleared")
	return removed, nil
}

func runStoragePull(cfg *config.Config) cli.ActionFunc {
	return func(c *cli.Context) error {
		ctx, cancel := signalContext(c.Context)
		defer cancel()

		client, err := storage.New(cfg.Storage)
		if err != nil {
			return err
		}
		if client == nil {
			return fmt.Errorf("object storage is disabled, set STORAGE_ENABLED=true")
		}

		path, err := storage.DownloadLatestCSV(ctx, client, c.String("prefix"), c.String("key"), cfg.App.UploadDir)
		if err != nil {
			return err
		}

		return normalizeInto(cfg, path, c.String("dest"))
	}
}
