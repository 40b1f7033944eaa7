package main

import (
	"os"

	"github.com/andresuchdata/atim/backend-go/internal/config"
	"github.com/andresuchdata/atim/backend-go/pkg/logger"
	"github.com/urfave/cli/v2"
)

func newCSVFlag(cfg *config.Config) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "csv",
		Usage:   "Inventory CSV file",
		Value:   cfg.Inventory.CSVPath,
		EnvVars: []string{"INVENTORY_CSV"},
	}
}

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)

	app := &cli.App{
		Name:  "atim",
		Usage: "Trend-driven inventory analysis",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override LOG_LEVEL",
			},
		},
		Before: func(c *cli.Context) error {
			if lvl := c.String("log-level"); lvl != "" {
				logger.SetLevel(lvl)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "analyze",
				Usage: "Rank trends, generate recommendations and write an HTML report",
				Flags: []cli.Flag{
					newCSVFlag(cfg),
					&cli.IntFlag{
						Name:  "max-keywords",
						Usage: "Maximum keywords sent to the trend provider",
						Value: cfg.Trends.MaxKeywords,
					},
					&cli.Float64Flag{
						Name:  "min-confidence",
						Usage: "Confidence floor for trending products",
						Value: cfg.Trends.MinConfidence,
					},
					&cli.StringSliceFlag{
						Name:  "status",
						Usage: "Only print trends with these statuses (rising, peaking, stable, declining)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the full result as JSON",
					},
					&cli.BoolFlag{
						Name:  "refresh",
						Usage: "Drop cached trend series before ranking",
					},
				},
				Action: runAnalyze(cfg),
			},
			{
				Name:  "update-stock",
				Usage: "Set one product's stock and rewrite the CSV",
				Flags: []cli.Flag{
					newCSVFlag(cfg),
					&cli.StringFlag{
						Name:     "product",
						Usage:    "Product name (case-insensitive exact match)",
						Required: true,
					},
					&cli.IntFlag{
						Name:     "stock",
						Usage:    "New stock level",
						Required: true,
					},
				},
				Action: runUpdateStock(cfg),
			},
			{
				Name:  "normalize",
				Usage: "Rewrite a CSV with all nine columns, filling defaults",
				Flags: []cli.Flag{
					newCSVFlag(cfg),
					&cli.StringFlag{
						Name:  "out",
						Usage: "Output file (defaults to rewriting --csv in place)",
					},
				},
				Action: runNormalize(cfg),
			},
			{
				Name:  "drive-pull",
				Usage: "Download inventory CSV/XLSX files from Google Drive",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "credentials",
						Usage:   "Service account JSON",
						Value:   cfg.Drive.CredentialsJSON,
						EnvVars: []string{"GOOGLE_DRIVE_CREDENTIALS_JSON"},
					},
					&cli.StringFlag{
						Name:    "folder-path",
						Usage:   "Slash separated Drive folder path",
						Value:   cfg.Drive.FolderPath,
						EnvVars: []string{"DRIVE_FOLDER_PATH"},
					},
					&cli.StringFlag{
						Name:  "dest",
						Usage: "Where to write the normalized inventory CSV",
						Value: cfg.Inventory.CSVPath,
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Download every CSV/XLSX in the folder and merge them into --dest",
					},
				},
				Action: runDrivePull(cfg),
			},
			{
				Name:   "cache-clear",
				Usage:  "Drop every cached trend series from redis",
				Action: runCacheClear(cfg),
			},
			{
				Name:  "storage-pull",
				Usage: "Download an inventory CSV from object storage",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Object key prefix",
						Value: "inventory/",
					},
					&cli.StringFlag{
						Name:  "key",
						Usage: "Exact object key (defaults to the last CSV under --prefix)",
					},
					&cli.StringFlag{
						Name:  "dest",
						Usage: "Where to write the normalized inventory CSV",
						Value: cfg.Inventory.CSVPath,
					},
				},
				Action: runStoragePull(cfg),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("command failed")
	}
}
