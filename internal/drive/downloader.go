package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrNoInventoryFile is returned when a folder holds no CSV or XLSX file.
var ErrNoInventoryFile = errors.New("no csv or xlsx file in drive folder")

// Source is the subset of the Drive API the downloader needs.
type Source interface {
	ListFiles(ctx context.Context, folderID string) ([]*File, error)
	DownloadFile(ctx context.Context, fileID string, w io.Writer) error
}

// DownloadOptions controls how files are pulled from Google Drive.
type DownloadOptions struct {
	FolderID    string
	DownloadDir string
}

// Downloader pulls inventory spreadsheets out of a Drive folder.
type Downloader struct {
	source Source
}

// NewDownloader creates a new Downloader.
func NewDownloader(s Source) *Downloader {
	return &Downloader{source: s}
}

// DownloadFolderCSV downloads every CSV and XLSX file in the folder into
// DownloadDir and returns local CSV paths. XLSX files have their first sheet
// converted to CSV.
func (d *Downloader) DownloadFolderCSV(ctx context.Context, opts DownloadOptions) ([]string, error) {
	files, err := d.inventoryFiles(ctx, opts)
	if err != nil {
		return nil, err
	}

	var localPaths []string
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path, err := d.fetch(ctx, f, opts.DownloadDir)
		if err != nil {
			return nil, err
		}
		localPaths = append(localPaths, path)
	}
	return localPaths, nil
}

// DownloadLatest downloads the most recently modified CSV or XLSX file in the
// folder and returns its local CSV path.
func (d *Downloader) DownloadLatest(ctx context.Context, opts DownloadOptions) (string, error) {
	files, err := d.inventoryFiles(ctx, opts)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", ErrNoInventoryFile
	}

	sort.SliceStable(files, func(i, j int) bool {
		return modifiedAt(files[i]).After(modifiedAt(files[j]))
	})

	log.Info().Str("file", files[0].Name).Str("modified", files[0].ModifiedTime).Msg("drive: pulling latest inventory")
	return d.fetch(ctx, files[0], opts.DownloadDir)
}

func (d *Downloader) inventoryFiles(ctx context.Context, opts DownloadOptions) ([]*File, error) {
	if opts.DownloadDir == "" {
		return nil, fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(opts.DownloadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	files, err := d.source.ListFiles(ctx, opts.FolderID)
	if err != nil {
		return nil, err
	}

	out := make([]*File, 0, len(files))
	for _, f := range files {
		switch strings.ToLower(filepath.Ext(f.Name)) {
		case ".csv", ".xlsx":
			out = append(out, f)
		}
	}
	return out, nil
}

func (d *Downloader) fetch(ctx context.Context, f *File, dir string) (string, error) {
	name := filepath.Base(f.Name)
	localPath := filepath.Join(dir, name)

	out, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to create local file %s: %w", localPath, err)
	}
	if err := d.source.DownloadFile(ctx, f.ID, out); err != nil {
		out.Close()
		os.Remove(localPath)
		return "", fmt.Errorf("failed to download %s: %w", f.Name, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", localPath, err)
	}

	if strings.ToLower(filepath.Ext(name)) != ".xlsx" {
		return localPath, nil
	}

	csvPath := strings.TrimSuffix(localPath, filepath.Ext(localPath)) + ".csv"
	if err := convertXLSXToCSV(localPath, csvPath); err != nil {
		return "", fmt.Errorf("failed to convert %s to csv: %w", f.Name, err)
	}
	_ = os.Remove(localPath)
	return csvPath, nil
}

func modifiedAt(f *File) time.Time {
	t, err := time.Parse(time.RFC3339, f.ModifiedTime)
	if err != nil {
		return time.Time{}
	}
	return t
}
