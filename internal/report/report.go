package report

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andresuchdata/atim/backend-go/internal/domain"
	"github.com/andresuchdata/atim/backend-go/internal/inventory"
	"github.com/andresuchdata/atim/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

// URLPrefix is where locally stored reports are served.
const URLPrefix = "/reports/"

const filenamePrefix = "atim_report_"

// ErrNotFound is returned for report names that do not resolve to a file.
var ErrNotFound = errors.New("report not found")

// Data is everything a report shows.
type Data struct {
	RunID          string
	GeneratedAt    time.Time
	Trends         []domain.TrendResult
	Synthetic      bool
	Summary        domain.InventorySummary
	Recommendation domain.Recommendation
	LowStock       []domain.InventoryItem
	Analytics      domain.AnalyticsSnapshot
}

// Artifact describes a written report.
type Artifact struct {
	Filename string
	Path     string
	URL      string
}

// Generator renders reports into a directory and optionally publishes them.
type Generator struct {
	dir        string
	tmpl       *template.Template
	publisher  storage.ObjectStorage
	publicBase string
	prefix     string
}

// Option configures a Generator.
type Option func(*Generator)

// WithPublisher uploads every written report under prefix and, when publicBase
// is set, returns the public URL instead of the local one.
func WithPublisher(store storage.ObjectStorage, prefix, publicBase string) Option {
	return func(g *Generator) {
		g.publisher = store
		g.prefix = prefix
		g.publicBase = publicBase
	}
}

// NewGenerator parses the report template and ensures dir exists.
func NewGenerator(dir string, opts ...Option) (*Generator, error) {
	tmpl, err := template.New("report.html.tmpl").Funcs(template.FuncMap{
		"money":       inventory.FormatCurrency,
		"f2":          func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"barWidth":    barWidth,
		"statusClass": func(s domain.TrendStatus) string { return "status-" + strings.ToLower(string(s)) },
	}).ParseFS(templateFS, "templates/report.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}

	g := &Generator{dir: dir, tmpl: tmpl}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// FileName is the report name for a run started at t.
func FileName(t time.Time) string {
	return filenamePrefix + t.Format("20060102_150405") + ".html"
}

// Render writes the HTML for d to w.
func (g *Generator) Render(w io.Writer, d Data) error {
	return g.tmpl.Execute(w, d)
}

// Write renders d into the report directory, replacing the file atomically,
// and publishes it when a publisher is configured. A failed upload is logged
// and the local URL is kept.
func (g *Generator) Write(ctx context.Context, d Data) (Artifact, error) {
	var buf bytes.Buffer
	if err := g.Render(&buf, d); err != nil {
		return Artifact{}, fmt.Errorf("render report: %w", err)
	}

	name := FileName(d.GeneratedAt)
	path := filepath.Join(g.dir, name)
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return Artifact{}, err
	}

	art := Artifact{Filename: name, Path: path, URL: URLPrefix + name}

	if g.publisher != nil {
		key := g.prefix + name
		if err := g.publisher.UploadObject(ctx, key, buf.Bytes()); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("report: publish failed, serving locally")
		} else if url := storage.PublicURL(g.publicBase, key); url != "" {
			art.URL = url
		}
	}

	log.Info().Str("file", path).Str("url", art.URL).Msg("report: written")
	return art, nil
}

// Resolve maps a requested report name to its path inside the report
// directory. Names with path separators or outside the report naming scheme
// are rejected.
func (g *Generator) Resolve(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.Contains(filename, "..") {
		return "", ErrNotFound
	}
	if !strings.HasPrefix(filename, filenamePrefix) || filepath.Ext(filename) != ".html" {
		return "", ErrNotFound
	}

	path := filepath.Join(g.dir, filename)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ErrNotFound
	}
	return path, nil
}

func barWidth(confidence float64) string {
	switch {
	case confidence < 0:
		confidence = 0
	case confidence > 100:
		confidence = 100
	}
	return fmt.Sprintf("%.0f", confidence)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod report: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace report: %w", err)
	}
	return nil
}
