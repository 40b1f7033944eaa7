package handlers

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/andresuchdata/atim/backend-go/internal/domain"
	"github.com/andresuchdata/atim/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

// multipart framing allowance on top of the file size limit
const formOverhead = 1 << 20

// Analyzer runs an inventory analysis.
type Analyzer interface {
	Run(ctx context.Context, req service.AnalysisRequest) (*domain.AnalysisResult, error)
}

type AnalysisHandler struct {
	analyzer  Analyzer
	uploadDir string
	maxBytes  int64
	sem       *semaphore.Weighted
	debug     bool
	now       func() time.Time
}

func NewAnalysisHandler(analyzer Analyzer, uploadDir string, maxBytes, maxConcurrent int64, debug bool) *AnalysisHandler {
	if maxBytes <= 0 {
		maxBytes = 16 << 20
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &AnalysisHandler{
		analyzer:  analyzer,
		uploadDir: uploadDir,
		maxBytes:  maxBytes,
		sem:       semaphore.NewWeighted(maxConcurrent),
		debug:     debug,
		now:       time.Now,
	}
}

type uploadForm struct {
	File          *multipart.FileHeader `form:"file" binding:"required"`
	MaxKeywords   int                   `form:"max_keywords" binding:"omitempty,min=1,max=50"`
	MinConfidence *float64              `form:"min_confidence" binding:"omitempty,min=0,max=100"`
}

type analysisResponse struct {
	Success bool `json:"success"`
	*domain.AnalysisResult
}

// Upload saves an inventory CSV and analyses it synchronously.
func (h *AnalysisHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+formOverhead)

	var form uploadForm
	if err := c.ShouldBind(&form); err != nil {
		if _, kind := classify(err); kind == KindBadInput {
			respondError(c, err, h.debug)
			return
		}
		respondError(c, bindingError(err), h.debug)
		return
	}

	if strings.ToLower(filepath.Ext(form.File.Filename)) != ".csv" {
		respondError(c, &domain.ValidationError{Field: "file", Message: "only .csv files are accepted"}, h.debug)
		return
	}
	if form.File.Size > h.maxBytes {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, errorBody{
			Error: fmt.Sprintf("file exceeds %d MB", h.maxBytes>>20),
			Kind:  KindBadInput,
		})
		return
	}

	path := filepath.Join(h.uploadDir, uploadName(h.now(), form.File.Filename))
	if err := c.SaveUploadedFile(form.File, path); err != nil {
		log.Error().Err(err).Str("filename", form.File.Filename).Msg("failed to save uploaded file")
		respondError(c, err, h.debug)
		return
	}

	ctx := c.Request.Context()
	if err := h.sem.Acquire(ctx, 1); err != nil {
		respondError(c, err, h.debug)
		return
	}
	defer h.sem.Release(1)

	result, err := h.analyzer.Run(ctx, service.AnalysisRequest{
		CSVPath:       path,
		MaxKeywords:   form.MaxKeywords,
		MinConfidence: form.MinConfidence,
	})
	if err != nil {
		respondError(c, err, h.debug)
		return
	}

	c.JSON(http.StatusOK, analysisResponse{Success: true, AnalysisResult: result})
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// uploadName prefixes a sanitized client filename with the upload time.
func uploadName(t time.Time, original string) string {
	name := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	name = unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(name), "_")
	name = strings.TrimLeft(name, "._")
	if name == "" || strings.EqualFold(name, "csv") {
		name = "inventory.csv"
	}
	return t.Format("20060102_150405") + "_" + name
}
