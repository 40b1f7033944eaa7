package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	trendProvider string
	llmEnabled    bool
}

func NewHealthHandler(trendProvider string, llmEnabled bool) *HealthHandler {
	return &HealthHandler{trendProvider: trendProvider, llmEnabled: llmEnabled}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"trend_provider": h.trendProvider,
		"llm_enabled":    h.llmEnabled,
	})
}
