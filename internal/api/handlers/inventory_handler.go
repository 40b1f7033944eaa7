package handlers

import (
	"net/http"

	"github.com/andresuchdata/atim/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
)

// InventoryService is the configured inventory file.
type InventoryService interface {
	Summary() (domain.InventorySummary, error)
	LowStock() ([]domain.InventoryItem, error)
	UpdateStock(productName string, newStock int) (bool, error)
	Reload() error
}

type InventoryHandler struct {
	service InventoryService
	debug   bool
}

func NewInventoryHandler(service InventoryService, debug bool) *InventoryHandler {
	return &InventoryHandler{service: service, debug: debug}
}

type stockUpdateRequest struct {
	ProductName string `json:"product_name" binding:"required"`
	NewStock    *int   `json:"new_stock" binding:"required,min=0"`
}

// GetSummary returns totals and per-item status for the configured inventory.
func (h *InventoryHandler) GetSummary(c *gin.Context) {
	summary, err := h.service.Summary()
	if err != nil {
		respondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetLowStock lists items at or below their reorder point.
func (h *InventoryHandler) GetLowStock(c *gin.Context) {
	items, err := h.service.LowStock()
	if err != nil {
		respondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "items": items})
}

// UpdateStock sets one product's stock and writes the file back.
func (h *InventoryHandler) UpdateStock(c *gin.Context) {
	var req stockUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError(err), h.debug)
		return
	}

	found, err := h.service.UpdateStock(req.ProductName, *req.NewStock)
	if err != nil {
		respondError(c, err, h.debug)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, errorBody{Error: "product not found: " + req.ProductName, Kind: KindBadInput})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"product_name": req.ProductName,
		"new_stock":    *req.NewStock,
	})
}

// Reload re-reads the inventory file and returns the fresh summary.
func (h *InventoryHandler) Reload(c *gin.Context) {
	if err := h.service.Reload(); err != nil {
		respondError(c, err, h.debug)
		return
	}
	summary, err := h.service.Summary()
	if err != nil {
		respondError(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary})
}
