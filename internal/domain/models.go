// backend-go/internal/domain/models.go
package domain

import "time"

// Known product categories produced by category inference.
const (
	CategoryOutdoor    = "Outdoor"
	CategoryFallWinter = "Fall/Winter"
	CategorySummer     = "Summer"
	CategoryAthletic   = "Athletic"
	CategoryFormal     = "Formal"
	CategoryCasual     = "Casual"
	CategoryGeneral    = "General"
)

// InventoryItem represents one product line in the inventory CSV
type InventoryItem struct {
	ProductName       string  `json:"product_name"`
	Category          string  `json:"category"`
	CurrentStock      int     `json:"current_stock"`
	ReorderPoint      int     `json:"reorder_point"`
	ReorderQuantity   int     `json:"reorder_quantity"`
	LeadTimeDays      int     `json:"lead_time_days"`
	WarehouseLocation string  `json:"warehouse_location"`
	CostPerUnit       float64 `json:"cost_per_unit"`
	SellingPrice      float64 `json:"selling_price"`
}

// IsLowStock reports whether the item is at or below its reorder point.
func (i InventoryItem) IsLowStock() bool {
	return i.CurrentStock <= i.ReorderPoint
}

// StockValue is stock * cost.
func (i InventoryItem) StockValue() float64 {
	return float64(i.CurrentStock) * i.CostPerUnit
}

// RevenuePotential is stock * selling price.
func (i InventoryItem) RevenuePotential() float64 {
	return float64(i.CurrentStock) * i.SellingPrice
}

// ItemStatus is the per-item line of an inventory summary
type ItemStatus struct {
	ProductName  string `json:"product_name"`
	CurrentStock int    `json:"current_stock"`
	ReorderPoint int    `json:"reorder_point"`
	Status       string `json:"status"`
}

// InventorySummary is derived from the current item set on demand
type InventorySummary struct {
	TotalItems          int          `json:"total_items"`
	LowStockItems       int          `json:"low_stock_items"`
	TotalInventoryValue float64      `json:"total_inventory_value"`
	Items               []ItemStatus `json:"items"`
}

// TrendResult is one keyword's scored trend
type TrendResult struct {
	Keyword      string      `json:"keyword"`
	Velocity     float64     `json:"velocity"`
	Strength     float64     `json:"strength"`
	Status       TrendStatus `json:"status"`
	Confidence   float64     `json:"confidence"`
	CurrentValue float64     `json:"current_value"`
	PeakValue    float64     `json:"peak_value"`
	Synthetic    bool        `json:"synthetic"`
}

// TrendList is the ranked output of a single analysis run.
//
// Synthetic is true when the results were generated locally because the
// provider returned nothing. Filtered is false when the confidence floor
// would have emptied the list and the full sorted list was returned instead.
type TrendList struct {
	Results   []TrendResult `json:"results"`
	Synthetic bool          `json:"synthetic"`
	Filtered  bool          `json:"filtered"`
}

// Empty reports whether no trend data was produced at all.
func (l TrendList) Empty() bool {
	return len(l.Results) == 0
}

// Top returns at most n results.
func (l TrendList) Top(n int) []TrendResult {
	if n < 0 || n >= len(l.Results) {
		return l.Results
	}
	return l.Results[:n]
}

// Recommendation source labels
const (
	RecommendationSourceLLM       = "llm"
	RecommendationSourceRuleBased = "rule_based"
)

// Recommendation is the natural-language output of the recommendation step
type Recommendation struct {
	Text        string    `json:"recommendations"`
	Source      string    `json:"source"`
	TrendCount  int       `json:"trending_products_count"`
	Season      string    `json:"season"`
	GeneratedAt time.Time `json:"timestamp"`
}
