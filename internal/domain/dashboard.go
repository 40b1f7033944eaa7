package domain

// CategoryBreakdown is the rollup for one category
type CategoryBreakdown struct {
	Category         string  `json:"category"`
	Count            int     `json:"count"`
	TotalStock       int     `json:"total_stock"`
	TotalValue       float64 `json:"total_value"`
	RevenuePotential float64 `json:"revenue_potential"`
}

// WarehouseBreakdown is the rollup for one warehouse zone
type WarehouseBreakdown struct {
	Warehouse        string  `json:"warehouse"`
	Count            int     `json:"count"`
	TotalStock       int     `json:"total_stock"`
	TotalValue       float64 `json:"total_value"`
	RevenuePotential float64 `json:"revenue_potential"`
}

// StockHealth counts items per health bucket
type StockHealth struct {
	Critical    int `json:"critical"`
	Warning     int `json:"warning"`
	Healthy     int `json:"healthy"`
	Overstocked int `json:"overstocked"`
}

// CategoryStockLevel is one bar of the stock-vs-reorder chart
type CategoryStockLevel struct {
	Category        string `json:"category"`
	CurrentStock    int    `json:"current_stock"`
	AvgReorderPoint int    `json:"reorder_point"`
}

// FinancialMetrics holds inventory-wide money totals
type FinancialMetrics struct {
	TotalInventoryValue   float64 `json:"total_inventory_value"`
	TotalRevenuePotential float64 `json:"total_revenue_potential"`
	TotalCost             float64 `json:"total_cost"`
	PotentialProfit       float64 `json:"potential_profit"`
	AverageMargin         float64 `json:"average_margin"`
}

// TrendStatusCount is the number of trend results with a given status
type TrendStatusCount struct {
	Status TrendStatus `json:"status"`
	Count  int         `json:"count"`
}

// ProductValue is an entry of the top-N product lists
type ProductValue struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Stock    int     `json:"stock"`
	Category string  `json:"category"`
}

// AnalyticsSnapshot aggregates inventory and trend data for reporting
type AnalyticsSnapshot struct {
	CategoryBreakdown       []CategoryBreakdown  `json:"category_breakdown"`
	WarehouseBreakdown      []WarehouseBreakdown `json:"warehouse_breakdown"`
	StockHealth             StockHealth          `json:"stock_health"`
	StockByCategory         []CategoryStockLevel `json:"stock_by_category"`
	FinancialMetrics        FinancialMetrics     `json:"financial_metrics"`
	TrendStatusDistribution []TrendStatusCount   `json:"trend_status_distribution"`
	TopProductsByValue      []ProductValue       `json:"top_products_by_value"`
	TopProductsByRevenue    []ProductValue       `json:"top_products_by_revenue"`
}

// AnalysisResult is everything one analysis run hands to its callers
type AnalysisResult struct {
	RunID            string            `json:"run_id"`
	InventorySummary InventorySummary  `json:"inventory_summary"`
	TrendingProducts []TrendResult     `json:"trending_products"`
	SyntheticTrends  bool              `json:"synthetic_trends"`
	Recommendation   Recommendation    `json:"recommendation"`
	LowStockCount    int               `json:"low_stock_count"`
	LowStockItems    []InventoryItem   `json:"low_stock_items"`
	Analytics        AnalyticsSnapshot `json:"analytics"`
	ReportURL        string            `json:"report_url"`
}
