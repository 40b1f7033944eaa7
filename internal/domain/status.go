package domain

import "strings"

// TrendStatus classifies a trend by its velocity and strength.
type TrendStatus string

const (
	TrendRising    TrendStatus = "Rising"
	TrendDeclining TrendStatus = "Declining"
	TrendPeaking   TrendStatus = "Peaking"
	TrendStable    TrendStatus = "Stable"
)

// TrendStatuses lists every status in display order.
var TrendStatuses = []TrendStatus{TrendRising, TrendPeaking, TrendStable, TrendDeclining}

var trendStatusCodes = map[string]TrendStatus{
	"rising":    TrendRising,
	"declining": TrendDeclining,
	"peaking":   TrendPeaking,
	"stable":    TrendStable,
}

// ParseTrendStatus returns the status for a given label (case-insensitive).
func ParseTrendStatus(label string) (TrendStatus, bool) {
	status, ok := trendStatusCodes[strings.ToLower(strings.TrimSpace(label))]

	return status, ok
}

// Stock health buckets
const (
	StockCritical    = "critical"
	StockWarning     = "warning"
	StockHealthy     = "healthy"
	StockOverstocked = "overstocked"
)

// Summary item labels
const (
	ItemStatusLowStock = "Low Stock"
	ItemStatusAdequate = "Adequate"
)
