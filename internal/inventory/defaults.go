package inventory

import (
	"math"

	"github.com/andresuchdata/atim/backend-go/internal/domain"
)

const (
	minReorderPoint    = 50
	reorderPointRatio  = 0.65
	minReorderQuantity = 100
	reorderQtyRatio    = 1.5

	highStockThreshold = 200
	lowStockThreshold  = 80
	highStockDiscount  = 0.9
	lowStockPremium    = 1.1
	priceMarkup        = 2.0

	fallbackBaseCost  = 40.00
	fallbackWarehouse = "Zone A"

	DefaultLeadTimeDays = 14
)

var leadTimeByCategory = map[string]int{
	domain.CategoryOutdoor:    21,
	domain.CategoryFallWinter: 16,
	domain.CategoryAthletic:   12,
	domain.CategorySummer:     10,
	domain.CategoryFormal:     14,
	domain.CategoryCasual:     10,
}

var warehouseByCategory = map[string]string{
	domain.CategoryOutdoor:    "Zone B",
	domain.CategoryFallWinter: "Zone B",
	domain.CategoryAthletic:   "Zone A",
	domain.CategorySummer:     "Zone C",
	domain.CategoryFormal:     "Zone B",
	domain.CategoryCasual:     "Zone A",
	domain.CategoryGeneral:    "Zone A",
}

var baseCostByCategory = map[string]float64{
	domain.CategoryOutdoor:    65.00,
	domain.CategoryFallWinter: 55.00,
	domain.CategoryAthletic:   45.00,
	domain.CategorySummer:     25.00,
	domain.CategoryFormal:     75.00,
	domain.CategoryCasual:     30.00,
	domain.CategoryGeneral:    fallbackBaseCost,
}

// Defaults holds the derived values for fields a CSV row may omit
type Defaults struct {
	ReorderPoint      int
	ReorderQuantity   int
	LeadTimeDays      int
	WarehouseLocation string
	CostPerUnit       float64
	SellingPrice      float64
}

// DefaultsCalculator derives missing inventory fields from stock and category
type DefaultsCalculator struct {
	defaultLeadTime int
}

// NewDefaultsCalculator creates a calculator; leadTime is used for General
// and unknown categories and falls back to DefaultLeadTimeDays when <= 0.
func NewDefaultsCalculator(defaultLeadTime int) *DefaultsCalculator {
	if defaultLeadTime <= 0 {
		defaultLeadTime = DefaultLeadTimeDays
	}
	return &DefaultsCalculator{defaultLeadTime: defaultLeadTime}
}

// Compute returns the defaults for a row with the given stock and category.
func (dc *DefaultsCalculator) Compute(currentStock int, category string) Defaults {
	d := Defaults{}

	// 1. Reorder point: 65% of stock, never below 50
	d.ReorderPoint = maxInt(minReorderPoint, int(math.Floor(float64(currentStock)*reorderPointRatio)))

	// 2. Reorder quantity: 1.5x stock, never below 100
	d.ReorderQuantity = maxInt(minReorderQuantity, int(math.Floor(float64(currentStock)*reorderQtyRatio)))

	// 3. Lead time per category
	d.LeadTimeDays = dc.defaultLeadTime
	if days, ok := leadTimeByCategory[category]; ok {
		d.LeadTimeDays = days
	}

	// 4. Warehouse zone per category
	d.WarehouseLocation = fallbackWarehouse
	if zone, ok := warehouseByCategory[category]; ok {
		d.WarehouseLocation = zone
	}

	// 5. Unit cost: category base scaled by stock level
	cost, ok := baseCostByCategory[category]
	if !ok {
		cost = fallbackBaseCost
	}
	switch {
	case currentStock > highStockThreshold:
		cost *= highStockDiscount
	case currentStock < lowStockThreshold:
		cost *= lowStockPremium
	}
	d.CostPerUnit = roundMoney(cost)

	// 6. Selling price at a fixed markup
	d.SellingPrice = roundMoney(d.CostPerUnit * priceMarkup)

	return d
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
