package analytics

import (
	"sort"

	"github.com/andresuchdata/atim/backend-go/internal/domain"
)

// TopN is the length of the top product lists.
const TopN = 10

type rollup struct {
	count            int
	totalStock       int
	totalValue       float64
	revenuePotential float64
	reorderPointSum  int
}

func (r *rollup) add(item domain.InventoryItem) {
	r.count++
	r.totalStock += item.CurrentStock
	r.totalValue += item.StockValue()
	r.revenuePotential += item.RevenuePotential()
	r.reorderPointSum += item.ReorderPoint
}

// rollupSet is a keyed rollup with explicit get-or-create.
type rollupSet map[string]*rollup

func (s rollupSet) get(key string) *rollup {
	r, ok := s[key]
	if !ok {
		r = &rollup{}
		s[key] = r
	}
	return r
}

func (s rollupSet) sortedKeys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Aggregate computes a fresh snapshot from items and trends. Neither input
// is modified.
func Aggregate(items []domain.InventoryItem, trends []domain.TrendResult) domain.AnalyticsSnapshot {
	categories := rollupSet{}
	warehouses := rollupSet{}

	var health domain.StockHealth
	var fin domain.FinancialMetrics

	for _, item := range items {
		categories.get(item.Category).add(item)
		warehouses.get(item.WarehouseLocation).add(item)

		switch HealthBucket(item) {
		case domain.StockCritical:
			health.Critical++
		case domain.StockWarning:
			health.Warning++
		case domain.StockHealthy:
			health.Healthy++
		default:
			health.Overstocked++
		}

		fin.TotalInventoryValue += item.StockValue()
		fin.TotalRevenuePotential += item.RevenuePotential()
	}

	fin.TotalCost = fin.TotalInventoryValue
	fin.PotentialProfit = fin.TotalRevenuePotential - fin.TotalCost
	if fin.TotalRevenuePotential > 0 {
		fin.AverageMargin = fin.PotentialProfit / fin.TotalRevenuePotential * 100
	}

	snapshot := domain.AnalyticsSnapshot{
		CategoryBreakdown:       make([]domain.CategoryBreakdown, 0, len(categories)),
		WarehouseBreakdown:      make([]domain.WarehouseBreakdown, 0, len(warehouses)),
		StockHealth:             health,
		StockByCategory:         make([]domain.CategoryStockLevel, 0, len(categories)),
		FinancialMetrics:        fin,
		TrendStatusDistribution: StatusDistribution(trends),
		TopProductsByValue:      topProducts(items, domain.InventoryItem.StockValue),
		TopProductsByRevenue:    topProducts(items, domain.InventoryItem.RevenuePotential),
	}

	for _, key := range categories.sortedKeys() {
		r := categories[key]
		snapshot.CategoryBreakdown = append(snapshot.CategoryBreakdown, domain.CategoryBreakdown{
			Category:         key,
			Count:            r.count,
			TotalStock:       r.totalStock,
			TotalValue:       r.totalValue,
			RevenuePotential: r.revenuePotential,
		})
		snapshot.StockByCategory = append(snapshot.StockByCategory, domain.CategoryStockLevel{
			Category:        key,
			CurrentStock:    r.totalStock,
			AvgReorderPoint: r.reorderPointSum / r.count,
		})
	}

	for _, key := range warehouses.sortedKeys() {
		r := warehouses[key]
		snapshot.WarehouseBreakdown = append(snapshot.WarehouseBreakdown, domain.WarehouseBreakdown{
			Warehouse:        key,
			Count:            r.count,
			TotalStock:       r.totalStock,
			TotalValue:       r.totalValue,
			RevenuePotential: r.revenuePotential,
		})
	}

	return snapshot
}

// HealthBucket classifies an item by its stock relative to the reorder point.
// Buckets are checked critical first.
func HealthBucket(item domain.InventoryItem) string {
	stock := float64(item.CurrentStock)
	rp := float64(item.ReorderPoint)

	switch {
	case stock <= rp*0.5:
		return domain.StockCritical
	case stock <= rp:
		return domain.StockWarning
	case stock <= rp*2:
		return domain.StockHealthy
	default:
		return domain.StockOverstocked
	}
}

// StatusDistribution counts trends per status. Every known status is listed,
// in display order, even with a zero count.
func StatusDistribution(trends []domain.TrendResult) []domain.TrendStatusCount {
	counts := make(map[domain.TrendStatus]int, len(domain.TrendStatuses))
	for _, s := range domain.TrendStatuses {
		counts[s] = 0
	}

	var unknown []domain.TrendStatus
	for _, tr := range trends {
		if _, known := counts[tr.Status]; !known {
			unknown = append(unknown, tr.Status)
		}
		counts[tr.Status]++
	}

	out := make([]domain.TrendStatusCount, 0, len(counts))
	for _, s := range domain.TrendStatuses {
		out = append(out, domain.TrendStatusCount{Status: s, Count: counts[s]})
	}
	seen := map[domain.TrendStatus]bool{}
	for _, s := range unknown {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, domain.TrendStatusCount{Status: s, Count: counts[s]})
	}
	return out
}

func topProducts(items []domain.InventoryItem, amount func(domain.InventoryItem) float64) []domain.ProductValue {
	ranked := make([]domain.ProductValue, 0, len(items))
	for _, item := range items {
		ranked = append(ranked, domain.ProductValue{
			Name:     item.ProductName,
			Amount:   amount(item),
			Stock:    item.CurrentStock,
			Category: item.Category,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Amount > ranked[j].Amount
	})

	if len(ranked) > TopN {
		ranked = ranked[:TopN]
	}
	return ranked
}
