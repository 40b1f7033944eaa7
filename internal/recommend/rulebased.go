package recommend

import (
	"fmt"
	"math"
	"strings"

	"github.com/andresuchdata/atim/backend-go/internal/domain"
	"github.com/andresuchdata/atim/backend-go/internal/inventory"
)

// RuleBasedTrendLimit is how many top trends are cross-referenced with inventory.
const RuleBasedTrendLimit = 5

const markdownStockRatio = 1.5

type increaseBand struct {
	low, high float64
}

var trendIncrease = map[domain.TrendStatus]increaseBand{
	domain.TrendRising:  {low: 0.30, high: 0.50},
	domain.TrendPeaking: {low: 0.50, high: 0.75},
}

// PriorityActions close every rule-based recommendation.
var PriorityActions = []string{
	"Place purchase orders for every item at or below its reorder point, longest lead time first.",
	"Move rising and peaking items into the most accessible warehouse zone.",
	"Schedule promotions for declining items carrying excess stock.",
	"Review reorder points against the upcoming season before the next purchasing cycle.",
	"Re-run the trend analysis weekly to catch demand shifts early.",
}

// RuleBased produces deterministic recommendations without a model.
func RuleBased(req Request) string {
	var b strings.Builder

	events := "none specified"
	if len(req.Events) > 0 {
		events = strings.Join(req.Events, ", ")
	}
	fmt.Fprintf(&b, "Rule-based recommendations for %s (upcoming: %s).\n\n", seasonOrDefault(req.Season), events)

	b.WriteString("1. REORDER SUGGESTIONS\n")
	low := inventory.LowStock(req.Items)
	if len(low) == 0 {
		b.WriteString("  • No items are at or below their reorder point.\n")
	}
	for _, it := range low {
		fmt.Fprintf(&b, "  • %s: stock %d is at or below reorder point %d. Reorder %d units now (lead time %d days, %s).\n",
			it.ProductName, it.CurrentStock, it.ReorderPoint, it.ReorderQuantity, it.LeadTimeDays, it.WarehouseLocation)
	}

	b.WriteString("\n2. TREND-BASED ADJUSTMENTS\n")
	top := req.Trends
	if len(top) > RuleBasedTrendLimit {
		top = top[:RuleBasedTrendLimit]
	}
	adjusted := 0
	for _, t := range top {
		band, ok := trendIncrease[t.Status]
		if !ok {
			continue
		}
		for _, it := range inventory.MatchKeyword(req.Items, t.Keyword) {
			adjusted++
			fmt.Fprintf(&b, "  • %s (%q is %s): increase reorder quantity by %.0f-%.0f%%, to %d-%d units.\n",
				it.ProductName, t.Keyword, t.Status, band.low*100, band.high*100,
				scaleQty(it.ReorderQuantity, band.low), scaleQty(it.ReorderQuantity, band.high))
		}
	}
	if adjusted == 0 {
		b.WriteString("  • No rising or peaking trends match current inventory.\n")
	}

	b.WriteString("\n3. RISK ASSESSMENT\n")
	candidates := 0
	for _, t := range req.Trends {
		if t.Status != domain.TrendDeclining {
			continue
		}
		for _, it := range inventory.MatchKeyword(req.Items, t.Keyword) {
			if float64(it.CurrentStock) <= markdownStockRatio*float64(it.ReorderPoint) {
				continue
			}
			candidates++
			fmt.Fprintf(&b, "  • %s: %q is declining while stock %d exceeds 1.5x reorder point %d. Consider a markdown or clearance promotion.\n",
				it.ProductName, t.Keyword, it.CurrentStock, it.ReorderPoint)
		}
	}
	if candidates == 0 {
		b.WriteString("  • No declining trends with excess stock detected.\n")
	}

	b.WriteString("\n4. PRIORITY ACTIONS\n")
	for i, action := range PriorityActions {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, action)
	}

	return strings.TrimRight(b.String(), "\n")
}

func scaleQty(qty int, pct float64) int {
	return int(math.Round(float64(qty) * (1 + pct)))
}

func seasonOrDefault(season string) string {
	if season == "" {
		return "the current season"
	}
	return season
}
