package recommend

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/andresuchdata/atim/backend-go/internal/domain"
	"github.com/andresuchdata/atim/backend-go/internal/inventory"
)

// PromptTrendLimit caps how many ranked trends go into the prompt.
const PromptTrendLimit = 10

// SystemInstruction frames the model as an inventory consultant.
const SystemInstruction = "You are an expert inventory management consultant for a shoe retailer. " +
	"You analyze market trends, inventory levels, and business context to provide " +
	"actionable recommendations for inventory management, reordering, warehousing, " +
	"and risk assessment. Your recommendations should be clear, specific, and " +
	"prioritized by business impact."

// Request is the input of a recommendation run.
type Request struct {
	Trends  []domain.TrendResult
	Items   []domain.InventoryItem
	Summary domain.InventorySummary
	Season  string
	Events  []string
}

const taskSection = `## YOUR TASK
Provide comprehensive, actionable recommendations in the following format:

### 1. REORDER SUGGESTIONS
- Identify products that need immediate reordering based on trending status and current stock levels
- Specify exact reorder quantities and reasoning
- Consider lead times and seasonal factors

### 2. WAREHOUSING STRATEGY
- Recommend warehouse location adjustments for trending items
- Suggest prioritization of high-velocity items
- Identify items that should be moved to high-access zones

### 3. RISK ASSESSMENT
- Flag items at risk of overstocking (declining trends with high inventory)
- Identify items that may need markdowns or clearance promotions
- Highlight potential stockout risks

### 4. PRIORITY ACTIONS
- List top 3-5 immediate actions with specific details
- Include quantitative recommendations where possible (e.g., "Increase reorder by 40%")

Be specific, actionable, and prioritize by business impact. Use natural language that a retail manager can immediately act upon.
`

// BuildPrompt renders the user prompt for req.
func BuildPrompt(req Request) string {
	var b strings.Builder

	b.WriteString("Analyze the following data and provide actionable inventory management recommendations for a shoe retailer.\n\n")

	b.WriteString("## TRENDING PRODUCTS (from Google Trends Analysis)\n")
	trends := req.Trends
	if len(trends) > PromptTrendLimit {
		trends = trends[:PromptTrendLimit]
	}
	if len(trends) == 0 {
		b.WriteString("- No trend data available\n")
	}
	for _, t := range trends {
		fmt.Fprintf(&b, "- %s: Status=%s, Confidence=%.2f, Velocity=%.2f, Strength=%.2f\n",
			titleCase(t.Keyword), t.Status, t.Confidence, t.Velocity, t.Strength)
	}

	b.WriteString("\n## CURRENT INVENTORY STATUS\n")
	fmt.Fprintf(&b, "Total Items: %d\n", req.Summary.TotalItems)
	fmt.Fprintf(&b, "Low Stock Items: %d\n", req.Summary.LowStockItems)
	fmt.Fprintf(&b, "Total Inventory Value: %s\n", inventory.FormatCurrency(req.Summary.TotalInventoryValue))

	b.WriteString("\n### Detailed Inventory:\n")
	for _, it := range req.Items {
		fmt.Fprintf(&b, "- %s: Stock=%d, Reorder Point=%d, Reorder Qty=%d, Lead Time=%d days, Location=%s\n",
			it.ProductName, it.CurrentStock, it.ReorderPoint, it.ReorderQuantity, it.LeadTimeDays, it.WarehouseLocation)
	}

	events := "None specified"
	if len(req.Events) > 0 {
		events = strings.Join(req.Events, ", ")
	}
	b.WriteString("\n## CONTEXTUAL FACTORS\n")
	fmt.Fprintf(&b, "- Current Season: %s\n", req.Season)
	fmt.Fprintf(&b, "- Upcoming Holidays/Events: %s\n", events)

	b.WriteString("\n")
	b.WriteString(taskSection)

	return b.String()
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
