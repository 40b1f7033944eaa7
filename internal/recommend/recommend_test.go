package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/atim/backend-go/internal/domain"
	"github.com/andresuchdata/atim/backend-go/internal/inventory"
	"github.com/stretchr/testify/assert"
)

type scriptedLLM struct {
	replies []reply
	calls   int
	system  string
	prompt  string
}

type reply struct {
	text string
	err  error
}

func (s *scriptedLLM) Generate(_ context.Context, system, prompt string) (string, error) {
	s.system, s.prompt = system, prompt
	i := s.calls
	if i >= len(s.replies) {
		i = len(s.replies) - 1
	}
	s.calls++
	return s.replies[i].text, s.replies[i].err
}

func rateLimited(after time.Duration) reply {
	return reply{err: &domain.RateLimitError{Provider: "gemini", RetryAfter: after}}
}

func sampleRequest() Request {
	items := []domain.InventoryItem{
		{ProductName: "Ankle Boots", Category: domain.CategoryFallWinter, CurrentStock: 40, ReorderPoint: 50, ReorderQuantity: 100, LeadTimeDays: 16, WarehouseLocation: "Zone B", CostPerUnit: 60.5, SellingPrice: 121},
		{ProductName: "Running Sneakers", Category: domain.CategoryAthletic, CurrentStock: 250, ReorderPoint: 162, ReorderQuantity: 375, LeadTimeDays: 12, WarehouseLocation: "Zone A", CostPerUnit: 40.5, SellingPrice: 81},
	}
	return Request{
		Trends: []domain.TrendResult{
			{Keyword: "ankle boots", Status: domain.TrendRising, Confidence: 19.5, Velocity: 13.333, Strength: 28.75},
			{Keyword: "running sneakers", Status: domain.TrendDeclining, Confidence: 15, Velocity: -8, Strength: 25.5},
		},
		Items:   items,
		Summary: inventory.Summarize(items),
		Season:  "Late Summer",
		Events:  []string{"Labor Day", "Back to School"},
	}
}

func newTestRecommender(llm LLM, slept *[]time.Duration) *Recommender {
	r := NewRecommender(llm, WithRetry(3, time.Second), WithClock(func() time.Time {
		return time.Date(2025, 8, 20, 9, 0, 0, 0, time.UTC)
	}))
	r.sleep = func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	return r
}

func TestRecommendUsesLLM(t *testing.T) {
	var slept []time.Duration
	llm := &scriptedLLM{replies: []reply{{text: "### 1. REORDER\n**Ankle Boots**: reorder 100"}}}

	rec := newTestRecommender(llm, &slept).Recommend(context.Background(), sampleRequest())

	assert.Equal(t, domain.RecommendationSourceLLM, rec.Source)
	assert.Equal(t, "1. REORDER\nAnkle Boots: reorder 100", rec.Text)
	assert.Equal(t, 2, rec.TrendCount)
	assert.Equal(t, "Late Summer", rec.Season)
	assert.Equal(t, 2025, rec.GeneratedAt.Year())
	assert.Equal(t, SystemInstruction, llm.system)
	assert.Contains(t, llm.prompt, "Ankle Boots")
	assert.Empty(t, slept)
}

func TestRecommendRetriesWithDoublingDelay(t *testing.T) {
	var slept []time.Duration
	llm := &scriptedLLM{replies: []reply{rateLimited(0), rateLimited(0), {text: "ok"}}}

	rec := newTestRecommender(llm, &slept).Recommend(context.Background(), sampleRequest())

	assert.Equal(t, domain.RecommendationSourceLLM, rec.Source)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, slept)
}

func TestRecommendHonorsRetryAfter(t *testing.T) {
	var slept []time.Duration
	llm := &scriptedLLM{replies: []reply{rateLimited(17 * time.Second), {text: "ok"}}}

	newTestRecommender(llm, &slept).Recommend(context.Background(), sampleRequest())
	assert.Equal(t, []time.Duration{17 * time.Second}, slept)
}

func TestRecommendFallsBackAfterExhaustingRetries(t *testing.T) {
	var slept []time.Duration
	llm := &scriptedLLM{replies: []reply{rateLimited(0), rateLimited(0), rateLimited(0), {text: "too late"}}}

	rec := newTestRecommender(llm, &slept).Recommend(context.Background(), sampleRequest())

	assert.Equal(t, domain.RecommendationSourceRuleBased, rec.Source)
	assert.Equal(t, 3, llm.calls)
	assert.Len(t, slept, 2)
}

func TestRecommendFallsBackOnProviderError(t *testing.T) {
	var slept []time.Duration
	llm := &scriptedLLM{replies: []reply{{err: errors.New("bad api key")}, {text: "never"}}}

	rec := newTestRecommender(llm, &slept).Recommend(context.Background(), sampleRequest())

	assert.Equal(t, domain.RecommendationSourceRuleBased, rec.Source)
	assert.Equal(t, 1, llm.calls)
	assert.Empty(t, slept)
}

func TestRecommendFallsBackOnEmptyOutput(t *testing.T) {
	var slept []time.Duration
	llm := &scriptedLLM{replies: []reply{{text: "  \n\n "}}}

	rec := newTestRecommender(llm, &slept).Recommend(context.Background(), sampleRequest())
	assert.Equal(t, domain.RecommendationSourceRuleBased, rec.Source)
}

func TestRecommendWithoutLLM(t *testing.T) {
	rec := NewRecommender(nil).Recommend(context.Background(), sampleRequest())
	assert.Equal(t, domain.RecommendationSourceRuleBased, rec.Source)
	assert.NotEmpty(t, rec.Text)
}

func TestRuleBased(t *testing.T) {
	text := RuleBased(sampleRequest())

	assert.Contains(t, text, "Late Summer")
	assert.Contains(t, text, "Ankle Boots: stock 40 is at or below reorder point 50. Reorder 100 units now")
	assert.Contains(t, text, `Ankle Boots ("ankle boots" is Rising): increase reorder quantity by 30-50%, to 130-150 units.`)
	assert.Contains(t, text, `Running Sneakers: "running sneakers" is declining while stock 250 exceeds 1.5x reorder point 162.`)
	for _, action := range PriorityActions {
		assert.Contains(t, text, action)
	}
}

func TestRuleBasedPeakingBand(t *testing.T) {
	req := sampleRequest()
	req.Trends = []domain.TrendResult{{Keyword: "sneakers", Status: domain.TrendPeaking}}

	text := RuleBased(req)
	assert.Contains(t, text, "increase reorder quantity by 50-75%, to 563-656 units.")
	assert.Contains(t, text, "No declining trends with excess stock detected.")
}

func TestRuleBasedOnlyCrossReferencesTopFive(t *testing.T) {
	req := sampleRequest()
	req.Trends = nil
	for i := 0; i < 5; i++ {
		req.Trends = append(req.Trends, domain.TrendResult{Keyword: fmt.Sprintf("nothing-%d", i), Status: domain.TrendRising})
	}
	req.Trends = append(req.Trends, domain.TrendResult{Keyword: "ankle boots", Status: domain.TrendRising})

	text := RuleBased(req)
	assert.NotContains(t, text, "increase reorder quantity")
	assert.Contains(t, text, "No rising or peaking trends match current inventory.")
}

func TestBuildPrompt(t *testing.T) {
	req := sampleRequest()
	prompt := BuildPrompt(req)

	assert.Contains(t, prompt, "- Ankle Boots: Status=Rising, Confidence=19.50, Velocity=13.33, Strength=28.75")
	assert.Contains(t, prompt, "Total Items: 2")
	assert.Contains(t, prompt, "Low Stock Items: 1")
	assert.Contains(t, prompt, "Total Inventory Value: $12,545.00")
	assert.Contains(t, prompt, "- Running Sneakers: Stock=250, Reorder Point=162, Reorder Qty=375, Lead Time=12 days, Location=Zone A")
	assert.Contains(t, prompt, "- Current Season: Late Summer")
	assert.Contains(t, prompt, "- Upcoming Holidays/Events: Labor Day, Back to School")
	assert.Contains(t, prompt, "### 4. PRIORITY ACTIONS")

	req.Events = nil
	req.Trends = nil
	for i := 0; i < 12; i++ {
		req.Trends = append(req.Trends, domain.TrendResult{Keyword: fmt.Sprintf("kw %d", i), Status: domain.TrendStable})
	}
	prompt = BuildPrompt(req)
	assert.Equal(t, PromptTrendLimit, strings.Count(prompt, "Status="))
	assert.Contains(t, prompt, "Upcoming Holidays/Events: None specified")
}

func TestCleanOutput(t *testing.T) {
	raw := "```markdown\n### 1. REORDER SUGGESTIONS\n\n\n\n*   **Climbing Shoes:** Stock (40) is low. *Reorder immediately.*\n- Golf Shoes: trigger now\n```"

	assert.Equal(t,
		"1. REORDER SUGGESTIONS\n\n  • Climbing Shoes: Stock (40) is low. Reorder immediately.\n  • Golf Shoes: trigger now",
		CleanOutput(raw))
}
