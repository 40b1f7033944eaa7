package inventory

import (
	"strings"

	"github.com/andresuchdata/atim/backend-go/internal/domain"
)

var athleticKeywords = []string{"running", "runner", "athletic", "training"}

type categoryRule struct {
	keywords []string
	resolve  func(name string) string
}

// categoryRules is evaluated in order; the first rule whose keywords match wins.
var categoryRules = []categoryRule{
	{keywords: []string{"waterproof", "hiking"}, resolve: constant(domain.CategoryOutdoor)},
	{keywords: []string{"boot"}, resolve: func(name string) string {
		if strings.Contains(name, "winter") {
			return domain.CategoryOutdoor
		}
		return domain.CategoryFallWinter
	}},
	{keywords: []string{"sandal", "espadrille"}, resolve: constant(domain.CategorySummer)},
	{keywords: athleticKeywords, resolve: constant(domain.CategoryAthletic)},
	{keywords: []string{"dress", "formal", "loafer"}, resolve: constant(domain.CategoryFormal)},
	{keywords: []string{"chunky", "casual", "canvas", "slip"}, resolve: constant(domain.CategoryCasual)},
	{keywords: []string{"sneaker"}, resolve: func(name string) string {
		if containsAny(name, athleticKeywords) {
			return domain.CategoryAthletic
		}
		return domain.CategoryCasual
	}},
}

// InferCategory maps a free-text product name to a category.
func InferCategory(productName string) string {
	name := strings.ToLower(productName)
	for _, rule := range categoryRules {
		if containsAny(name, rule.keywords) {
			return rule.resolve(name)
		}
	}
	return domain.CategoryGeneral
}

func constant(category string) func(string) string {
	return func(string) string { return category }
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
