package inventory

import (
	"testing"

	"github.com/andresuchdata/atim/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestInferCategory(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Waterproof Trail Shoe", domain.CategoryOutdoor},
		{"Hiking Sandals", domain.CategoryOutdoor},
		{"Winter Boots", domain.CategoryOutdoor},
		{"Ankle Boots", domain.CategoryFallWinter},
		{"boot sandal hybrid", domain.CategoryFallWinter},
		{"Espadrille Wedge", domain.CategorySummer},
		{"Trail Runner", domain.CategoryAthletic},
		{"Training Flats", domain.CategoryAthletic},
		{"Running Sneakers", domain.CategoryAthletic},
		{"Penny Loafer", domain.CategoryFormal},
		{"Canvas Slip-On", domain.CategoryCasual},
		{"Chunky Dress Sneaker", domain.CategoryFormal},
		{"White Sneakers", domain.CategoryCasual},
		{"Ballet Flats", domain.CategoryGeneral},
		{"", domain.CategoryGeneral},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, InferCategory(tc.name))
		})
	}
}

func TestInferCategoryIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, InferCategory("ankle boots"), InferCategory("ANKLE BOOTS"))
}
