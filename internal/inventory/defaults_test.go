package inventory

import (
	"testing"

	"github.com/andresuchdata/atim/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestComputeDefaults(t *testing.T) {
	calc := NewDefaultsCalculator(14)

	t.Run("low stock boots", func(t *testing.T) {
		d := calc.Compute(40, domain.CategoryFallWinter)
		assert.Equal(t, 50, d.ReorderPoint)
		assert.Equal(t, 100, d.ReorderQuantity)
		assert.Equal(t, 16, d.LeadTimeDays)
		assert.Equal(t, "Zone B", d.WarehouseLocation)
		assert.Equal(t, 60.50, d.CostPerUnit)
		assert.Equal(t, 121.00, d.SellingPrice)
	})

	t.Run("high stock athletic", func(t *testing.T) {
		d := calc.Compute(250, domain.CategoryAthletic)
		assert.Equal(t, 162, d.ReorderPoint)
		assert.Equal(t, 375, d.ReorderQuantity)
		assert.Equal(t, 12, d.LeadTimeDays)
		assert.Equal(t, "Zone A", d.WarehouseLocation)
		assert.Equal(t, 40.50, d.CostPerUnit)
		assert.Equal(t, 81.00, d.SellingPrice)
	})

	t.Run("mid stock keeps base cost", func(t *testing.T) {
		d := calc.Compute(100, domain.CategoryFormal)
		assert.Equal(t, 65, d.ReorderPoint)
		assert.Equal(t, 150, d.ReorderQuantity)
		assert.Equal(t, 75.00, d.CostPerUnit)
		assert.Equal(t, 150.00, d.SellingPrice)
	})

	t.Run("summer goes to zone c", func(t *testing.T) {
		d := calc.Compute(120, domain.CategorySummer)
		assert.Equal(t, "Zone C", d.WarehouseLocation)
		assert.Equal(t, 10, d.LeadTimeDays)
	})

	t.Run("unknown category uses fallbacks", func(t *testing.T) {
		d := calc.Compute(100, "Slippers")
		assert.Equal(t, 14, d.LeadTimeDays)
		assert.Equal(t, "Zone A", d.WarehouseLocation)
		assert.Equal(t, 40.00, d.CostPerUnit)
	})

	t.Run("general uses configured lead time", func(t *testing.T) {
		d := NewDefaultsCalculator(9).Compute(100, domain.CategoryGeneral)
		assert.Equal(t, 9, d.LeadTimeDays)
		assert.Equal(t, "Zone A", d.WarehouseLocation)
	})

	t.Run("zero stock", func(t *testing.T) {
		d := calc.Compute(0, domain.CategoryCasual)
		assert.Equal(t, 50, d.ReorderPoint)
		assert.Equal(t, 100, d.ReorderQuantity)
		assert.Equal(t, 33.00, d.CostPerUnit)
	})
}

func TestComputeDefaultsIsIdempotent(t *testing.T) {
	calc := NewDefaultsCalculator(0)
	for _, stock := range []int{0, 79, 80, 200, 201, 1000} {
		for _, cat := range []string{domain.CategoryOutdoor, domain.CategoryCasual, "unknown"} {
			assert.Equal(t, calc.Compute(stock, cat), calc.Compute(stock, cat))
		}
	}
}

func TestNewDefaultsCalculatorFallsBackToFourteenDays(t *testing.T) {
	d := NewDefaultsCalculator(-1).Compute(100, domain.CategoryGeneral)
	assert.Equal(t, DefaultLeadTimeDays, d.LeadTimeDays)
}
