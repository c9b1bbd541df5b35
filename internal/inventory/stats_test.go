package inventory

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	items := []Product{
		product(1, "A", "A-1", 2, "10"),
		product(2, "B", "B-1", 10, "1.5"),
		product(3, "C", "C-1", 0, "99"),
	}
	stats := ComputeStats(items)
	assert.Equal(t, 3, stats.TotalProducts)
	assert.Equal(t, 2, stats.LowStockCount)
	assert.True(t, decimal.RequireFromString("35").Equal(stats.TotalValue), stats.TotalValue.String())
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)
	assert.Equal(t, 0, stats.TotalProducts)
	assert.Equal(t, 0, stats.LowStockCount)
	assert.True(t, stats.TotalValue.IsZero())
}

func TestLowStockBoundary(t *testing.T) {
	assert.True(t, IsLowStock(Product{Quantity: 9}))
	assert.False(t, IsLowStock(Product{Quantity: 10}))
	assert.True(t, IsLowStock(Product{Quantity: 0}))
}

func TestComputeStatsKeepsCents(t *testing.T) {
	items := []Product{product(1, "A", "A", 3, "0.1"), product(2, "B", "B", 3, "0.2")}
	assert.Equal(t, "0.9", ComputeStats(items).TotalValue.String())
}

func TestComputeStatsExactValue(t *testing.T) {
	items := []Product{
		{Price: decimal.NewFromInt(10), Quantity: 2},
		{Price: decimal.NewFromInt(5), Quantity: 3},
	}
	assert.True(t, decimal.NewFromInt(35).Equal(ComputeStats(items).TotalValue))
}

func TestComputeStatsLowStockProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		n := rng.Intn(40)
		items := make([]Product, n)
		want := 0
		for i := range items {
			items[i].Quantity = rng.Intn(30)
			if items[i].Quantity < LowStockThreshold {
				want++
			}
		}
		assert.Equal(t, want, ComputeStats(items).LowStockCount)
	}
}
