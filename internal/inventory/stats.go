package inventory

import "github.com/shopspring/decimal"

// IsLowStock reports whether the product quantity is under LowStockThreshold.
func IsLowStock(p Product) bool {
	return p.Quantity < LowStockThreshold
}

// ComputeStats aggregates count, low stock count and stock value of items.
// TotalProducts is the batch size; dashboard callers override it with the
// server-reported collection total.
func ComputeStats(items []Product) Stats {
	total := decimal.Zero
	stats := Stats{TotalProducts: len(items)}
	for _, p := range items {
		if IsLowStock(p) {
			stats.LowStockCount++
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	stats.TotalValue = total
	return stats
}
