package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// LowStockThreshold is the quantity below which a product counts as low stock.
	LowStockThreshold = 10
	// ListPageSize is the number of products fetched per list page.
	ListPageSize = 10
	// DashboardRecentSize is the number of recent products shown on the dashboard.
	DashboardRecentSize = 5
)

// Product is a product record as returned by the product API.
type Product struct {
	ID          int64
	Name        string
	Type        string
	SKU         string
	ImageURL    string
	Description string
	Quantity    int
	Price       decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Draft is an unpersisted product pending creation.
type Draft struct {
	Name        string
	Type        string
	SKU         string
	ImageURL    string
	Description string
	Quantity    int
	Price       decimal.Decimal
}

// Page is one page of the remote product collection.
type Page struct {
	Items  []Product
	Total  int
	Number int
	Size   int
}

// Stats summarises a product batch for the dashboard.
type Stats struct {
	TotalProducts int             `json:"total_products"`
	LowStockCount int             `json:"low_stock_count"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

// FilterMode selects which rows of the fetched page are visible.
type FilterMode string

const (
	// FilterAll shows every fetched row.
	FilterAll FilterMode = "all"
	// FilterLowStock shows only rows below LowStockThreshold.
	FilterLowStock FilterMode = "low-stock"
)

// ParseFilterMode maps a query value to a FilterMode. Unknown values mean FilterAll.
func ParseFilterMode(raw string) FilterMode {
	if FilterMode(raw) == FilterLowStock {
		return FilterLowStock
	}
	return FilterAll
}

// ListStatus tracks the fetch lifecycle of a ListView.
type ListStatus string

const (
	StatusIdle    ListStatus = "idle"
	StatusLoading ListStatus = "loading"
	StatusError   ListStatus = "error"
)
