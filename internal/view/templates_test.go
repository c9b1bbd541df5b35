package view

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/inventory"
	"github.com/stockdesk/stockdesk/internal/shared"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestMoney(t *testing.T) {
	cases := map[string]string{
		"0":        "$0.00",
		"2.5":      "$2.50",
		"1234.567": "$1,234.57",
		"-1000":    "-$1,000.00",
		"-0.5":     "-$0.50",
		"1000000":  "$1,000,000.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, Money(decimal.RequireFromString(in)), in)
	}
}

func TestLoginPageCarriesCSRFAndFlashes(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = engine.Execute(&buf, "pages/login.html", TemplateData{
		Title:     "Log in",
		CSRFToken: "tok<en>",
		Flashes:   []shared.FlashMessage{{Kind: "error", Message: shared.MsgSessionExpired}},
		Data:      map[string]any{},
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, `name="csrf_token" value="tok&lt;en&gt;"`)
	assert.Contains(t, out, "toast-error")
	assert.Contains(t, out, "Your session has expired")
	assert.NotContains(t, out, "Log out")
}

type dashboardFixture struct {
	Dashboard  inventory.Dashboard
	LoadFailed bool
	LowStockAt int
}

func TestDashboardHighlightsLowStockAndSnapshot(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	recent := []inventory.Product{
		{ID: 1, Name: "Bolt", SKU: "B-1", Quantity: 3, Price: decimal.RequireFromString("0.25")},
		{ID: 2, Name: "Nut", SKU: "N-1", Quantity: 40, Price: decimal.RequireFromString("0.10")},
	}
	data := dashboardFixture{
		Dashboard: inventory.Dashboard{
			Stats:  inventory.Stats{TotalProducts: 1200, LowStockCount: 1, TotalValue: decimal.RequireFromString("4.75")},
			Recent: recent,
			Snapshot: &inventory.Snapshot{
				Stats:    inventory.Stats{TotalProducts: 1200, LowStockCount: 17, TotalValue: decimal.RequireFromString("15300")},
				Products: 1200,
				TakenAt:  time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC),
			},
		},
		LowStockAt: inventory.LowStockThreshold,
	}

	var buf bytes.Buffer
	require.NoError(t, engine.Execute(&buf, "pages/dashboard.html", TemplateData{Title: "Dashboard", Username: "alice", CurrentPath: "/", Data: data}))
	out := buf.String()
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "$4.75")
	assert.Contains(t, out, "$15,300.00")
	assert.Contains(t, out, "04 May 2026 09:30")
	assert.Contains(t, out, `class="low-stock"`)
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte(`class="low-stock"`)))
	assert.Contains(t, out, "Log out")
}

func TestDashboardLoadFailure(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, engine.Execute(&buf, "pages/dashboard.html", TemplateData{Data: dashboardFixture{LoadFailed: true}}))
	assert.Contains(t, buf.String(), "Failed to load dashboard data")
	assert.NotContains(t, buf.String(), "Recent Products")
}
