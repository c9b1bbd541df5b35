package perf

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/stockdesk/stockdesk/internal/gateway"
	"github.com/stockdesk/stockdesk/internal/inventory"
	jobmetrics "github.com/stockdesk/stockdesk/internal/jobs"
)

// productAPI serves n products over the paged list endpoint.
func productAPI(t testing.TB, n int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		start := (page - 1) * size
		products := make([]map[string]any, 0, size)
		for i := start; i < start+size && i < n; i++ {
			products = append(products, map[string]any{
				"id": i + 1, "name": fmt.Sprintf("Item %d", i+1), "type": "part",
				"sku": fmt.Sprintf("SKU-%05d", i+1), "quantity": i % 25, "price": 1.25,
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"products": products, "total": n, "page": page, "per_page": size})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSnapshotCollectionThroughputAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	jobs := jobmetrics.NewMetrics(reg)
	client := gateway.NewClient(productAPI(t, 2500).URL, 5*time.Second, gateway.WithMetrics(gateway.NewMetrics(reg)))
	products := client.Products("bench-token")

	for i := 0; i < 5; i++ {
		tracker := jobs.Track("inventory:snapshot")
		snap, err := inventory.CollectSnapshot(context.Background(), products, time.Now())
		if err := tracker.End(err); err != nil {
			t.Fatalf("collect snapshot: %v", err)
		}
		if snap.Products != 2500 {
			t.Fatalf("expected 2500 products, got %d", snap.Products)
		}
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	success := metricValue(t, families, "stockdesk_jobs_total", map[string]string{"job": "inventory:snapshot", "status": "success"})
	if success != 5 {
		t.Fatalf("expected 5 successful runs, got %f", success)
	}
	// 2500 products at 100 per page is 25 list calls per run.
	lists := metricValue(t, families, "stockdesk_gateway_requests_total", map[string]string{"op": "list", "outcome": "ok"})
	if lists != 125 {
		t.Fatalf("expected 125 list calls, got %f", lists)
	}

	mean := histogramMean(t, families, "stockdesk_job_duration_seconds", map[string]string{"job": "inventory:snapshot"})
	if mean > 2.0 {
		t.Fatalf("snapshot duration above budget: %f", mean)
	}
}

func metricValue(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				if fam.GetType() == dto.MetricType_COUNTER {
					return metric.GetCounter().GetValue()
				}
				if fam.GetType() == dto.MetricType_GAUGE {
					return metric.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

func histogramMean(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				hist := metric.GetHistogram()
				if hist == nil || hist.GetSampleCount() == 0 {
					t.Fatalf("histogram %s missing samples", name)
				}
				return hist.GetSampleSum() / float64(hist.GetSampleCount())
			}
		}
	}
	t.Fatalf("histogram %s with labels %v not found", name, labels)
	return 0
}

func hasLabels(metric *dto.Metric, labels map[string]string) bool {
	for _, lp := range metric.GetLabel() {
		if val, ok := labels[lp.GetName()]; ok {
			if lp.GetValue() != val {
				return false
			}
		}
	}
	for key := range labels {
		found := false
		for _, lp := range metric.GetLabel() {
			if lp.GetName() == key {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
