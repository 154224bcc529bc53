package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCartMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCartMetrics(reg)

	metrics.ObserveSync("upsert", nil)
	metrics.ObserveSync("upsert", errors.New("boom"))
	metrics.IncRollback()
	metrics.ObservePricing(nil)
	metrics.ObserveLoad(errors.New("down"))
	metrics.IncStaleDiscarded()
	metrics.ObserveDuration("pricing", 250*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "cart_sync_total", map[string]string{"op": "upsert", "result": "error"}); err != nil {
		t.Fatalf("fetch sync errors: %v", err)
	} else if got != 1 {
		t.Fatalf("expected sync errors=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "cart_sync_total", map[string]string{"op": "upsert", "result": "ok"}); err != nil {
		t.Fatalf("fetch sync ok: %v", err)
	} else if got != 1 {
		t.Fatalf("expected sync ok=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "cart_load_total", map[string]string{"result": "error"}); err != nil || got != 1 {
		t.Fatalf("expected one failed load, got %f (%v)", got, err)
	}
	if _, err := fetchCounterValue(mfs, "cart_sync_total", map[string]string{"op": "load"}); err == nil {
		t.Fatalf("loads must not be counted as syncs")
	}
	if got, err := fetchCounterValue(mfs, "cart_sync_rollbacks_total", nil); err != nil || got != 1 {
		t.Fatalf("expected one rollback, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "cart_pricing_stale_discarded_total", nil); err != nil || got != 1 {
		t.Fatalf("expected one stale discard, got %f (%v)", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "cart_remote_duration_seconds", map[string]string{"op": "pricing"}); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var cart *CartMetrics
	cart.ObserveSync("upsert", nil)
	cart.IncRollback()
	cart.ObservePricing(nil)
	cart.ObserveLoad(nil)
	cart.IncStaleDiscarded()
	cart.ObserveDuration("x", time.Second)

	NewCartMetrics(nil).IncRollback()
	NewHTTPMetrics(nil).Observe("/", http.MethodGet, 200, time.Millisecond)
}

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewHTTPMetrics(reg)
	metrics.Observe("/api/cart/", http.MethodPost, http.StatusOK, 10*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	got, err := fetchCounterValue(mfs, "http_requests_total", map[string]string{"route": "/api/cart/", "method": "POST", "status": "200"})
	if err != nil {
		t.Fatalf("fetch requests: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected one request, got %f", got)
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	for name, value := range want {
		found := false
		for _, pair := range pairs {
			if pair.GetName() == name && pair.GetValue() == value {
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
