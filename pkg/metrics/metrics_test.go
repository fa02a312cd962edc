package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorefrontMetricsExportCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStorefront(reg)

	m.IncCartStorageFailure("save")
	m.IncCartStorageFailure("save")
	m.IncCheckoutTransition("shipping", false)
	m.ObserveOrderSubmission("created", 120*time.Millisecond)
	m.IncStatusEmail("shipped", true)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "cart_storage_failures_total", map[string]string{"op": "save"})
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	got, err = fetchCounterValue(mfs, "checkout_step_transitions_total", map[string]string{"from": "shipping", "result": "failure"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = fetchCounterValue(mfs, "orders_placed_total", map[string]string{"result": "created"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = fetchCounterValue(mfs, "order_status_emails_total", map[string]string{"status": "shipped", "result": "success"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	mf := findMetricFamily(mfs, "order_submission_duration_seconds")
	require.NotNil(t, mf)
	assert.Greater(t, mf.GetMetric()[0].GetHistogram().GetSampleSum(), 0.0)
}

func TestNilRegistererIsNoop(t *testing.T) {
	var m *Storefront
	assert.NotPanics(t, func() {
		m.IncCartStorageFailure("load")
		NewStorefront(nil).ObserveOrderSubmission("failed", time.Second)
		NewHTTP(nil).Observe("GET", "/", 200, time.Millisecond)
	})
}

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewHTTP(reg)
	h.Observe("POST", "/api/v1/cart/items", 201, 5*time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	got, err := fetchCounterValue(mfs, "http_requests_total", map[string]string{"route": "/api/v1/cart/items", "status": "201"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
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

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
