package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetrics(reg)

	m.IncSaleRecorded()
	m.IncSaleRecorded()
	m.IncStockAdjustment("add")
	m.IncStockAdjustment("")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.salesRecorded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stockAdjustments.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stockAdjustments.WithLabelValues("unknown")))
}

func TestCronJobMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.ObserveDuration("backup", 250*time.Millisecond)
	m.IncSuccess("backup")
	m.IncFailure("low_stock_alert")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.success.WithLabelValues("backup")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failure.WithLabelValues("low_stock_alert")))

	count, err := testutil.GatherAndCount(reg, "job_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilCollectorsAreSafe(t *testing.T) {
	var store *StoreMetrics
	var jobs *CronJobMetrics

	assert.NotPanics(t, func() {
		store.IncSaleRecorded()
		store.IncStockAdjustment("set")
		jobs.IncSuccess("backup")
		jobs.ObserveDuration("backup", time.Second)
		NewStoreMetrics(nil).IncSaleRecorded()
	})
}
