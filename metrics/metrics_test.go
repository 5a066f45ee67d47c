// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func TestNoopMetrics(t *testing.T) {
	m := defaultNoopMetrics()
	assert.NotPanics(t, func() {
		m.GetOrCreateCountMeter("c").Add(1)
		m.GetOrCreateCountVecMeter("cv", []string{"a"}).AddWithLabel(1, map[string]string{"a": "b"})
		m.GetOrCreateGaugeMeter("g").Set(2)
		m.GetOrCreateHistogramMeter("h", nil).Observe(3)
		m.GetOrCreateHistogramVecMeter("hv", []string{"a"}, nil).ObserveWithLabels(4, map[string]string{"a": "b"})
	})
}

func TestLazyLoad(t *testing.T) {
	calls := 0
	get := LazyLoad(func() int {
		calls++
		return calls
	})
	assert.Equal(t, 1, get())
	assert.Equal(t, 1, get())
	assert.Equal(t, 1, calls)
}

func TestPromMetrics(t *testing.T) {
	lazy := LazyLoadCounter("lazy_count")
	InitializePrometheusMetrics()

	lazy().Add(2)
	Counter("count1").Add(1)
	Counter("count1").Add(1)
	CounterVec("count_vec", []string{"result"}).AddWithLabel(3, map[string]string{"result": "pass"})
	Gauge("gauge1").Set(5)
	Histogram("hist1", Bucket1s).Observe(10)
	HistogramVec("hist_vec", []string{"mode"}, BucketTxs).ObserveWithLabels(7, map[string]string{"mode": "apply"})

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	found := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		found[mf.GetName()] = mf
	}

	assert.Equal(t, float64(2), found["ledger_lazy_count"].Metric[0].GetCounter().GetValue())
	assert.Equal(t, float64(2), found["ledger_count1"].Metric[0].GetCounter().GetValue())
	assert.Equal(t, float64(3), found["ledger_count_vec"].Metric[0].GetCounter().GetValue())
	assert.Equal(t, float64(5), found["ledger_gauge1"].Metric[0].GetGauge().GetValue())
	assert.Equal(t, float64(10), found["ledger_hist1"].Metric[0].GetHistogram().GetSampleSum())
	assert.Equal(t, uint64(1), found["ledger_hist_vec"].Metric[0].GetHistogram().GetSampleCount())

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf))
	assert.Contains(t, buf.String(), "ledger_count1 2")
}
