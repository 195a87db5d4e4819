// Package metrics defines the Prometheus collectors of the table builder and
// exposes an HTTP handler for scraping. Each Metrics value owns its registry,
// so a process (or a test) may create several without clashing.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	Registry *prometheus.Registry

	PairsTotal       *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
	PassRowsRemoved  *prometheus.CounterVec
	PassMassRemoved  *prometheus.CounterVec
	TruncationBound  *prometheus.GaugeVec
	FinalCutoff      *prometheus.GaugeVec
	SinkPublishTotal *prometheus.CounterVec
	RunRequestsTotal *prometheus.CounterVec
	PairsInFlight    prometheus.Gauge
}

// New creates all collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		PairsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ngram_pairs_total",
				Help: "Processed (language, n) pairs by status (ok, truncated, failed).",
			},
			[]string{"lang", "n", "status"},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ngram_stage_duration_seconds",
				Help:    "Duration of each pipeline stage in seconds.",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"stage"},
		),
		PassRowsRemoved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ngram_pass_rows_removed_total",
				Help: "Rows removed by each cleaning pass.",
			},
			[]string{"lang", "pass"},
		),
		PassMassRemoved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ngram_pass_freq_removed_total",
				Help: "Frequency mass removed by each cleaning pass.",
			},
			[]string{"lang", "pass"},
		),
		TruncationBound: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ngram_truncation_bound",
				Help: "Highest per-file minimum frequency of the last merge.",
			},
			[]string{"lang", "n"},
		),
		FinalCutoff: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ngram_final_cutoff_freq",
				Help: "Frequency at the last rank of the last emitted table.",
			},
			[]string{"lang", "n"},
		),
		SinkPublishTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ngram_sink_publish_total",
				Help: "Table publications by sink and status.",
			},
			[]string{"sink", "status"},
		),
		RunRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ngram_run_requests_total",
				Help: "Run requests received by the worker by result (ok, failed, shared, rejected).",
			},
			[]string{"result"},
		),
		PairsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "ngram_pairs_in_flight",
				Help: "Number of pairs currently being processed.",
			},
		),
	}

	m.Registry = prometheus.NewRegistry()
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.PairsTotal,
		m.StageDuration,
		m.PassRowsRemoved,
		m.PassMassRemoved,
		m.TruncationBound,
		m.FinalCutoff,
		m.SinkPublishTotal,
		m.RunRequestsTotal,
		m.PairsInFlight,
	)

	return m
}

// N formats n as a label value.
func N(n int) string {
	return strconv.Itoa(n)
}

// Handler returns the Prometheus scrape HTTP handler for m's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
