// Package metrics exposes Prometheus collectors for suite runs.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors on a dedicated registry.
type Metrics struct {
	Registry            *prometheus.Registry
	CasesTotal          *prometheus.CounterVec
	CaseDuration        *prometheus.HistogramVec
	CaseFailuresTotal   *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	LastRunSuccessRatio prometheus.Gauge
	LastRunTimestamp    prometheus.Gauge
}

// New constructs and registers every collector.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	cases := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_e2e_cases_total",
			Help: "Executed cases by suite and outcome.",
		},
		[]string{"suite", "outcome"},
	)
	caseDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "library_e2e_case_duration_seconds",
			Help:    "Wall time of a case including fixture preparation.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"suite"},
	)
	failures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_e2e_case_failures_total",
			Help: "Failed cases by failure kind.",
		},
		[]string{"kind"},
	)
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_e2e_http_requests_total",
			Help: "HTTP requests issued against the application.",
		},
		[]string{"method", "code"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "library_e2e_http_request_duration_seconds",
			Help:    "Latency of requests against the application.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
	successRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "library_e2e_last_run_success_ratio",
		Help: "Passed over total cases of the latest run.",
	})
	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "library_e2e_last_run_timestamp_seconds",
		Help: "Unix time the latest run finished.",
	})

	registry.MustRegister(cases, caseDuration, failures, requests, requestDuration, successRatio, lastRun)

	return &Metrics{
		Registry:            registry,
		CasesTotal:          cases,
		CaseDuration:        caseDuration,
		CaseFailuresTotal:   failures,
		HTTPRequestsTotal:   requests,
		HTTPRequestDuration: requestDuration,
		LastRunSuccessRatio: successRatio,
		LastRunTimestamp:    lastRun,
	}
}

// ObserveCase records one finished case. kind is ignored for passing cases.
func (m *Metrics) ObserveCase(suite, outcome, kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.CasesTotal.WithLabelValues(suite, outcome).Inc()
	m.CaseDuration.WithLabelValues(suite).Observe(d.Seconds())
	if kind != "" {
		m.CaseFailuresTotal.WithLabelValues(kind).Inc()
	}
}

// ObserveRequest implements client.Observer. A status of 0 means the request
// never got a response.
func (m *Metrics) ObserveRequest(method string, statusCode int, d time.Duration) {
	if m == nil {
		return
	}
	code := "error"
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}
	m.HTTPRequestsTotal.WithLabelValues(method, code).Inc()
	m.HTTPRequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveRun records the summary of a finished run.
func (m *Metrics) ObserveRun(passed, total int, finished time.Time) {
	if m == nil || total == 0 {
		return
	}
	m.LastRunSuccessRatio.Set(float64(passed) / float64(total))
	m.LastRunTimestamp.Set(float64(finished.Unix()))
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
