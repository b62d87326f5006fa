// Package metrics exposes fetch measurements as Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "inboxdomains"

// Fetch collects measurements from fetch invocations
type Fetch struct {
	registry *prometheus.Registry

	pages      prometheus.Counter
	listedIDs  prometheus.Counter
	messages   *prometheus.CounterVec
	pauses     *prometheus.CounterVec
	pauseTime  *prometheus.CounterVec
	runs       *prometheus.CounterVec
	runTime    prometheus.Histogram
	total      prometheus.Gauge
	domains    prometheus.Gauge
	lastRunEnd prometheus.Gauge
}

// New registers the fetch collectors on a fresh registry
func New() *Fetch {
	reg := prometheus.NewRegistry()

	m := &Fetch{
		registry: reg,
		pages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "list_pages_total",
			Help:      "List calls that returned a page.",
		}),
		listedIDs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listed_messages_total",
			Help:      "Message ids returned by list calls.",
		}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metadata_requests_total",
			Help:      "Metadata retrievals by outcome.",
		}, []string{"outcome"}),
		pauses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pauses_total",
			Help:      "Pacing pauses by kind.",
		}, []string{"kind"}),
		pauseTime: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pause_seconds_total",
			Help:      "Time spent in pacing pauses by kind.",
		}, []string{"kind"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_runs_total",
			Help:      "Fetch invocations by status.",
		}, []string{"status"}),
		runTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Wall time of fetch invocations.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		total: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "aggregate_messages",
			Help:      "Running message total of the stored aggregate.",
		}),
		domains: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "aggregate_domains",
			Help:      "Sender domains in the stored aggregate.",
		}),
		lastRunEnd: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful fetch.",
		}),
	}

	reg.MustRegister(
		m.pages, m.listedIDs, m.messages, m.pauses, m.pauseTime,
		m.runs, m.runTime, m.total, m.domains, m.lastRunEnd,
	)
	return m
}

// Registry returns the registry holding the fetch collectors
func (m *Fetch) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Fetch) ObservePage(ids int) {
	m.pages.Inc()
	m.listedIDs.Add(float64(ids))
}

func (m *Fetch) ObserveMessage(outcome string) {
	m.messages.WithLabelValues(outcome).Inc()
}

func (m *Fetch) ObservePause(kind string, d time.Duration) {
	m.pauses.WithLabelValues(kind).Inc()
	m.pauseTime.WithLabelValues(kind).Add(d.Seconds())
}

func (m *Fetch) ObserveRun(status string, elapsed time.Duration, total, domains int) {
	m.runs.WithLabelValues(status).Inc()
	m.runTime.Observe(elapsed.Seconds())
	if status != "ok" {
		return
	}
	m.total.Set(float64(total))
	m.domains.Set(float64(domains))
	m.lastRunEnd.SetToCurrentTime()
}

// WriteTextfile writes the current values in the text exposition format,
// for pickup by a node exporter textfile collector
func (m *Fetch) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
