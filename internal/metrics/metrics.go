// Package metrics exposes Prometheus collectors for harvest runs.
//
// Collectors live in a dedicated registry rather than the global default one,
// so a one-shot CLI run can export exactly the harvest series as a
// node-exporter textfile.
package metrics

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every harvest collector.
var Registry = prometheus.NewRegistry()

var (
	envelopesTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvest_envelopes_total",
			Help: "Total number of envelopes emitted, labeled by backend and category.",
		},
		[]string{"backend", "category"},
	)

	versionsSkippedTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvest_versions_skipped_total",
			Help: "Total number of fetched versions older than the checkpoint, labeled by backend.",
		},
		[]string{"backend"},
	)

	itemsUnreachableTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvest_items_unreachable_total",
			Help: "Total number of items whose walk ended on a not-found or server error, labeled by backend.",
		},
		[]string{"backend"},
	)

	requestsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvest_requests_total",
			Help: "Total number of transport requests, labeled by host and code.",
		},
		[]string{"host", "code"},
	)

	requestDurationSeconds = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "harvest_request_duration_seconds",
			Help:    "Histogram of transport request latencies, labeled by host.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"host"},
	)

	lastCheckpointSeconds = promauto.With(Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "harvest_checkpoint_timestamp_seconds",
			Help: "Checkpoint reached by the last successful harvest, labeled by backend.",
		},
		[]string{"backend"},
	)
)

// SanitizeHost extracts a lowercase hostname from a URL.
// It returns "unknown" if the URL is invalid.
func SanitizeHost(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// ObserveEnvelope increments the emitted envelope counter.
func ObserveEnvelope(backend, category string) {
	envelopesTotal.WithLabelValues(backend, category).Inc()
}

// ObserveVersionSkipped increments the checkpoint-filtered version counter.
func ObserveVersionSkipped(backend string) {
	versionsSkippedTotal.WithLabelValues(backend).Inc()
}

// ObserveItemUnreachable increments the unreachable item counter.
func ObserveItemUnreachable(backend string) {
	itemsUnreachableTotal.WithLabelValues(backend).Inc()
}

// ObserveRequest records one transport request. A code of 0 means no response.
func ObserveRequest(rawURL string, code int, duration time.Duration) {
	host := SanitizeHost(rawURL)
	requestsTotal.WithLabelValues(host, strconv.Itoa(code)).Inc()
	requestDurationSeconds.WithLabelValues(host).Observe(duration.Seconds())
}

// SetCheckpoint records the checkpoint reached by a successful harvest.
func SetCheckpoint(backend string, t time.Time) {
	lastCheckpointSeconds.WithLabelValues(backend).Set(float64(t.Unix()))
}

// WriteTextfile writes every harvest series to path in the Prometheus text format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
