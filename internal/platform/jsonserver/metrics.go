package jsonserver

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records outbound calls to the resource store.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics creates the upstream metrics and registers them with reg when
// reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bookgraph",
				Subsystem: "upstream",
				Name:      "requests_total",
				Help:      "Total number of REST calls issued to the resource store",
			},
			[]string{"method", "resource", "status"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "bookgraph",
				Subsystem: "upstream",
				Name:      "request_duration_seconds",
				Help:      "REST call latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "resource"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Requests, m.Duration)
	}
	return m
}

func (m *Metrics) observe(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	resource := resourceOf(path)
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.Requests.WithLabelValues(method, resource, label).Inc()
	m.Duration.WithLabelValues(method, resource).Observe(elapsed.Seconds())
}

// resourceOf reduces "/userBooks/12?x=y" to "userBooks" so label cardinality
// stays bounded by the number of collections.
func resourceOf(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexAny(path, "/?"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "root"
	}
	return path
}
