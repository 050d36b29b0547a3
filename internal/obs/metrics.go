package obs

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Route classes used as a metric label so dashboards can split page views from form posts.
const (
	ClassPage   = "page"
	ClassAPI    = "api"
	ClassStatic = "static"
	ClassInfra  = "infra"
)

// DefaultLatencyBucketsMS suits server-rendered pages backed by a handful of queries.
var DefaultLatencyBucketsMS = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500}

// HTTPMetrics holds the site's request collectors.
type HTTPMetrics struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
	InFlight *prometheus.GaugeVec
}

// NewHTTPMetrics registers the request collectors on reg, or the default registerer when reg is nil.
// Collectors already registered under the same names are reused.
func NewHTTPMetrics(namespace string, bucketsMS []float64, reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if len(bucketsMS) == 0 {
		bucketsMS = DefaultLatencyBucketsMS
	} else {
		bucketsMS = append([]float64(nil), bucketsMS...)
		sort.Float64s(bucketsMS)
	}
	m := &HTTPMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Requests served, by route class, chi route and status.",
		}, []string{"method", "class", "route", "status"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "Time to serve a request in milliseconds.",
			Buckets:   bucketsMS,
		}, []string{"class", "route"}),
		InFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "Requests currently being served, by route class.",
		}, []string{"class"}),
	}
	mustRegisterCollector(reg, m.Requests, func(c prometheus.Collector) {
		if v, ok := c.(*prometheus.CounterVec); ok {
			m.Requests = v
		}
	})
	mustRegisterCollector(reg, m.Latency, func(c prometheus.Collector) {
		if v, ok := c.(*prometheus.HistogramVec); ok {
			m.Latency = v
		}
	})
	mustRegisterCollector(reg, m.InFlight, func(c prometheus.Collector) {
		if v, ok := c.(*prometheus.GaugeVec); ok {
			m.InFlight = v
		}
	})
	return m
}

// RouteClass buckets a request path into page, api, static or infra.
func RouteClass(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/"):
		return ClassAPI
	case strings.HasPrefix(path, "/static/"):
		return ClassStatic
	case strings.HasPrefix(path, "/health"), path == "/metrics", strings.HasPrefix(path, "/debug/"):
		return ClassInfra
	default:
		return ClassPage
	}
}

// ParseBucketsCSV reads "5,25,100" style millisecond boundaries. Non-positive and malformed entries are skipped.
func ParseBucketsCSV(csv string) []float64 {
	var out []float64
	for _, field := range strings.Split(csv, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err == nil && v > 0 {
			out = append(out, v)
		}
	}
	return out
}

// DurationMillis converts d for the latency histogram.
func DurationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
