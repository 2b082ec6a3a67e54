// Package metrics exposes Prometheus counters for the ifsgen HTTP server.
package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/zate/ifsgen/internal/ifs"
)

const prefix = "ifsgen_"

var requestsCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: prefix + "http_requests_total",
		Help: "HTTP requests by method, route and status",
	},
	[]string{"method", "route", "status"},
)

var requestDurationHist = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    prefix + "http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"route"},
)

var limitViolationsCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: prefix + "limit_violations_total",
		Help: "Rejected parameter sets by violation kind and field",
	},
	[]string{"kind", "field"},
)

var estimatesCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: prefix + "estimates_total",
		Help: "Point estimates served by growth tier",
	},
	[]string{"tier"},
)

// RecordRequest counts one finished request.
func RecordRequest(method, route string, status int, seconds float64) {
	requestsCounter.
		With(prometheus.Labels{"method": method, "route": route, "status": strconv.Itoa(status)}).
		Inc()
	requestDurationHist.WithLabelValues(route).Observe(seconds)
}

// RecordLimitViolation counts err if it is a LimitError and reports whether
// it was one.
func RecordLimitViolation(err error) bool {
	var le *ifs.LimitError
	if !errors.As(err, &le) {
		return false
	}
	limitViolationsCounter.
		With(prometheus.Labels{"kind": string(le.Kind), "field": string(le.Field)}).
		Inc()
	return true
}

// RecordEstimate counts a served estimate.
func RecordEstimate(tier ifs.Tier) {
	estimatesCounter.WithLabelValues(string(tier)).Inc()
}
