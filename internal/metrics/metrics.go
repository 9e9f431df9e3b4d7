// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Listing outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeInvalid      = "invalid"
	OutcomeUnauthorized = "unauthorized"
	OutcomeError        = "error"
)

// Listing instruments ticket listing requests.
type Listing struct {
	requests *prometheus.CounterVec
	latency  prometheus.Histogram
	results  prometheus.Histogram
	empty    prometheus.Counter
}

// NewListing registers the listing collectors on reg.
func NewListing(reg prometheus.Registerer, namespace string) *Listing {
	factory := promauto.With(reg)
	return &Listing{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticket_list_requests_total",
			Help:      "Total number of ticket listing requests by outcome",
		}, []string{"outcome"}),
		latency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ticket_list_duration_seconds",
			Help:      "Ticket listing latency",
			Buckets:   prometheus.DefBuckets,
		}),
		results: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ticket_list_page_size",
			Help:      "Number of tickets returned per listing page",
			Buckets:   []float64{0, 1, 5, 10, 20, 30, 40},
		}),
		empty: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticket_list_empty_restrictions_total",
			Help:      "Listings whose tag or assignee filters matched no ticket",
		}),
	}
}

// Observe records one finished listing. A nil Listing records nothing.
func (m *Listing) Observe(outcome string, elapsed time.Duration, returned int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
	m.latency.Observe(elapsed.Seconds())
	if outcome == OutcomeOK {
		m.results.Observe(float64(returned))
	}
}

// EmptyRestriction records a membership filter that matched nothing.
func (m *Listing) EmptyRestriction() {
	if m == nil {
		return
	}
	m.empty.Inc()
}

// HTTP instruments the HTTP server.
type HTTP struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewHTTP registers the HTTP collectors on reg.
func NewHTTP(reg prometheus.Registerer, namespace string) *HTTP {
	factory := promauto.With(reg)
	return &HTTP{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Middleware returns a gin middleware recording every request by route
// template.
func (m *HTTP) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
