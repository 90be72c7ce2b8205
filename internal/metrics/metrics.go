// Package metrics provides Prometheus metrics for the defparser service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Parse results recorded by ObserveParse.
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Collector holds all Prometheus metrics for the service.
type Collector struct {
	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Parse metrics
	ParsesTotal   *prometheus.CounterVec
	ParseDuration *prometheus.HistogramVec
	IssuesTotal   *prometheus.CounterVec

	// Registry metrics
	ParsersDefined prometheus.Gauge
}

// New creates a collector with all metrics registered on reg.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "defparser",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "defparser",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "route"},
		),
		ParsesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "defparser",
				Name:      "parses_total",
				Help:      "Total number of documents parsed, by parser and result",
			},
			[]string{"parser", "result"},
		),
		ParseDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "defparser",
				Name:      "parse_duration_seconds",
				Help:      "Time spent decoding and validating a document",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
			[]string{"parser"},
		),
		IssuesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "defparser",
				Name:      "issues_total",
				Help:      "Total number of reported issues, by parser and code",
			},
			[]string{"parser", "code"},
		),
		ParsersDefined: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "defparser",
				Name:      "parsers_defined",
				Help:      "Number of parsers in the registry",
			},
		),
	}
}

// ObserveParse records one parse. codes holds the code of every issue.
func (c *Collector) ObserveParse(parser, result string, d time.Duration, codes []string) {
	c.ParsesTotal.WithLabelValues(parser, result).Inc()
	c.ParseDuration.WithLabelValues(parser).Observe(d.Seconds())
	for _, code := range codes {
		c.IssuesTotal.WithLabelValues(parser, code).Inc()
	}
}

// ObserveRequest records one HTTP request.
func (c *Collector) ObserveRequest(method, route, status string, d time.Duration) {
	c.RequestsTotal.WithLabelValues(method, route, status).Inc()
	c.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
