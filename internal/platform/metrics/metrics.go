// Package metrics holds the Prometheus collectors for the API. Every method on
// *Collector is safe to call on a nil receiver so services can run without
// metrics in tests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "visitlog"

type Collector struct {
	gatherer prometheus.Gatherer

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlight        prometheus.Gauge

	VisitsSaved          *prometheus.CounterVec
	ValidationRejections *prometheus.CounterVec
	AbnormalBPFlags      prometheus.Counter
	InterventionsSaved   *prometheus.CounterVec
	ReportsGenerated     *prometheus.CounterVec
	ReportBuildDuration  *prometheus.HistogramVec
	RecordAccesses       *prometheus.CounterVec
}

// New registers all collectors with reg. Pass prometheus.NewRegistry() in
// tests to avoid duplicate registration panics.
func New(reg *prometheus.Registry) *Collector {
	f := promauto.With(reg)
	return &Collector{
		gatherer: reg,

		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),

		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "route"}),

		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		VisitsSaved: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "visits",
			Name:      "saved_total",
			Help:      "Visit records saved by visit type and status.",
		}, []string{"visit_type", "status"}),

		ValidationRejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "records",
			Name:      "validation_rejections_total",
			Help:      "Submissions rejected by validation, by record kind.",
		}, []string{"kind"}),

		AbnormalBPFlags: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "visits",
			Name:      "abnormal_bp_flags_total",
			Help:      "Times a visit's bp_abnormal flag was raised.",
		}),

		InterventionsSaved: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "interventions",
			Name:      "saved_total",
			Help:      "Intervention records saved by intervention type.",
		}, []string{"intervention_type"}),

		ReportsGenerated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reports",
			Name:      "generated_total",
			Help:      "Reports generated by format (json, pdf, xlsx).",
		}, []string{"format"}),

		ReportBuildDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reports",
			Name:      "build_duration_seconds",
			Help:      "Time spent building a report document.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"format"}),

		RecordAccesses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "record_accesses_total",
			Help:      "Audited API accesses by resource and action.",
		}, []string{"resource", "action"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request count and latency keyed by the matched route
// so path parameters do not explode label cardinality.
func (c *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if c == nil {
				return next(ctx)
			}
			c.InFlight.Inc()
			defer c.InFlight.Dec()

			start := time.Now()
			err := next(ctx)

			status := ctx.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := ctx.Path()
			if route == "" {
				route = "unmatched"
			}
			c.RequestsTotal.WithLabelValues(ctx.Request().Method, route, strconv.Itoa(status)).Inc()
			c.RequestDuration.WithLabelValues(ctx.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func (c *Collector) VisitSaved(visitType, status string) {
	if c == nil {
		return
	}
	c.VisitsSaved.WithLabelValues(visitType, status).Inc()
}

func (c *Collector) ValidationRejected(kind string) {
	if c == nil {
		return
	}
	c.ValidationRejections.WithLabelValues(kind).Inc()
}

func (c *Collector) BPFlagRaised() {
	if c == nil {
		return
	}
	c.AbnormalBPFlags.Inc()
}

func (c *Collector) InterventionSaved(interventionType string) {
	if c == nil {
		return
	}
	c.InterventionsSaved.WithLabelValues(interventionType).Inc()
}

// ReportGenerated counts a report and observes how long it took to build.
func (c *Collector) ReportGenerated(format string, took time.Duration) {
	if c == nil {
		return
	}
	c.ReportsGenerated.WithLabelValues(format).Inc()
	c.ReportBuildDuration.WithLabelValues(format).Observe(took.Seconds())
}

func (c *Collector) RecordAccessed(resource, action string) {
	if c == nil {
		return
	}
	c.RecordAccesses.WithLabelValues(resource, action).Inc()
}
