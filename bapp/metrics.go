package bapp

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/advdv/bmsg"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of the served responses. They are registered
// on their own registry, never on the global one.
type Metrics struct {
	registry  *prometheus.Registry
	responses *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	errors    *prometheus.CounterVec
}

// NewMetrics creates the collectors and a registry that also carries the Go
// runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry:  prometheus.NewRegistry(),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bmsg",
			Name:      "responses_total",
			Help:      "Responses by method and status code.",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bmsg",
			Name:      "handler_duration_seconds",
			Help:      "Time spent in handlers.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bmsg",
			Name:      "handler_errors_total",
			Help:      "Errors returned by handlers by the status they map to, 0 when unmapped.",
		}, []string{"code"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.responses, m.duration, m.errors,
	)

	return m
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the registry so applications can add their own collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Middleware records every response. An error response that is still to be
// written by the mux is counted with the status it maps to.
func (m *Metrics) Middleware() bmsg.Middleware {
	return func(next bmsg.Handler) bmsg.Handler {
		return bmsg.HandlerFunc(func(ctx context.Context, res *bmsg.Response, req *bmsg.Request) error {
			start := time.Now()
			err := next.ServeBMSG(ctx, res, req)
			m.duration.WithLabelValues(req.Method()).Observe(time.Since(start).Seconds())

			code := res.StatusCode()
			if err != nil {
				mapped := bmsg.CodeOf(err)
				m.errors.WithLabelValues(strconv.Itoa(int(mapped))).Inc()

				if !res.Committed() {
					code = int(mapped)
					if mapped == bmsg.CodeUnknown {
						code = http.StatusInternalServerError
					}
				}
			}

			m.responses.WithLabelValues(req.Method(), strconv.Itoa(code)).Inc()

			return err
		})
	}
}
