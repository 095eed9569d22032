package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/barista/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors fed by engine hooks.
// It owns its registry so several engines can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	StepVisits    *prometheus.CounterVec
	Orders        prometheus.Counter
	OrderLines    *prometheus.CounterVec
	OrderValue    prometheus.Histogram
	Revenue       prometheus.Counter
	SinkFailures  prometheus.Counter
	ActiveSession prometheus.Gauge
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StepVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barista_step_visits_total",
				Help: "Total number of step entries",
			},
			[]string{"step"},
		),
		Orders: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "barista_orders_confirmed_total",
			Help: "Total number of confirmed orders",
		}),
		OrderLines: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barista_order_lines_total",
				Help: "Order lines handed to the sink, by outcome",
			},
			[]string{"outcome"},
		),
		OrderValue: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "barista_order_grand_total",
			Help:    "Grand total of confirmed orders",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10),
		}),
		Revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "barista_revenue_total",
			Help: "Sum of grand totals of confirmed orders",
		}),
		SinkFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "barista_sink_failures_total",
			Help: "Order lines the sink failed to store",
		}),
		ActiveSession: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "barista_active_sessions",
			Help: "Sessions currently held by the host",
		}),
	}

	m.registry.MustRegister(
		m.StepVisits,
		m.Orders,
		m.OrderLines,
		m.OrderValue,
		m.Revenue,
		m.SinkFailures,
		m.ActiveSession,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			m.StepVisits.WithLabelValues(string(e.Step)).Inc()
		},
		OnRecordPersisted: func(ctx context.Context, e *domain.RecordEvent) {
			if e.Err != nil {
				m.OrderLines.WithLabelValues("failed").Inc()
				m.SinkFailures.Inc()
				return
			}
			m.OrderLines.WithLabelValues("stored").Inc()
		},
		OnOrderConfirmed: func(ctx context.Context, e *domain.OrderEvent) {
			m.Orders.Inc()
			m.OrderValue.Observe(float64(e.GrandTotal))
			m.Revenue.Add(float64(e.GrandTotal))
		},
	}
}
