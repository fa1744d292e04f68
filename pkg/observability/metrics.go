package observability

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aretw0/tafel/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tafel"

// Metrics holds the collectors fed by domain.LifecycleHooks.
type Metrics struct {
	registry *prometheus.Registry

	Turns            *prometheus.CounterVec
	TurnDuration     prometheus.Histogram
	FAQLookups       *prometheus.CounterVec
	Deliveries       *prometheus.CounterVec
	DeliveryDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "turns_total",
				Help:      "Processed chat messages by resulting dialogue stage.",
			},
			[]string{"stage"},
		),
		TurnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Time spent processing a message under the session lock.",
			Buckets:   prometheus.DefBuckets,
		}),
		FAQLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "faq_lookups_total",
				Help:      "Knowledge base lookups by outcome.",
			},
			[]string{"matched"},
		),
		Deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deliveries_total",
				Help:      "Reservation deliveries by result.",
			},
			[]string{"result"},
		),
		DeliveryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delivery_duration_seconds",
			Help:      "Notifier latency.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30},
		}),
	}
	m.registry.MustRegister(
		m.Turns, m.TurnDuration, m.FAQLookups, m.Deliveries, m.DeliveryDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry for additional collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns lifecycle hooks recording into m. Combine them with others via Chain.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurn: func(_ context.Context, e *domain.TurnEvent) {
			m.Turns.WithLabelValues(string(e.To)).Inc()
			m.TurnDuration.Observe(e.Duration.Seconds())
		},
		OnFAQ: func(_ context.Context, e *domain.FAQEvent) {
			m.FAQLookups.WithLabelValues(strconv.FormatBool(e.Matched)).Inc()
		},
		OnDelivery: func(_ context.Context, e *domain.DeliveryEvent) {
			result := "success"
			if e.Err != nil {
				result = "failure"
			}
			m.Deliveries.WithLabelValues(result).Inc()
			m.DeliveryDuration.Observe(e.Duration.Seconds())
		},
	}
}

// Chain merges several hook sets; each callback runs in order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range hooks {
		h := h
		if h.OnTurn != nil {
			prev := out.OnTurn
			out.OnTurn = func(ctx context.Context, e *domain.TurnEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnTurn(ctx, e)
			}
		}
		if h.OnFAQ != nil {
			prev := out.OnFAQ
			out.OnFAQ = func(ctx context.Context, e *domain.FAQEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnFAQ(ctx, e)
			}
		}
		if h.OnDelivery != nil {
			prev := out.OnDelivery
			out.OnDelivery = func(ctx context.Context, e *domain.DeliveryEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnDelivery(ctx, e)
			}
		}
	}
	return out
}
