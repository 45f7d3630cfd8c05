package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type StoreMetrics struct {
	ActionsTotal    *prometheus.CounterVec
	EffectDuration  *prometheus.HistogramVec
	EffectsInFlight prometheus.Gauge
}

type EventMetrics struct {
	ChangeEventsTotal *prometheus.CounterVec
}

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type RemoteMetrics struct {
	RequestDuration *prometheus.HistogramVec
}

var (
	Store = StoreMetrics{
		ActionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "customer_store_actions_total",
				Help: "Total number of actions reduced by the customer store.",
			},
			[]string{"type"},
		),
		EffectDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "customer_store_effect_duration_seconds",
				Help:    "Histogram of effect latencies from intent to outcome.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"family", "result"},
		),
		EffectsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "customer_store_effects_in_flight",
				Help: "Number of remote calls started by effects and not yet finished.",
			},
		),
	}

	Remote = RemoteMetrics{
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "customer_store_remote_request_duration_seconds",
				Help:    "Histogram of customers backend request latencies.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "code"},
		),
	}

	Events = EventMetrics{
		ChangeEventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "customer_store_change_events_total",
				Help: "Total number of backend change events consumed, by outcome.",
			},
			[]string{"routing_key", "result"},
		),
	}

	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "customer_sandbox_db_query_duration_seconds",
				Help:    "Histogram of sandbox repository query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}
)

func RecordAction(actionType string) {
	Store.ActionsTotal.WithLabelValues(actionType).Inc()
}

func EffectStarted() {
	Store.EffectsInFlight.Inc()
}

func EffectFinished(family, result string, duration time.Duration) {
	Store.EffectsInFlight.Dec()
	Store.EffectDuration.WithLabelValues(family, result).Observe(duration.Seconds())
}

func RecordRemoteRequest(method, code string, duration time.Duration) {
	Remote.RequestDuration.WithLabelValues(method, code).Observe(duration.Seconds())
}

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordChangeEvent(routingKey, result string) {
	Events.ChangeEventsTotal.WithLabelValues(routingKey, result).Inc()
}
