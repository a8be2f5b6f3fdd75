// Package metrics holds Prometheus instruments that are used across the
// host.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActiveWidgets = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "informer_active_widgets",
			Help: "Number of widget instances bound to regions.",
		})

	WidgetStatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "informer_widget_state_total",
			Help: "Cumulative lifecycle completions by widget type and final state.",
		}, []string{"type", "state"})

	FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "informer_fetch_total",
			Help: "Cumulative widget data requests by type and result.",
		}, []string{"type", "result"})

	FetchSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "informer_fetch_seconds",
			Help:    "Widget data request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"type"})

	UnitLoadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "informer_unit_load_total",
			Help: "Cumulative widget unit loads by result.",
		}, []string{"result"})

	ClassesDefined = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "informer_classes_defined",
			Help: "Number of widget classes defined in the registry.",
		})
)

func init() {
	prometheus.MustRegister(
		ActiveWidgets,
		WidgetStatesTotal,
		FetchTotal,
		FetchSeconds,
		UnitLoadTotal,
		ClassesDefined,
	)
}
