package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapline_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tapline_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Economy Metrics
var (
	ClicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tapline_clicks_total",
			Help: "Total number of manual clicks applied",
		},
	)

	TicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tapline_ticks_total",
			Help: "Total number of production ticks applied",
		},
	)

	PurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapline_purchases_total",
			Help: "Successful purchases by item",
		},
		[]string{"item"},
	)

	PurchaseFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapline_purchase_failures_total",
			Help: "Failed purchase attempts by reason",
		},
		[]string{"reason"},
	)
)

// Combat Metrics
var (
	EffectsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapline_effects_applied_total",
			Help: "Attack effects applied by effect id",
		},
		[]string{"effect"},
	)

	DefendOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapline_defend_outcomes_total",
			Help: "Defend resolutions by outcome",
		},
		[]string{"outcome"},
	)
)

// Settlement and notification Metrics
var (
	SettlementsCredited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tapline_settlements_credited_total",
			Help: "Offline settlements credited",
		},
	)

	NotificationsFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapline_notifications_fired_total",
			Help: "Notification rules fired by condition type",
		},
		[]string{"condition"},
	)

	CatalogRefreshes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tapline_catalog_refreshes_total",
			Help: "Successful catalog snapshot refreshes",
		},
	)

	SignalsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapline_signals_applied_total",
			Help: "Inbound signals durably applied by kind",
		},
		[]string{"kind"},
	)
)
