// Package metrics holds Prometheus instruments that are used across the
// backend.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Number of visitor sessions currently held in the store.",
		})

	SessionsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_created_total",
			Help: "Cumulative number of visitor sessions created.",
		})

	CSRFIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "csrf_tokens_issued_total",
			Help: "Cumulative number of anti-forgery tokens generated.",
		})

	CSRFRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "csrf_rejections_total",
			Help: "Cumulative number of submissions rejected for a bad token.",
		})

	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Contact submissions by outcome.",
		},
		[]string{"outcome"}, // success, csrf_failed, delivery_failed, error
	)
)

func init() {
	prometheus.MustRegister(
		ActiveSessions,
		SessionsCreatedTotal,
		CSRFIssuedTotal,
		CSRFRejectedTotal,
		SubmissionsTotal,
	)
}
