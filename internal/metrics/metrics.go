// Package metrics exports the application level prometheus metrics. HTTP request
// metrics are collected separately by the router middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ModerationActions counts created moderations by type.
	ModerationActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "modlog",
		Name:      "moderation_actions_total",
		Help:      "Total number of moderation actions created by type",
	}, []string{"type"})

	// ModerationsExpired counts moderations deactivated by the expiry cleanup.
	ModerationsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "modlog",
		Name:      "moderations_expired_total",
		Help:      "Total number of moderations deactivated after expiry",
	})

	// PlayerUpserts counts player create or refresh operations.
	PlayerUpserts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "modlog",
		Name:      "player_upserts_total",
		Help:      "Total number of player upserts",
	})
)
