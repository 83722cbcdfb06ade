// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// WebhookMessages counts inbound webhook deliveries by outcome:
	// processed, command, ignored, rejected, error.
	WebhookMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "foguinho",
		Name:      "webhook_messages_total",
		Help:      "Inbound webhook messages by outcome.",
	}, []string{"outcome"})

	// Commands counts chat commands by kind (fogo, restaurar, nivel,
	// ranking, unknown).
	Commands = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "foguinho",
		Name:      "commands_total",
		Help:      "Chat commands handled, by kind.",
	}, []string{"command"})

	// Restorations counts successful restorations.
	Restorations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "foguinho",
		Name:      "restorations_total",
		Help:      "Successful streak restorations.",
	})

	// StreaksBroken counts streaks zeroed at rollover.
	StreaksBroken = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "foguinho",
		Name:      "streaks_broken_total",
		Help:      "Streaks broken by a full day below the threshold.",
	})

	// Groups tracks how many groups are provisioned.
	Groups = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "foguinho",
		Name:      "groups",
		Help:      "Provisioned groups.",
	})
)

// Handler serves the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
