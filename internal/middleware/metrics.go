package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "youbet_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// ContactRequestOutcomes counts contact request lifecycle transitions.
	ContactRequestOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "youbet_contact_request_outcomes_total",
		Help: "Contact request lifecycle outcomes (sent, approved, declined, cancelled, expired)",
	}, []string{"outcome"})

	// NotificationsDispatched counts persisted notifications by type.
	NotificationsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "youbet_notifications_dispatched_total",
		Help: "Total notifications persisted by type",
	}, []string{"type"})

	// SMSInvitesSent counts outbound SMS invites handed to the gateway.
	SMSInvitesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "youbet_sms_invites_sent_total",
		Help: "Total SMS invites handed to the gateway",
	})

	// WebSocketConnections is the gauge of active notification WebSocket connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "youbet_websocket_connections",
		Help: "Active notification WebSocket connections",
	})

	// WebSocketDrops counts messages dropped on the way to a client.
	WebSocketDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "youbet_websocket_drops_total",
		Help: "Messages dropped before reaching a WebSocket client, by reason",
	}, []string{"reason"})
)

// InitMetrics sets up the Prometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the Fiber handler that records request metrics.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
