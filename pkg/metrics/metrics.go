package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectionsActive tracks live websocket connections.
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codify_connections_active",
		Help: "Number of open websocket connections.",
	})

	// RoomsActive tracks non-empty rooms.
	RoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codify_rooms_active",
		Help: "Number of rooms with at least one member.",
	})

	// BroadcastsTotal counts room broadcasts by event name.
	BroadcastsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codify_broadcasts_total",
		Help: "Room broadcasts sent, labeled by event.",
	}, []string{"event"})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
