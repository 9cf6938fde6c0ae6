package httpx

import (
	"net/http"

	"log/slog"

	"github.com/UTKARSHJHA-2005/CODIFY/internal/app"
	"github.com/UTKARSHJHA-2005/CODIFY/internal/ws"
	"github.com/UTKARSHJHA-2005/CODIFY/pkg/metrics"
)

// NewRouter wires up all HTTP routes, middleware, and handlers
func NewRouter(cfg app.Config, logger *slog.Logger, gw *ws.Gateway) http.Handler {
	mw := NewMiddleware(cfg)

	mux := http.NewServeMux()

	// Health / readiness / metrics
	mux.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/readyz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/metrics", metrics.Handler())

	// WebSocket endpoint
	mux.Handle("/ws", http.HandlerFunc(gw.ServeWS))

	// CORS + rate limit applied globally
	return mw.Wrap(mux)
}
