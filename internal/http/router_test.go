package httpx

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"log/slog"

	"github.com/stretchr/testify/assert"

	"github.com/UTKARSHJHA-2005/CODIFY/internal/app"
	"github.com/UTKARSHJHA-2005/CODIFY/internal/room"
	"github.com/UTKARSHJHA-2005/CODIFY/internal/ws"
)

func testRouter() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := app.Config{CORSAllow: []string{"http://localhost:5173"}}
	coord := room.NewCoordinator(logger, nil)
	gw := ws.NewGateway(logger, coord, nil)
	return NewRouter(cfg, logger, gw)
}

func TestHealthEndpoints(t *testing.T) {
	router := testRouter()

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := testRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "codify_rooms_active")
}

func TestCORSPreflight(t *testing.T) {
	router := testRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ws", nil)
	req.RemoteAddr = "10.0.0.3:1234"
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
