package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/UTKARSHJHA-2005/CODIFY/internal/ai"
	"github.com/UTKARSHJHA-2005/CODIFY/internal/app"
	httpx "github.com/UTKARSHJHA-2005/CODIFY/internal/http"
	"github.com/UTKARSHJHA-2005/CODIFY/internal/room"
	"github.com/UTKARSHJHA-2005/CODIFY/internal/ws"
)

func main() {
	// Load local .env (dev only)
	_ = godotenv.Load()

	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg.Env)

	// Cancel on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Optional redis bus for cross-instance fanout
	var bus room.Bus
	var rb *ws.RedisBus
	if cfg.RedisAddr != "" {
		var err error
		rb, err = ws.NewRedisBus(ctx, cfg, logger)
		if err != nil {
			logger.Error("redis connect", "err", err)
			log.Fatal(err)
		}
		defer rb.Close()
		bus = rb
	}

	// Room coordinator + websocket gateway
	coord := room.NewCoordinator(logger, bus)
	if rb != nil {
		go rb.Subscribe(ctx, coord.ApplyRemote)
	}
	gw := ws.NewGateway(logger, coord, ai.New(cfg, logger))

	// HTTP + WS router
	router := httpx.NewRouter(cfg, logger, gw)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("server.listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server.crash", "err", err)
			cancel()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("server.shutdown.start")

	// shutdown
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)

	logger.Info("server.shutdown.complete")
	_ = os.Stdout.Sync()
}
