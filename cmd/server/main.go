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

	app "kickabout/internal/app"
	httpx "kickabout/internal/http"
	relay "kickabout/internal/relay"
	room "kickabout/internal/room"
	ws "kickabout/internal/ws"
	auth "kickabout/pkg/auth"
)

func main() {
	// Load local .env (dev only)
	_ = godotenv.Load()

	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg.Env)

	// Cancel on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Room registry; every room runs on its own goroutine
	reg := room.NewRegistry(logger)

	// Relay bus: cross-instance chat + room directory. Standalone
	// deployments skip Redis entirely.
	var bus relay.Bus = relay.NoopBus{}
	if cfg.RedisAddr != "" {
		rb, err := relay.NewRedisBus(ctx, cfg, logger, reg)
		if err != nil {
			logger.Error("redis connect", "err", err)
			log.Fatal(err)
		}
		reg.SetEventSink(rb.Emit)
		go rb.Run(ctx)
		bus = rb
	}
	defer bus.Close()

	// HTTP + WS router
	wsh := ws.NewHandler(logger, reg, auth.New(cfg.JWTSecret))
	router := httpx.NewRouter(cfg, logger, reg, bus, wsh)
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
	reg.CloseAll()

	logger.Info("server.shutdown.complete")
	_ = os.Stdout.Sync()
}
