package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"shopadmin_server/api"
	"shopadmin_server/clients"
	"shopadmin_server/config"
	"shopadmin_server/live"
	"shopadmin_server/services"
	"shopadmin_server/structs"
	"syscall"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/joho/godotenv"
)

const draftSweepInterval = 5 * time.Minute

var logger *gecho.Logger
var cfg *structs.Config

// init function to load environment variables and initialize logger and config
func init() {
	envErr := godotenv.Load()

	cfg = config.GetConfig()
	logger = config.InitializeLogger()

	if envErr != nil {
		logger.Warn("No .env file found or error loading .env file, proceeding with system environment variables")
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := clients.NewBackend(cfg.Backend, logger)

	channel, err := live.New(cfg.Live, backend.BaseURL(), logger)
	if err != nil {
		logger.Fatal("Failed to set up live channel", gecho.Field("error", err))
	}

	sm := services.NewServiceManager(logger, cfg, backend, channel)
	if err := sm.OrderService.Start(ctx); err != nil {
		logger.Error("Live order updates unavailable", gecho.Field("error", err))
	}
	go sm.DraftService.RunSweeper(ctx, draftSweepInterval)

	srv := &http.Server{
		Addr:           cfg.Server.Port,
		Handler:        api.App(cfg, sm, backend.BaseURL()),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		logger.Info(fmt.Sprintf("Starting server (%s) on %s", cfg.Server.AppName, cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to start server", gecho.Field("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// event streams end once their subscriptions close
	sm.OrderService.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", gecho.Field("error", err))
	}
	if err := channel.Close(); err != nil {
		logger.Warn("Failed to close live channel", gecho.Field("error", err))
	}
	logger.Info("Server stopped")
}
