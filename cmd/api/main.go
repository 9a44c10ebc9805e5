package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"instadoc-admin/internal/platform/config"
	"instadoc-admin/internal/platform/logger"
	"instadoc-admin/internal/router"
)

func main() {
	log := logger.NewFromEnv()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("config load failed", logger.Err(err))
		os.Exit(1)
	}

	app, err := router.New(router.Options{Config: cfg, Log: log})
	if err != nil {
		log.Error("startup failed", logger.Err(err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      app.Handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("starting server", map[string]any{"addr": cfg.Server.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", logger.Err(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", logger.Err(err))
	}
	app.Close()
}
