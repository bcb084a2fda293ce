package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webAdapter "distribution-backend/internal/adapters/web"
	"distribution-backend/internal/bootstrap"
	"distribution-backend/internal/config"
	"distribution-backend/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(context.Background()); err != nil {
			log.Error("shutdown", zap.Error(err))
		}
	}()

	if cfg.Auth.JWTSecret == "" {
		log.Warn("auth.jwt_secret is not set, API requests are not authenticated")
	}

	srv := &http.Server{
		Addr: ":" + cfg.App.Port,
		Handler: webAdapter.NewHandler(rt.Service, log, webAdapter.Options{
			AllowedOrigins: cfg.App.AllowedOrigins,
			JWTSecret:      cfg.Auth.JWTSecret,
			JWTIssuer:      cfg.Auth.Issuer,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env),
			zap.String("driver", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
