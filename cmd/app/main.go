package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"distribution-backend/internal/adapters/cli"
	"distribution-backend/internal/app"
	"distribution-backend/internal/bootstrap"
	"distribution-backend/internal/config"
	"distribution-backend/internal/db"
	"distribution-backend/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	// stdout belongs to command output.
	output := cfg.Log.Output
	if output == "stdout" {
		output = "stderr"
	}
	log, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: output})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var rt *bootstrap.Runtime
	defer func() {
		if rt == nil {
			return
		}
		if err := rt.Close(context.Background()); err != nil {
			log.Error("shutdown", zap.Error(err))
		}
	}()

	env := cli.Environment{
		Service: func(ctx context.Context) (app.ApplicationService, error) {
			if rt == nil {
				built, err := bootstrap.Build(ctx, cfg, log)
				if err != nil {
					return nil, err
				}
				rt = built
			}
			return rt.Service, nil
		},
		Migrator: func(ctx context.Context) (cli.Migrator, error) {
			if cfg.Database.Driver != config.DriverPostgres {
				return nil, errors.New("migrations require the postgres driver")
			}
			pool, err := db.NewPool(ctx, cfg.Database)
			if err != nil {
				return nil, err
			}
			m, err := db.NewMigrator(pool, log)
			if err != nil {
				pool.Close()
				return nil, err
			}
			return &pooledMigrator{Migrator: m, pool: pool}, nil
		},
		JWTSecret: cfg.Auth.JWTSecret,
		JWTIssuer: cfg.Auth.Issuer,
	}

	if err := cli.NewRootCommand(env).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// pooledMigrator owns the pool it migrates through.
type pooledMigrator struct {
	*db.Migrator
	pool *pgxpool.Pool
}

func (m *pooledMigrator) Close() error {
	err := m.Migrator.Close()
	m.pool.Close()
	return err
}
