// Package bootstrap wires configuration into a running application: store,
// audit pipeline and services. Both binaries share it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"distribution-backend/internal/app"
	"distribution-backend/internal/audit"
	"distribution-backend/internal/config"
	"distribution-backend/internal/core"
	"distribution-backend/internal/db"
	"distribution-backend/internal/store/memory"
	"distribution-backend/internal/store/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Runtime is a fully wired application. Close releases everything it holds.
type Runtime struct {
	Service    app.ApplicationService
	Store      core.Store
	Pool       *pgxpool.Pool // nil with the memory driver
	Dispatcher *audit.Dispatcher

	cfg     *config.Config
	logger  *zap.Logger
	closers []func() error
}

// Build opens the configured store, starts the audit dispatcher and
// constructs the services.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	rt := &Runtime{cfg: cfg, logger: logger}

	store, err := rt.openStore(ctx)
	if err != nil {
		return nil, err
	}
	rt.Store = store

	sinks := []audit.Sink{audit.NewLogSink(logger)}
	if cfg.Redis.Enabled {
		sink, err := audit.NewRedisStreamSink(ctx, audit.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Stream:   cfg.Redis.Stream,
			MaxLen:   cfg.Redis.MaxLen,
		})
		if err != nil {
			rt.closeAll()
			return nil, fmt.Errorf("audit redis sink: %w", err)
		}
		rt.closers = append(rt.closers, sink.Close)
		sinks = append(sinks, sink)
	}

	rt.Dispatcher = audit.NewDispatcher(audit.Config{
		BufferSize:   cfg.Audit.BufferSize,
		Workers:      cfg.Audit.Workers,
		WriteTimeout: cfg.Audit.WriteTimeout,
	}, logger, sinks...)
	rt.Dispatcher.Start(ctx)

	clock := core.SystemClock()
	inventory := core.NewInventoryService(store, rt.Dispatcher, clock, logger)
	issuances := core.NewIssuanceService(store, core.NewDocumentNumberGenerator(cfg.Issuance.OrganizationalUnit), rt.Dispatcher, clock, logger)
	rt.Service = app.NewAppService(store, inventory, issuances, clock, app.IssuanceDefaults{
		HandlingFeePerUnit: cfg.Issuance.HandlingFeePerUnit,
	})

	return rt, nil
}

func (rt *Runtime) openStore(ctx context.Context) (core.Store, error) {
	if rt.cfg.Database.Driver == config.DriverMemory {
		rt.logger.Warn("using in-memory store, data is lost on exit")
		return memory.New(), nil
	}

	pool, err := db.NewPool(ctx, rt.cfg.Database)
	if err != nil {
		return nil, err
	}
	rt.Pool = pool
	rt.closers = append(rt.closers, func() error { pool.Close(); return nil })

	if rt.cfg.Database.Migrate {
		m, err := db.NewMigrator(pool, rt.logger)
		if err != nil {
			rt.closeAll()
			return nil, err
		}
		err = m.Up()
		if cerr := m.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			rt.closeAll()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
	}

	return postgres.New(pool, rt.logger), nil
}

// Migrator opens a schema migrator on the runtime's pool.
func (rt *Runtime) Migrator() (*db.Migrator, error) {
	if rt.Pool == nil {
		return nil, errors.New("migrations require the postgres driver")
	}
	return db.NewMigrator(rt.Pool, rt.logger)
}

// Close drains the audit queue within the configured shutdown timeout and
// then releases connections.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if rt.Dispatcher != nil {
		stopCtx, cancel := context.WithTimeout(ctx, rt.cfg.Audit.ShutdownTimeout)
		defer cancel()
		if err := rt.Dispatcher.Stop(stopCtx); err != nil {
			errs = append(errs, fmt.Errorf("stop audit dispatcher: %w", err))
		}
	}
	if err := rt.closeAll(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (rt *Runtime) closeAll() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
