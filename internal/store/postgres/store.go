// Package postgres implements core.Store on PostgreSQL through pgx.
package postgres

import (
	"context"

	"distribution-backend/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func New(pool *pgxpool.Pool, logger *zap.Logger) *Store {
	return &Store{pool: pool, logger: logger.Named("postgres")}
}

// InTx runs fn in a read-committed transaction. Rows read through the unit
// of work's repositories are locked with FOR UPDATE, so concurrent writers
// on the same items or issuance queue behind each other instead of racing.
func (s *Store) InTx(ctx context.Context, fn func(uow core.UnitOfWork) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return mapError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&unitOfWork{q: tx, lock: true}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return mapError("commit transaction", err)
	}
	return nil
}

// View runs fn in a read-only repeatable-read transaction so multi-query
// reads see one snapshot.
func (s *Store) View(ctx context.Context, fn func(uow core.UnitOfWork) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return mapError("begin read transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&unitOfWork{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit read transaction", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return mapError("ping database", err)
	}
	return nil
}

type unitOfWork struct {
	q    querier
	lock bool
}

func (u *unitOfWork) Items() core.ItemRepository                 { return &itemRepo{q: u.q, lock: u.lock} }
func (u *unitOfWork) Customers() core.CustomerRepository         { return &customerRepo{q: u.q} }
func (u *unitOfWork) Issuances() core.IssuanceRepository         { return &issuanceRepo{q: u.q, lock: u.lock} }
func (u *unitOfWork) Distributions() core.DistributionRepository { return &distributionRepo{q: u.q} }
func (u *unitOfWork) Sequences() core.SequenceRepository         { return &sequenceRepo{q: u.q} }

// forUpdate returns the row-locking suffix for write units of work.
func forUpdate(lock bool) string {
	if lock {
		return " FOR UPDATE"
	}
	return ""
}
