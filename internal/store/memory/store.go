// Package memory is an in-process implementation of core.Store. Write units
// of work are serialized and operate on a private copy of the state that
// replaces the shared state only when the callback succeeds.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"distribution-backend/internal/core"
)

type state struct {
	items         map[int64]core.Item
	customers     map[int64]core.Customer
	issuances     map[int64]core.Issuance
	lines         map[int64][]core.IssuanceLine
	distributions map[int64]core.FinancialDistribution // keyed by issuance id
	sequences     map[core.SequenceScope]int64
	lastID        map[string]int64
}

func newState() *state {
	return &state{
		items:         map[int64]core.Item{},
		customers:     map[int64]core.Customer{},
		issuances:     map[int64]core.Issuance{},
		lines:         map[int64][]core.IssuanceLine{},
		distributions: map[int64]core.FinancialDistribution{},
		sequences:     map[core.SequenceScope]int64{},
		lastID:        map[string]int64{},
	}
}

func (s *state) clone() *state {
	c := &state{
		items:         maps.Clone(s.items),
		customers:     maps.Clone(s.customers),
		issuances:     maps.Clone(s.issuances),
		lines:         make(map[int64][]core.IssuanceLine, len(s.lines)),
		distributions: maps.Clone(s.distributions),
		sequences:     maps.Clone(s.sequences),
		lastID:        maps.Clone(s.lastID),
	}
	for id, ls := range s.lines {
		c.lines[id] = slices.Clone(ls)
	}
	return c
}

func (s *state) nextID(table string) int64 {
	s.lastID[table]++
	return s.lastID[table]
}

// Store keeps all data in memory. The zero value is not usable; call New.
type Store struct {
	mu   sync.Mutex
	data *state
}

func New() *Store {
	return &Store{data: newState()}
}

// InTx runs fn against a copy of the current state and publishes the copy
// only if fn returns nil. Write units of work never overlap.
func (s *Store) InTx(ctx context.Context, fn func(uow core.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(&unitOfWork{st: work}); err != nil {
		return err
	}
	s.data = work
	return nil
}

// View runs fn against a snapshot; anything fn writes is discarded.
func (s *Store) View(ctx context.Context, fn func(uow core.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()
	return fn(&unitOfWork{st: snapshot})
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

type unitOfWork struct {
	st *state
}

func (u *unitOfWork) Items() core.ItemRepository                 { return itemRepo{u.st} }
func (u *unitOfWork) Customers() core.CustomerRepository         { return customerRepo{u.st} }
func (u *unitOfWork) Issuances() core.IssuanceRepository         { return issuanceRepo{u.st} }
func (u *unitOfWork) Distributions() core.DistributionRepository { return distributionRepo{u.st} }
func (u *unitOfWork) Sequences() core.SequenceRepository         { return sequenceRepo{u.st} }
