package core

import "context"

// Store is the persistence handle the services are constructed with.
//
// InTx runs fn inside one atomic unit of work: either every write fn makes is
// committed or none is. Item and issuance rows read through a write unit of
// work stay locked until it ends. View runs fn against a consistent read-only
// snapshot.
type Store interface {
	InTx(ctx context.Context, fn func(uow UnitOfWork) error) error
	View(ctx context.Context, fn func(uow UnitOfWork) error) error
	Ping(ctx context.Context) error
}

// UnitOfWork groups the repositories bound to one transaction.
type UnitOfWork interface {
	Items() ItemRepository
	Customers() CustomerRepository
	Issuances() IssuanceRepository
	Distributions() DistributionRepository
	Sequences() SequenceRepository
}

type ItemRepository interface {
	// FindMany returns the items that exist among ids, keyed by id. Missing
	// ids are simply absent. Rows are locked in ascending id order.
	FindMany(ctx context.Context, ids []int64) (map[int64]Item, error)
	Get(ctx context.Context, id int64) (*Item, error)
	List(ctx context.Context) ([]Item, error)
	Create(ctx context.Context, item Item) (*Item, error)
	// AdjustStock adds delta to on-hand and returns the new quantity. It fails
	// with *InsufficientStockError instead of going below zero.
	AdjustStock(ctx context.Context, id, delta int64) (int64, error)
	Delete(ctx context.Context, id int64) error
	IsReferenced(ctx context.Context, id int64) (bool, error)
}

type CustomerRepository interface {
	Get(ctx context.Context, id int64) (*Customer, error)
	List(ctx context.Context) ([]Customer, error)
	Create(ctx context.Context, c Customer) (*Customer, error)
	Delete(ctx context.Context, id int64) error
	IsReferenced(ctx context.Context, id int64) (bool, error)
}

type IssuanceRepository interface {
	// Get returns the header with its lines, ordered by line number.
	Get(ctx context.Context, id int64) (*Issuance, error)
	// Insert stores the header and sets iss.ID.
	Insert(ctx context.Context, iss *Issuance) error
	UpdateHeader(ctx context.Context, iss *Issuance) error
	// InsertLines stores lines for issuanceID and sets their IDs.
	InsertLines(ctx context.Context, issuanceID int64, lines []IssuanceLine) error
	DeleteLines(ctx context.Context, issuanceID int64) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter IssuanceFilter) ([]IssuanceSummary, error)
}

type DistributionRepository interface {
	GetByIssuance(ctx context.Context, issuanceID int64) (*FinancialDistribution, error)
	Insert(ctx context.Context, d *FinancialDistribution) error
	// Update rewrites the existing row for d.IssuanceID in place.
	Update(ctx context.Context, d *FinancialDistribution) error
	DeleteByIssuance(ctx context.Context, issuanceID int64) error
	Summarize(ctx context.Context, year, month int) (*PeriodSummary, error)
}

// SequenceScope is the counter scope of document numbers.
type SequenceScope struct {
	Unit  string
	Year  int
	Month int
}

type SequenceRepository interface {
	// Next atomically advances the counter of scope and returns the new value.
	// A scope's counter starts at the number of issuances already in it.
	Next(ctx context.Context, scope SequenceScope) (int64, error)
}
