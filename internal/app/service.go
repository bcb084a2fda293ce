package app

import (
	"context"

	"distribution-backend/internal/core"
)

// ApplicationService is the single interface all adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println and no display logic of any kind.
type ApplicationService interface {
	// Health reports whether the backing store is reachable.
	Health(ctx context.Context) error

	// ListItems returns the item catalog ordered by id.
	ListItems(ctx context.Context) (*ItemListResult, error)

	// GetItem returns a single item.
	GetItem(ctx context.Context, id int64) (*core.Item, error)

	// CreateItem registers a new item with optional opening stock.
	CreateItem(ctx context.Context, req CreateItemRequest) (*core.Item, error)

	// ReceiveStock adds a received quantity to an item's on-hand stock.
	ReceiveStock(ctx context.Context, req ReceiveStockRequest) (*core.Item, error)

	// DeleteItem removes an item that no issuance line references.
	DeleteItem(ctx context.Context, id int64) error

	// ListCustomers returns all customers ordered by id.
	ListCustomers(ctx context.Context) (*CustomerListResult, error)

	// CreateCustomer registers a new customer.
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*core.Customer, error)

	// DeleteCustomer removes a customer that no issuance references.
	DeleteCustomer(ctx context.Context, id int64) error

	// CreateIssuance files a new goods issuance: assigns its document number,
	// deducts stock and records its financial distribution atomically.
	CreateIssuance(ctx context.Context, req IssuanceRequest) (*core.IssuanceResult, error)

	// UpdateIssuance replaces an issuance's customer, date, lines and charges.
	// The document number never changes.
	UpdateIssuance(ctx context.Context, id int64, req IssuanceRequest) (*core.IssuanceResult, error)

	// DeleteIssuance removes an issuance and returns its quantities to stock.
	DeleteIssuance(ctx context.Context, id int64) error

	// GetIssuanceForEdit returns an issuance with everything an edit form needs.
	GetIssuanceForEdit(ctx context.Context, id int64) (*core.IssuanceEditView, error)

	// ListIssuances returns issuances newest first. Zero year/month match all.
	ListIssuances(ctx context.Context, year, month int) (*IssuanceListResult, error)

	// SetPaymentStatus marks an issuance's distribution paid or unpaid.
	SetPaymentStatus(ctx context.Context, id int64, status string) (*core.FinancialDistribution, error)

	// ProfitSharingReport aggregates the owner and reserve shares of a period.
	ProfitSharingReport(ctx context.Context, year, month int) (*core.PeriodSummary, error)
}
