package app

import (
	"context"
	"strings"
	"time"

	"distribution-backend/internal/core"
)

// IssuanceDefaults are applied to issuance requests that leave them unset.
type IssuanceDefaults struct {
	HandlingFeePerUnit int64
}

type appService struct {
	store            core.Store
	inventoryService core.InventoryService
	issuanceService  core.IssuanceService
	clock            core.Clock
	defaults         IssuanceDefaults
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	store core.Store,
	inventoryService core.InventoryService,
	issuanceService core.IssuanceService,
	clock core.Clock,
	defaults IssuanceDefaults,
) ApplicationService {
	return &appService{
		store:            store,
		inventoryService: inventoryService,
		issuanceService:  issuanceService,
		clock:            clock,
		defaults:         defaults,
	}
}

func (s *appService) Health(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// ListItems returns the item catalog.
func (s *appService) ListItems(ctx context.Context) (*ItemListResult, error) {
	items, err := s.inventoryService.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	return &ItemListResult{Items: items}, nil
}

func (s *appService) GetItem(ctx context.Context, id int64) (*core.Item, error) {
	return s.inventoryService.GetItem(ctx, id)
}

func (s *appService) CreateItem(ctx context.Context, req CreateItemRequest) (*core.Item, error) {
	return s.inventoryService.CreateItem(ctx, core.NewItemInput{
		Name:         req.Name,
		Unit:         req.Unit,
		UnitCost:     req.UnitCost,
		InitialStock: req.InitialStock,
	})
}

func (s *appService) ReceiveStock(ctx context.Context, req ReceiveStockRequest) (*core.Item, error) {
	return s.inventoryService.ReceiveStock(ctx, req.ItemID, req.Quantity)
}

func (s *appService) DeleteItem(ctx context.Context, id int64) error {
	return s.inventoryService.DeleteItem(ctx, id)
}

// ListCustomers returns all customers.
func (s *appService) ListCustomers(ctx context.Context) (*CustomerListResult, error) {
	customers, err := s.issuanceService.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	return &CustomerListResult{Customers: customers}, nil
}

func (s *appService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*core.Customer, error) {
	return s.issuanceService.CreateCustomer(ctx, core.NewCustomerInput{Name: req.Name, Address: req.Address})
}

func (s *appService) DeleteCustomer(ctx context.Context, id int64) error {
	return s.issuanceService.DeleteCustomer(ctx, id)
}

// CreateIssuance files a new goods issuance.
func (s *appService) CreateIssuance(ctx context.Context, req IssuanceRequest) (*core.IssuanceResult, error) {
	draft, err := s.toDraft(req)
	if err != nil {
		return nil, err
	}
	return s.issuanceService.Create(ctx, draft)
}

// UpdateIssuance replaces an existing issuance.
func (s *appService) UpdateIssuance(ctx context.Context, id int64, req IssuanceRequest) (*core.IssuanceResult, error) {
	draft, err := s.toDraft(req)
	if err != nil {
		return nil, err
	}
	return s.issuanceService.Update(ctx, id, draft)
}

func (s *appService) DeleteIssuance(ctx context.Context, id int64) error {
	return s.issuanceService.Delete(ctx, id)
}

func (s *appService) GetIssuanceForEdit(ctx context.Context, id int64) (*core.IssuanceEditView, error) {
	return s.issuanceService.GetForEdit(ctx, id)
}

// ListIssuances returns issuances for a period, newest first.
func (s *appService) ListIssuances(ctx context.Context, year, month int) (*IssuanceListResult, error) {
	issuances, err := s.issuanceService.List(ctx, core.IssuanceFilter{Year: year, Month: month})
	if err != nil {
		return nil, err
	}
	return &IssuanceListResult{Issuances: issuances, Year: year, Month: month}, nil
}

func (s *appService) SetPaymentStatus(ctx context.Context, id int64, status string) (*core.FinancialDistribution, error) {
	return s.issuanceService.SetPaymentStatus(ctx, id, core.PaymentStatus(strings.ToLower(strings.TrimSpace(status))))
}

// ProfitSharingReport returns the owner and reserve totals of a period.
func (s *appService) ProfitSharingReport(ctx context.Context, year, month int) (*core.PeriodSummary, error) {
	return s.issuanceService.PeriodSummary(ctx, year, month)
}

// toDraft converts a request into a core draft, applying defaults.
func (s *appService) toDraft(req IssuanceRequest) (core.IssuanceDraft, error) {
	issueDate := s.clock.Now()
	if raw := strings.TrimSpace(req.IssueDate); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return core.IssuanceDraft{}, core.Validationf("issue_date %q is not a valid date, expected YYYY-MM-DD", raw)
		}
		issueDate = parsed
	}

	fee := s.defaults.HandlingFeePerUnit
	if req.FeeRatePerUnit != nil {
		fee = *req.FeeRatePerUnit
	}

	var poRef *string
	if ref := strings.TrimSpace(req.PurchaseOrderRef); ref != "" {
		poRef = &ref
	}

	lines := make([]core.LineDraft, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = core.LineDraft{ItemID: l.ItemID, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
	}

	return core.IssuanceDraft{
		CustomerID:       req.CustomerID,
		IssueDate:        issueDate,
		Lines:            lines,
		ShippingCharge:   req.ShippingCharge,
		PaymentStatus:    core.PaymentStatus(strings.ToLower(strings.TrimSpace(req.PaymentStatus))),
		PurchaseOrderRef: poRef,
		FeeRatePerUnit:   fee,
	}, nil
}
