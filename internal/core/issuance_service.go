package core

import (
	"context"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
)

// dueGraceMonths is the payment term: due date = issue date + 1 calendar month.
const dueGraceMonths = 1

// NewCustomerInput is the input for registering a customer.
type NewCustomerInput struct {
	Name    string `validate:"required,max=200"`
	Address string `validate:"max=500"`
}

// IssuanceService runs the goods-issuance lifecycle. Create, Update and
// Delete each execute as one unit of work; an error means nothing was written.
type IssuanceService interface {
	// Master data
	CreateCustomer(ctx context.Context, in NewCustomerInput) (*Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
	GetCustomer(ctx context.Context, id int64) (*Customer, error)
	// DeleteCustomer removes a customer that no issuance references.
	DeleteCustomer(ctx context.Context, id int64) error

	// Issuance lifecycle
	Create(ctx context.Context, draft IssuanceDraft) (*IssuanceResult, error)
	// Update replaces customer, date, lines and charges of an issuance. Stock
	// held by the old lines counts as available to the new ones.
	Update(ctx context.Context, id int64, draft IssuanceDraft) (*IssuanceResult, error)
	// Delete removes the issuance and returns its quantities to stock.
	Delete(ctx context.Context, id int64) error
	SetPaymentStatus(ctx context.Context, id int64, status PaymentStatus) (*FinancialDistribution, error)

	// Queries
	GetForEdit(ctx context.Context, id int64) (*IssuanceEditView, error)
	List(ctx context.Context, filter IssuanceFilter) ([]IssuanceSummary, error)
	PeriodSummary(ctx context.Context, year, month int) (*PeriodSummary, error)
}

type issuanceService struct {
	store   Store
	numbers *DocumentNumberGenerator
	audit   AuditPublisher
	clock   Clock
	logger  *zap.Logger
}

func NewIssuanceService(store Store, numbers *DocumentNumberGenerator, audit AuditPublisher, clock Clock, logger *zap.Logger) IssuanceService {
	return &issuanceService{
		store:   store,
		numbers: numbers,
		audit:   audit,
		clock:   clock,
		logger:  logger.Named("issuance"),
	}
}

// issuanceSnapshot is the audit payload for issuance events.
type issuanceSnapshot struct {
	Issuance     Issuance              `json:"issuance"`
	Distribution FinancialDistribution `json:"distribution"`
}

// ── Master data ──────────────────────────────────────────────────────────────

func (s *issuanceService) CreateCustomer(ctx context.Context, in NewCustomerInput) (*Customer, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	var created *Customer
	err := s.store.InTx(ctx, func(uow UnitOfWork) error {
		var err error
		created, err = uow.Customers().Create(ctx, Customer{Name: in.Name, Address: in.Address})
		return err
	})
	if err != nil {
		return nil, logFailure(s.logger, "create customer", err)
	}

	s.audit.Publish(ctx, newAuditEvent(ctx, s.clock, AuditCustomerCreated, "customer", created.ID, nil, created))
	return created, nil
}

func (s *issuanceService) ListCustomers(ctx context.Context) ([]Customer, error) {
	var customers []Customer
	err := s.store.View(ctx, func(uow UnitOfWork) error {
		var err error
		customers, err = uow.Customers().List(ctx)
		return err
	})
	if err != nil {
		return nil, logFailure(s.logger, "list customers", err)
	}
	return customers, nil
}

func (s *issuanceService) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	var c *Customer
	err := s.store.View(ctx, func(uow UnitOfWork) error {
		var err error
		c, err = uow.Customers().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, logFailure(s.logger, "get customer", err)
	}
	return c, nil
}

func (s *issuanceService) DeleteCustomer(ctx context.Context, id int64) error {
	var before *Customer
	err := s.store.InTx(ctx, func(uow UnitOfWork) error {
		var err error
		before, err = uow.Customers().Get(ctx, id)
		if err != nil {
			return err
		}
		referenced, err := uow.Customers().IsReferenced(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return Conflictf("customer %d is referenced by existing issuances and cannot be deleted", id)
		}
		return uow.Customers().Delete(ctx, id)
	})
	if err != nil {
		return logFailure(s.logger, "delete customer", err)
	}

	s.audit.Publish(ctx, newAuditEvent(ctx, s.clock, AuditCustomerDeleted, "customer", id, before, nil))
	return nil
}

// ── Issuance lifecycle ───────────────────────────────────────────────────────

func (s *issuanceService) Create(ctx context.Context, draft IssuanceDraft) (*IssuanceResult, error) {
	draft = normalizeDraft(draft)
	if draft.PaymentStatus == "" {
		draft.PaymentStatus = PaymentUnpaid
	}
	if err := ValidateDraft(draft); err != nil {
		return nil, err
	}
	demand, err := draftDemand(draft.Lines)
	if err != nil {
		return nil, err
	}

	var (
		created Issuance
		dist    FinancialDistribution
		fin     Financials
	)
	err = s.store.InTx(ctx, func(uow UnitOfWork) error {
		customer, err := uow.Customers().Get(ctx, draft.CustomerID)
		if err != nil {
			return err
		}

		catalog := NewCatalog(uow.Items())
		items, err := catalog.FindMany(ctx, sortedKeys(demand))
		if err != nil {
			return err
		}
		if err := checkStock(items, demand, nil); err != nil {
			return err
		}
		fin, err = Calculate(costedLines(draft.Lines, items), draft.FeeRatePerUnit, draft.ShippingCharge)
		if err != nil {
			return err
		}

		number, err := s.numbers.Next(ctx, uow.Sequences(), draft.IssueDate, draft.PurchaseOrderRef)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		created = Issuance{
			CustomerID:         customer.ID,
			CustomerName:       customer.Name,
			DocumentNumber:     number,
			OrganizationalUnit: s.numbers.Unit(),
			PurchaseOrderRef:   draft.PurchaseOrderRef,
			IssueDate:          draft.IssueDate,
			DueDate:            AddMonths(draft.IssueDate, dueGraceMonths),
			GrossRevenue:       fin.GrossRevenue,
			CostOfGoods:        fin.CostOfGoods,
			GrossMargin:        fin.GrossMargin,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := uow.Issuances().Insert(ctx, &created); err != nil {
			return err
		}
		created.Lines = buildLines(draft.Lines, items)
		if err := uow.Issuances().InsertLines(ctx, created.ID, created.Lines); err != nil {
			return err
		}
		for _, id := range sortedKeys(demand) {
			if _, err := catalog.AdjustStock(ctx, id, -demand[id]); err != nil {
				return err
			}
		}

		dist = distributionFor(created.ID, draft, fin, now)
		return uow.Distributions().Insert(ctx, &dist)
	})
	if err != nil {
		return nil, logFailure(s.logger, "create issuance", err)
	}

	s.logger.Info("issuance created",
		zap.Int64("issuance_id", created.ID),
		zap.String("document_number", created.DocumentNumber),
		zap.Int64("running_margin", fin.RunningMargin),
	)
	s.audit.Publish(ctx, newAuditEvent(ctx, s.clock, AuditIssuanceCreated, "issuance", created.ID,
		nil, issuanceSnapshot{Issuance: created, Distribution: dist}))
	return resultOf(created, dist, fin), nil
}

func (s *issuanceService) Update(ctx context.Context, id int64, draft IssuanceDraft) (*IssuanceResult, error) {
	draft = normalizeDraft(draft)
	if err := ValidateDraft(draft); err != nil {
		return nil, err
	}
	demand, err := draftDemand(draft.Lines)
	if err != nil {
		return nil, err
	}

	var (
		before, after Issuance
		oldDist, dist FinancialDistribution
		fin           Financials
	)
	err = s.store.InTx(ctx, func(uow UnitOfWork) error {
		existing, err := uow.Issuances().Get(ctx, id)
		if err != nil {
			return err
		}
		current, err := uow.Distributions().GetByIssuance(ctx, id)
		if err != nil {
			return err
		}
		before, oldDist = *existing, *current

		customer, err := uow.Customers().Get(ctx, draft.CustomerID)
		if err != nil {
			return err
		}

		catalog := NewCatalog(uow.Items())
		held := lineDemand(existing.Lines)
		items, err := catalog.FindMany(ctx, sortedKeys(demand, held))
		if err != nil {
			return err
		}
		// Restore-then-check: what this issuance already holds counts as available.
		if err := checkStock(items, demand, held); err != nil {
			return err
		}

		fin, err = Calculate(costedLines(draft.Lines, items), draft.FeeRatePerUnit, draft.ShippingCharge)
		if err != nil {
			return err
		}
		now := s.clock.Now()

		for _, itemID := range sortedKeys(held) {
			if _, err := catalog.AdjustStock(ctx, itemID, held[itemID]); err != nil {
				return err
			}
		}
		if err := uow.Issuances().DeleteLines(ctx, id); err != nil {
			return err
		}

		after = *existing
		after.CustomerID = customer.ID
		after.CustomerName = customer.Name
		after.PurchaseOrderRef = draft.PurchaseOrderRef
		after.IssueDate = draft.IssueDate
		after.DueDate = AddMonths(draft.IssueDate, dueGraceMonths)
		after.GrossRevenue = fin.GrossRevenue
		after.CostOfGoods = fin.CostOfGoods
		after.GrossMargin = fin.GrossMargin
		after.UpdatedAt = now
		if err := uow.Issuances().UpdateHeader(ctx, &after); err != nil {
			return err
		}
		after.Lines = buildLines(draft.Lines, items)
		if err := uow.Issuances().InsertLines(ctx, id, after.Lines); err != nil {
			return err
		}
		for _, itemID := range sortedKeys(demand) {
			if _, err := catalog.AdjustStock(ctx, itemID, -demand[itemID]); err != nil {
				return err
			}
		}

		dist = distributionFor(id, draft, fin, now)
		dist.ID = current.ID
		if draft.PaymentStatus == "" {
			dist.PaymentStatus = current.PaymentStatus
		}
		return uow.Distributions().Update(ctx, &dist)
	})
	if err != nil {
		return nil, logFailure(s.logger, "update issuance", err)
	}

	s.logger.Info("issuance updated",
		zap.Int64("issuance_id", id),
		zap.String("document_number", after.DocumentNumber),
		zap.Int64("running_margin", fin.RunningMargin),
	)
	s.audit.Publish(ctx, newAuditEvent(ctx, s.clock, AuditIssuanceUpdated, "issuance", id,
		issuanceSnapshot{Issuance: before, Distribution: oldDist},
		issuanceSnapshot{Issuance: after, Distribution: dist}))
	return resultOf(after, dist, fin), nil
}

func (s *issuanceService) Delete(ctx context.Context, id int64) error {
	var snapshot issuanceSnapshot
	err := s.store.InTx(ctx, func(uow UnitOfWork) error {
		existing, err := uow.Issuances().Get(ctx, id)
		if err != nil {
			return err
		}
		dist, err := uow.Distributions().GetByIssuance(ctx, id)
		if err != nil {
			return err
		}
		snapshot = issuanceSnapshot{Issuance: *existing, Distribution: *dist}

		catalog := NewCatalog(uow.Items())
		held := lineDemand(existing.Lines)
		for _, itemID := range sortedKeys(held) {
			if _, err := catalog.AdjustStock(ctx, itemID, held[itemID]); err != nil {
				return err
			}
		}
		if err := uow.Distributions().DeleteByIssuance(ctx, id); err != nil {
			return err
		}
		if err := uow.Issuances().DeleteLines(ctx, id); err != nil {
			return err
		}
		return uow.Issuances().Delete(ctx, id)
	})
	if err != nil {
		return logFailure(s.logger, "delete issuance", err)
	}

	s.logger.Info("issuance deleted",
		zap.Int64("issuance_id", id),
		zap.String("document_number", snapshot.Issuance.DocumentNumber),
	)
	s.audit.Publish(ctx, newAuditEvent(ctx, s.clock, AuditIssuanceDeleted, "issuance", id, snapshot, nil))
	return nil
}

func (s *issuanceService) SetPaymentStatus(ctx context.Context, id int64, status PaymentStatus) (*FinancialDistribution, error) {
	if !status.Valid() {
		return nil, Validationf("payment status must be one of [unpaid paid], got %q", status)
	}

	var before, after FinancialDistribution
	err := s.store.InTx(ctx, func(uow UnitOfWork) error {
		if _, err := uow.Issuances().Get(ctx, id); err != nil {
			return err
		}
		current, err := uow.Distributions().GetByIssuance(ctx, id)
		if err != nil {
			return err
		}
		before = *current
		after = *current
		after.PaymentStatus = status
		after.UpdatedAt = s.clock.Now()
		return uow.Distributions().Update(ctx, &after)
	})
	if err != nil {
		return nil, logFailure(s.logger, "set payment status", err)
	}

	s.audit.Publish(ctx, newAuditEvent(ctx, s.clock, AuditPaymentStatusChanged, "issuance", id, before, after))
	return &after, nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *issuanceService) GetForEdit(ctx context.Context, id int64) (*IssuanceEditView, error) {
	var view IssuanceEditView
	err := s.store.View(ctx, func(uow UnitOfWork) error {
		iss, err := uow.Issuances().Get(ctx, id)
		if err != nil {
			return err
		}
		customer, err := uow.Customers().Get(ctx, iss.CustomerID)
		if err != nil {
			return err
		}
		dist, err := uow.Distributions().GetByIssuance(ctx, id)
		if err != nil {
			return err
		}
		held := lineDemand(iss.Lines)
		items, err := NewCatalog(uow.Items()).FindMany(ctx, sortedKeys(held))
		if err != nil {
			return err
		}

		iss.CustomerName = customer.Name
		view = IssuanceEditView{
			Issuance:     *iss,
			Customer:     *customer,
			Distribution: *dist,
			Available:    make(map[int64]int64, len(held)),
		}
		for itemID, qty := range held {
			view.Available[itemID] = items[itemID].OnHand + qty
		}
		return nil
	})
	if err != nil {
		return nil, logFailure(s.logger, "get issuance", err)
	}
	return &view, nil
}

func (s *issuanceService) List(ctx context.Context, filter IssuanceFilter) ([]IssuanceSummary, error) {
	if err := validatePeriod(filter.Year, filter.Month, false); err != nil {
		return nil, err
	}
	var out []IssuanceSummary
	err := s.store.View(ctx, func(uow UnitOfWork) error {
		var err error
		out, err = uow.Issuances().List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, logFailure(s.logger, "list issuances", err)
	}
	return out, nil
}

func (s *issuanceService) PeriodSummary(ctx context.Context, year, month int) (*PeriodSummary, error) {
	if err := validatePeriod(year, month, true); err != nil {
		return nil, err
	}
	var summary *PeriodSummary
	err := s.store.View(ctx, func(uow UnitOfWork) error {
		var err error
		summary, err = uow.Distributions().Summarize(ctx, year, month)
		return err
	})
	if err != nil {
		return nil, logFailure(s.logger, "summarize period", err)
	}
	return summary, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func normalizeDraft(d IssuanceDraft) IssuanceDraft {
	if !d.IssueDate.IsZero() {
		d.IssueDate = DateOnly(d.IssueDate)
	}
	if d.PurchaseOrderRef != nil {
		ref := strings.TrimSpace(*d.PurchaseOrderRef)
		if ref == "" {
			d.PurchaseOrderRef = nil
		} else {
			d.PurchaseOrderRef = &ref
		}
	}
	return d
}

func validatePeriod(year, month int, required bool) error {
	if required && (year <= 0 || month == 0) {
		return Validationf("year and month are required")
	}
	if month < 0 || month > 12 {
		return Validationf("month must be between 1 and 12, got %d", month)
	}
	if year < 0 {
		return Validationf("year must not be negative, got %d", year)
	}
	return nil
}

// draftDemand sums requested quantity per item across lines. A per-item total
// above MaxQuantity is rejected.
func draftDemand(lines []LineDraft) (map[int64]int64, error) {
	out := make(map[int64]int64, len(lines))
	for _, l := range lines {
		total := out[l.ItemID] + l.Quantity
		if l.Quantity > MaxQuantity || total > MaxQuantity {
			return nil, Validationf("total quantity for item %d must be at most %d", l.ItemID, MaxQuantity)
		}
		out[l.ItemID] = total
	}
	return out, nil
}

func lineDemand(lines []IssuanceLine) map[int64]int64 {
	out := make(map[int64]int64, len(lines))
	for _, l := range lines {
		out[l.ItemID] += l.Quantity
	}
	return out
}

// sortedKeys returns the union of the maps' keys in ascending order, which is
// also the order rows are locked and adjusted in.
func sortedKeys(maps ...map[int64]int64) []int64 {
	var keys []int64
	for _, m := range maps {
		for k := range m {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return slices.Compact(keys)
}

// checkStock verifies demand against on-hand plus whatever held already
// reserves for the same issuance. held is nil on create.
func checkStock(items map[int64]Item, demand, held map[int64]int64) error {
	for _, id := range sortedKeys(demand) {
		item := items[id]
		available := item.OnHand + held[id]
		if demand[id] > available {
			return &InsufficientStockError{
				ItemID:    id,
				ItemName:  item.Name,
				Requested: demand[id],
				Available: available,
			}
		}
	}
	return nil
}

func costedLines(lines []LineDraft, items map[int64]Item) []CostedLine {
	out := make([]CostedLine, len(lines))
	for i, l := range lines {
		out[i] = CostedLine{Quantity: l.Quantity, UnitPrice: l.UnitPrice, UnitCost: items[l.ItemID].UnitCost}
	}
	return out
}

func buildLines(lines []LineDraft, items map[int64]Item) []IssuanceLine {
	out := make([]IssuanceLine, len(lines))
	for i, l := range lines {
		out[i] = IssuanceLine{
			LineNumber: i + 1,
			ItemID:     l.ItemID,
			ItemName:   items[l.ItemID].Name,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			Subtotal:   l.Quantity * l.UnitPrice,
		}
	}
	return out
}

func distributionFor(issuanceID int64, d IssuanceDraft, fin Financials, now time.Time) FinancialDistribution {
	return FinancialDistribution{
		IssuanceID:       issuanceID,
		FeeRatePerUnit:   d.FeeRatePerUnit,
		HandlingFeeTotal: fin.HandlingFeeTotal,
		ShippingCharge:   fin.ShippingCharge,
		OperatingCost:    fin.OperatingCost,
		RunningMargin:    fin.RunningMargin,
		PaymentStatus:    d.PaymentStatus,
		OwnerShares:      fin.OwnerShares,
		ReserveShare:     fin.ReserveShare,
		PeriodYear:       d.IssueDate.Year(),
		PeriodMonth:      int(d.IssueDate.Month()),
		UpdatedAt:        now,
	}
}

func resultOf(iss Issuance, dist FinancialDistribution, fin Financials) *IssuanceResult {
	return &IssuanceResult{
		ID:             iss.ID,
		DocumentNumber: iss.DocumentNumber,
		IssueDate:      iss.IssueDate,
		DueDate:        iss.DueDate,
		Totals:         fin,
		PaymentStatus:  dist.PaymentStatus,
		Lines:          iss.Lines,
	}
}

// logFailure logs err at a level matching its kind and returns it. Errors
// that carry no kind are treated as store failures.
func logFailure(logger *zap.Logger, op string, err error) error {
	switch KindOf(err) {
	case "":
		err = Persistence(op, err)
		logger.Error(op+" failed", zap.Error(err))
	case KindPersistence:
		logger.Error(op+" failed", zap.Error(err))
	case KindConflict:
		logger.Warn(op+" conflicted", zap.Error(err))
	default:
		logger.Debug(op+" rejected", zap.Error(err))
	}
	return err
}
