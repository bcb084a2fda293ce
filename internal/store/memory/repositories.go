package memory

import (
	"cmp"
	"context"
	"slices"

	"distribution-backend/internal/core"
)

type itemRepo struct{ st *state }

func (r itemRepo) FindMany(_ context.Context, ids []int64) (map[int64]core.Item, error) {
	out := make(map[int64]core.Item, len(ids))
	for _, id := range ids {
		if item, ok := r.st.items[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

func (r itemRepo) Get(_ context.Context, id int64) (*core.Item, error) {
	item, ok := r.st.items[id]
	if !ok {
		return nil, core.NotFound("item", id)
	}
	return &item, nil
}

func (r itemRepo) List(_ context.Context) ([]core.Item, error) {
	out := make([]core.Item, 0, len(r.st.items))
	for _, item := range r.st.items {
		out = append(out, item)
	}
	slices.SortFunc(out, func(a, b core.Item) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r itemRepo) Create(_ context.Context, item core.Item) (*core.Item, error) {
	if item.OnHand < 0 {
		return nil, core.Validationf("on-hand quantity must not be negative")
	}
	item.ID = r.st.nextID("items")
	r.st.items[item.ID] = item
	return &item, nil
}

func (r itemRepo) AdjustStock(_ context.Context, id, delta int64) (int64, error) {
	item, ok := r.st.items[id]
	if !ok {
		return 0, core.NotFound("item", id)
	}
	if item.OnHand+delta < 0 {
		return 0, &core.InsufficientStockError{
			ItemID:    id,
			ItemName:  item.Name,
			Requested: -delta,
			Available: item.OnHand,
		}
	}
	item.OnHand += delta
	r.st.items[id] = item
	return item.OnHand, nil
}

func (r itemRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.st.items[id]; !ok {
		return core.NotFound("item", id)
	}
	delete(r.st.items, id)
	return nil
}

func (r itemRepo) IsReferenced(_ context.Context, id int64) (bool, error) {
	for _, lines := range r.st.lines {
		for _, l := range lines {
			if l.ItemID == id {
				return true, nil
			}
		}
	}
	return false, nil
}

type customerRepo struct{ st *state }

func (r customerRepo) Get(_ context.Context, id int64) (*core.Customer, error) {
	c, ok := r.st.customers[id]
	if !ok {
		return nil, core.NotFound("customer", id)
	}
	return &c, nil
}

func (r customerRepo) List(_ context.Context) ([]core.Customer, error) {
	out := make([]core.Customer, 0, len(r.st.customers))
	for _, c := range r.st.customers {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b core.Customer) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r customerRepo) Create(_ context.Context, c core.Customer) (*core.Customer, error) {
	c.ID = r.st.nextID("customers")
	r.st.customers[c.ID] = c
	return &c, nil
}

func (r customerRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.st.customers[id]; !ok {
		return core.NotFound("customer", id)
	}
	delete(r.st.customers, id)
	return nil
}

func (r customerRepo) IsReferenced(_ context.Context, id int64) (bool, error) {
	for _, iss := range r.st.issuances {
		if iss.CustomerID == id {
			return true, nil
		}
	}
	return false, nil
}

type issuanceRepo struct{ st *state }

func (r issuanceRepo) Get(_ context.Context, id int64) (*core.Issuance, error) {
	iss, ok := r.st.issuances[id]
	if !ok {
		return nil, core.NotFound("issuance", id)
	}
	if c, ok := r.st.customers[iss.CustomerID]; ok {
		iss.CustomerName = c.Name
	}
	iss.Lines = slices.Clone(r.st.lines[id])
	for i, l := range iss.Lines {
		iss.Lines[i].ItemName = r.st.items[l.ItemID].Name
	}
	return &iss, nil
}

func (r issuanceRepo) Insert(_ context.Context, iss *core.Issuance) error {
	for _, other := range r.st.issuances {
		if other.DocumentNumber == iss.DocumentNumber {
			return core.Conflictf("document number %s already exists", iss.DocumentNumber)
		}
	}
	if _, ok := r.st.customers[iss.CustomerID]; !ok {
		return core.NotFound("customer", iss.CustomerID)
	}
	iss.ID = r.st.nextID("issuances")
	stored := *iss
	stored.Lines = nil
	r.st.issuances[iss.ID] = stored
	return nil
}

func (r issuanceRepo) UpdateHeader(_ context.Context, iss *core.Issuance) error {
	if _, ok := r.st.issuances[iss.ID]; !ok {
		return core.NotFound("issuance", iss.ID)
	}
	stored := *iss
	stored.Lines = nil
	r.st.issuances[iss.ID] = stored
	return nil
}

func (r issuanceRepo) InsertLines(_ context.Context, issuanceID int64, lines []core.IssuanceLine) error {
	if _, ok := r.st.issuances[issuanceID]; !ok {
		return core.NotFound("issuance", issuanceID)
	}
	for i := range lines {
		if lines[i].Quantity <= 0 {
			return core.Validationf("line %d quantity must be positive", lines[i].LineNumber)
		}
		lines[i].ID = r.st.nextID("issuance_lines")
		lines[i].IssuanceID = issuanceID
	}
	r.st.lines[issuanceID] = append(r.st.lines[issuanceID], lines...)
	return nil
}

func (r issuanceRepo) DeleteLines(_ context.Context, issuanceID int64) error {
	delete(r.st.lines, issuanceID)
	return nil
}

func (r issuanceRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.st.issuances[id]; !ok {
		return core.NotFound("issuance", id)
	}
	delete(r.st.issuances, id)
	delete(r.st.lines, id)
	delete(r.st.distributions, id)
	return nil
}

func (r issuanceRepo) List(_ context.Context, filter core.IssuanceFilter) ([]core.IssuanceSummary, error) {
	var out []core.IssuanceSummary
	for id, iss := range r.st.issuances {
		if filter.Year != 0 && iss.IssueDate.Year() != filter.Year {
			continue
		}
		if filter.Month != 0 && int(iss.IssueDate.Month()) != filter.Month {
			continue
		}
		dist := r.st.distributions[id]
		out = append(out, core.IssuanceSummary{
			ID:             id,
			DocumentNumber: iss.DocumentNumber,
			CustomerID:     iss.CustomerID,
			CustomerName:   r.st.customers[iss.CustomerID].Name,
			IssueDate:      iss.IssueDate,
			DueDate:        iss.DueDate,
			GrossRevenue:   iss.GrossRevenue,
			RunningMargin:  dist.RunningMargin,
			PaymentStatus:  dist.PaymentStatus,
		})
	}
	// Newest first, ties broken by id descending.
	slices.SortFunc(out, func(a, b core.IssuanceSummary) int {
		if c := b.IssueDate.Compare(a.IssueDate); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

type distributionRepo struct{ st *state }

func (r distributionRepo) GetByIssuance(_ context.Context, issuanceID int64) (*core.FinancialDistribution, error) {
	d, ok := r.st.distributions[issuanceID]
	if !ok {
		return nil, core.NotFound("financial distribution for issuance", issuanceID)
	}
	return &d, nil
}

func (r distributionRepo) Insert(_ context.Context, d *core.FinancialDistribution) error {
	if _, ok := r.st.distributions[d.IssuanceID]; ok {
		return core.Conflictf("issuance %d already has a financial distribution", d.IssuanceID)
	}
	d.ID = r.st.nextID("financial_distributions")
	r.st.distributions[d.IssuanceID] = *d
	return nil
}

func (r distributionRepo) Update(_ context.Context, d *core.FinancialDistribution) error {
	existing, ok := r.st.distributions[d.IssuanceID]
	if !ok {
		return core.NotFound("financial distribution for issuance", d.IssuanceID)
	}
	d.ID = existing.ID
	r.st.distributions[d.IssuanceID] = *d
	return nil
}

func (r distributionRepo) DeleteByIssuance(_ context.Context, issuanceID int64) error {
	delete(r.st.distributions, issuanceID)
	return nil
}

func (r distributionRepo) Summarize(_ context.Context, year, month int) (*core.PeriodSummary, error) {
	out := &core.PeriodSummary{Year: year, Month: month}
	for id, d := range r.st.distributions {
		if d.PeriodYear != year || d.PeriodMonth != month {
			continue
		}
		out.Issuances++
		out.GrossRevenue += r.st.issuances[id].GrossRevenue
		out.RunningMargin += d.RunningMargin
		for i := range out.OwnerShares {
			out.OwnerShares[i] += d.OwnerShares[i]
		}
		out.ReserveShare += d.ReserveShare
		if d.PaymentStatus == core.PaymentUnpaid {
			out.Unpaid++
		}
	}
	return out, nil
}

type sequenceRepo struct{ st *state }

func (r sequenceRepo) Next(_ context.Context, scope core.SequenceScope) (int64, error) {
	last, ok := r.st.sequences[scope]
	if !ok {
		for _, iss := range r.st.issuances {
			if iss.OrganizationalUnit == scope.Unit && iss.IssueDate.Year() == scope.Year && int(iss.IssueDate.Month()) == scope.Month {
				last++
			}
		}
	}
	last++
	r.st.sequences[scope] = last
	return last, nil
}
