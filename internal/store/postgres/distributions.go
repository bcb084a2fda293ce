package postgres

import (
	"context"
	"errors"

	"distribution-backend/internal/core"

	"github.com/jackc/pgx/v5"
)

type distributionRepo struct {
	q querier
}

func (r *distributionRepo) GetByIssuance(ctx context.Context, issuanceID int64) (*core.FinancialDistribution, error) {
	var d core.FinancialDistribution
	err := r.q.QueryRow(ctx, `
		SELECT id, issuance_id, fee_rate_per_unit, handling_fee_total, shipping_charge,
		       operating_cost, running_margin, payment_status,
		       owner_share_1, owner_share_2, owner_share_3, reserve_share,
		       period_year, period_month, updated_at
		FROM financial_distributions
		WHERE issuance_id = $1
	`, issuanceID).Scan(
		&d.ID, &d.IssuanceID, &d.FeeRatePerUnit, &d.HandlingFeeTotal, &d.ShippingCharge,
		&d.OperatingCost, &d.RunningMargin, &d.PaymentStatus,
		&d.OwnerShares[0], &d.OwnerShares[1], &d.OwnerShares[2], &d.ReserveShare,
		&d.PeriodYear, &d.PeriodMonth, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.NotFound("financial distribution for issuance", issuanceID)
		}
		return nil, mapError("get financial distribution", err)
	}
	return &d, nil
}

func (r *distributionRepo) Insert(ctx context.Context, d *core.FinancialDistribution) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO financial_distributions (
			issuance_id, fee_rate_per_unit, handling_fee_total, shipping_charge,
			operating_cost, running_margin, payment_status,
			owner_share_1, owner_share_2, owner_share_3, reserve_share,
			period_year, period_month
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, updated_at
	`,
		d.IssuanceID, d.FeeRatePerUnit, d.HandlingFeeTotal, d.ShippingCharge,
		d.OperatingCost, d.RunningMargin, d.PaymentStatus,
		d.OwnerShares[0], d.OwnerShares[1], d.OwnerShares[2], d.ReserveShare,
		d.PeriodYear, d.PeriodMonth,
	).Scan(&d.ID, &d.UpdatedAt)
	if err != nil {
		return mapError("insert financial distribution", err)
	}
	return nil
}

func (r *distributionRepo) Update(ctx context.Context, d *core.FinancialDistribution) error {
	err := r.q.QueryRow(ctx, `
		UPDATE financial_distributions
		SET fee_rate_per_unit = $2,
		    handling_fee_total = $3,
		    shipping_charge = $4,
		    operating_cost = $5,
		    running_margin = $6,
		    payment_status = $7,
		    owner_share_1 = $8,
		    owner_share_2 = $9,
		    owner_share_3 = $10,
		    reserve_share = $11,
		    period_year = $12,
		    period_month = $13,
		    updated_at = now()
		WHERE issuance_id = $1
		RETURNING id, updated_at
	`,
		d.IssuanceID, d.FeeRatePerUnit, d.HandlingFeeTotal, d.ShippingCharge,
		d.OperatingCost, d.RunningMargin, d.PaymentStatus,
		d.OwnerShares[0], d.OwnerShares[1], d.OwnerShares[2], d.ReserveShare,
		d.PeriodYear, d.PeriodMonth,
	).Scan(&d.ID, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.NotFound("financial distribution for issuance", d.IssuanceID)
		}
		return mapError("update financial distribution", err)
	}
	return nil
}

func (r *distributionRepo) DeleteByIssuance(ctx context.Context, issuanceID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM financial_distributions WHERE issuance_id = $1`, issuanceID); err != nil {
		return mapError("delete financial distribution", err)
	}
	return nil
}

func (r *distributionRepo) Summarize(ctx context.Context, year, month int) (*core.PeriodSummary, error) {
	out := &core.PeriodSummary{Year: year, Month: month}
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(i.gross_revenue), 0),
		       COALESCE(SUM(d.running_margin), 0),
		       COALESCE(SUM(d.owner_share_1), 0),
		       COALESCE(SUM(d.owner_share_2), 0),
		       COALESCE(SUM(d.owner_share_3), 0),
		       COALESCE(SUM(d.reserve_share), 0),
		       COUNT(*) FILTER (WHERE d.payment_status = 'unpaid')
		FROM financial_distributions d
		JOIN issuances i ON i.id = d.issuance_id
		WHERE d.period_year = $1 AND d.period_month = $2
	`, year, month).Scan(
		&out.Issuances, &out.GrossRevenue, &out.RunningMargin,
		&out.OwnerShares[0], &out.OwnerShares[1], &out.OwnerShares[2], &out.ReserveShare,
		&out.Unpaid,
	)
	if err != nil {
		return nil, mapError("summarize period", err)
	}
	return out, nil
}
