package postgres

import (
	"context"
	"errors"

	"distribution-backend/internal/core"

	"github.com/jackc/pgx/v5"
)

type issuanceRepo struct {
	q    querier
	lock bool
}

func (r *issuanceRepo) Get(ctx context.Context, id int64) (*core.Issuance, error) {
	var iss core.Issuance
	// FOR UPDATE OF keeps the lock on the header only; the joined customer
	// row stays shared.
	lockClause := ""
	if r.lock {
		lockClause = " FOR UPDATE OF i"
	}
	err := r.q.QueryRow(ctx, `
		SELECT i.id, i.customer_id, c.name, i.document_number, i.organizational_unit,
		       i.purchase_order_ref, i.issue_date, i.due_date,
		       i.gross_revenue, i.cost_of_goods, i.gross_margin,
		       i.created_at, i.updated_at
		FROM issuances i
		JOIN customers c ON c.id = i.customer_id
		WHERE i.id = $1`+lockClause, id).Scan(
		&iss.ID, &iss.CustomerID, &iss.CustomerName, &iss.DocumentNumber, &iss.OrganizationalUnit,
		&iss.PurchaseOrderRef, &iss.IssueDate, &iss.DueDate,
		&iss.GrossRevenue, &iss.CostOfGoods, &iss.GrossMargin,
		&iss.CreatedAt, &iss.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.NotFound("issuance", id)
		}
		return nil, mapError("get issuance", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT l.id, l.issuance_id, l.line_number, l.item_id, it.name,
		       l.quantity, l.unit_price, l.subtotal
		FROM issuance_lines l
		JOIN items it ON it.id = l.item_id
		WHERE l.issuance_id = $1
		ORDER BY l.line_number
	`, id)
	if err != nil {
		return nil, mapError("get issuance lines", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l core.IssuanceLine
		if err := rows.Scan(&l.ID, &l.IssuanceID, &l.LineNumber, &l.ItemID, &l.ItemName,
			&l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			return nil, mapError("scan issuance line", err)
		}
		iss.Lines = append(iss.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("get issuance lines", err)
	}
	return &iss, nil
}

func (r *issuanceRepo) Insert(ctx context.Context, iss *core.Issuance) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO issuances (
			customer_id, document_number, organizational_unit, purchase_order_ref,
			issue_date, due_date, gross_revenue, cost_of_goods, gross_margin
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`,
		iss.CustomerID, iss.DocumentNumber, iss.OrganizationalUnit, iss.PurchaseOrderRef,
		iss.IssueDate, iss.DueDate, iss.GrossRevenue, iss.CostOfGoods, iss.GrossMargin,
	).Scan(&iss.ID, &iss.CreatedAt, &iss.UpdatedAt)
	if err != nil {
		return mapError("insert issuance", err)
	}
	return nil
}

func (r *issuanceRepo) UpdateHeader(ctx context.Context, iss *core.Issuance) error {
	err := r.q.QueryRow(ctx, `
		UPDATE issuances
		SET customer_id = $2,
		    purchase_order_ref = $3,
		    issue_date = $4,
		    due_date = $5,
		    gross_revenue = $6,
		    cost_of_goods = $7,
		    gross_margin = $8,
		    updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`,
		iss.ID, iss.CustomerID, iss.PurchaseOrderRef, iss.IssueDate, iss.DueDate,
		iss.GrossRevenue, iss.CostOfGoods, iss.GrossMargin,
	).Scan(&iss.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.NotFound("issuance", iss.ID)
		}
		return mapError("update issuance", err)
	}
	return nil
}

func (r *issuanceRepo) InsertLines(ctx context.Context, issuanceID int64, lines []core.IssuanceLine) error {
	for i := range lines {
		lines[i].IssuanceID = issuanceID
		err := r.q.QueryRow(ctx, `
			INSERT INTO issuance_lines (issuance_id, line_number, item_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, issuanceID, lines[i].LineNumber, lines[i].ItemID, lines[i].Quantity, lines[i].UnitPrice, lines[i].Subtotal,
		).Scan(&lines[i].ID)
		if err != nil {
			return mapError("insert issuance line", err)
		}
	}
	return nil
}

func (r *issuanceRepo) DeleteLines(ctx context.Context, issuanceID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM issuance_lines WHERE issuance_id = $1`, issuanceID); err != nil {
		return mapError("delete issuance lines", err)
	}
	return nil
}

func (r *issuanceRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM issuances WHERE id = $1`, id)
	if err != nil {
		return mapError("delete issuance", err)
	}
	if tag.RowsAffected() == 0 {
		return core.NotFound("issuance", id)
	}
	return nil
}

func (r *issuanceRepo) List(ctx context.Context, filter core.IssuanceFilter) ([]core.IssuanceSummary, error) {
	rows, err := r.q.Query(ctx, `
		SELECT i.id, i.document_number, i.customer_id, c.name, i.issue_date, i.due_date,
		       i.gross_revenue, COALESCE(d.running_margin, 0), COALESCE(d.payment_status, 'unpaid')
		FROM issuances i
		JOIN customers c ON c.id = i.customer_id
		LEFT JOIN financial_distributions d ON d.issuance_id = i.id
		WHERE ($1 = 0 OR EXTRACT(YEAR FROM i.issue_date)::int = $1)
		  AND ($2 = 0 OR EXTRACT(MONTH FROM i.issue_date)::int = $2)
		ORDER BY i.issue_date DESC, i.id DESC
	`, filter.Year, filter.Month)
	if err != nil {
		return nil, mapError("list issuances", err)
	}
	defer rows.Close()

	var out []core.IssuanceSummary
	for rows.Next() {
		var s core.IssuanceSummary
		if err := rows.Scan(&s.ID, &s.DocumentNumber, &s.CustomerID, &s.CustomerName, &s.IssueDate, &s.DueDate,
			&s.GrossRevenue, &s.RunningMargin, &s.PaymentStatus); err != nil {
			return nil, mapError("scan issuance", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list issuances", err)
	}
	return out, nil
}
