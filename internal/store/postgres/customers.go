package postgres

import (
	"context"
	"errors"

	"distribution-backend/internal/core"

	"github.com/jackc/pgx/v5"
)

type customerRepo struct {
	q querier
}

func (r *customerRepo) Get(ctx context.Context, id int64) (*core.Customer, error) {
	var c core.Customer
	err := r.q.QueryRow(ctx, `
		SELECT id, name, address, created_at
		FROM customers
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Address, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.NotFound("customer", id)
		}
		return nil, mapError("get customer", err)
	}
	return &c, nil
}

func (r *customerRepo) List(ctx context.Context) ([]core.Customer, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, address, created_at FROM customers ORDER BY id`)
	if err != nil {
		return nil, mapError("list customers", err)
	}
	defer rows.Close()

	var customers []core.Customer
	for rows.Next() {
		var c core.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.CreatedAt); err != nil {
			return nil, mapError("scan customer", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list customers", err)
	}
	return customers, nil
}

func (r *customerRepo) Create(ctx context.Context, c core.Customer) (*core.Customer, error) {
	err := r.q.QueryRow(ctx, `
		INSERT INTO customers (name, address)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, c.Name, c.Address).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, mapError("create customer", err)
	}
	return &c, nil
}

func (r *customerRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return mapError("delete customer", err)
	}
	if tag.RowsAffected() == 0 {
		return core.NotFound("customer", id)
	}
	return nil
}

func (r *customerRepo) IsReferenced(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM issuances WHERE customer_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, mapError("check customer references", err)
	}
	return exists, nil
}
