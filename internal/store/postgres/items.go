package postgres

import (
	"context"
	"errors"

	"distribution-backend/internal/core"

	"github.com/jackc/pgx/v5"
)

type itemRepo struct {
	q    querier
	lock bool
}

const itemColumns = `id, name, unit_cost, unit, on_hand, created_at`

func scanItem(row pgx.Row) (core.Item, error) {
	var it core.Item
	err := row.Scan(&it.ID, &it.Name, &it.UnitCost, &it.Unit, &it.OnHand, &it.CreatedAt)
	return it, err
}

func (r *itemRepo) FindMany(ctx context.Context, ids []int64) (map[int64]core.Item, error) {
	out := make(map[int64]core.Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT `+itemColumns+`
		FROM items
		WHERE id = ANY($1)
		ORDER BY id`+forUpdate(r.lock), ids)
	if err != nil {
		return nil, mapError("query items", err)
	}
	defer rows.Close()

	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, mapError("scan item", err)
		}
		out[it.ID] = it
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("query items", err)
	}
	return out, nil
}

func (r *itemRepo) Get(ctx context.Context, id int64) (*core.Item, error) {
	it, err := scanItem(r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`+forUpdate(r.lock), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.NotFound("item", id)
		}
		return nil, mapError("get item", err)
	}
	return &it, nil
}

func (r *itemRepo) List(ctx context.Context) ([]core.Item, error) {
	rows, err := r.q.Query(ctx, `SELECT `+itemColumns+` FROM items ORDER BY id`)
	if err != nil {
		return nil, mapError("list items", err)
	}
	defer rows.Close()

	var items []core.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, mapError("scan item", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list items", err)
	}
	return items, nil
}

func (r *itemRepo) Create(ctx context.Context, item core.Item) (*core.Item, error) {
	it, err := scanItem(r.q.QueryRow(ctx, `
		INSERT INTO items (name, unit_cost, unit, on_hand)
		VALUES ($1, $2, $3, $4)
		RETURNING `+itemColumns,
		item.Name, item.UnitCost, item.Unit, item.OnHand,
	))
	if err != nil {
		return nil, mapError("create item", err)
	}
	return &it, nil
}

// AdjustStock applies delta in a single guarded UPDATE so the row can never
// go negative, even if the caller skipped its own check.
func (r *itemRepo) AdjustStock(ctx context.Context, id, delta int64) (int64, error) {
	var onHand int64
	err := r.q.QueryRow(ctx, `
		UPDATE items
		SET on_hand = on_hand + $2
		WHERE id = $1 AND on_hand + $2 >= 0
		RETURNING on_hand
	`, id, delta).Scan(&onHand)
	if err == nil {
		return onHand, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, mapError("adjust stock", err)
	}

	// Either the item is gone or the guard rejected the change.
	var name string
	err = r.q.QueryRow(ctx, `SELECT name, on_hand FROM items WHERE id = $1`, id).Scan(&name, &onHand)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, core.NotFound("item", id)
		}
		return 0, mapError("read stock", err)
	}
	return 0, &core.InsufficientStockError{ItemID: id, ItemName: name, Requested: -delta, Available: onHand}
}

func (r *itemRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return mapError("delete item", err)
	}
	if tag.RowsAffected() == 0 {
		return core.NotFound("item", id)
	}
	return nil
}

func (r *itemRepo) IsReferenced(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM issuance_lines WHERE item_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, mapError("check item references", err)
	}
	return exists, nil
}
