package postgres

import (
	"context"
	"time"

	"distribution-backend/internal/core"
)

type sequenceRepo struct {
	q querier
}

// Next advances the per-scope counter with a single upsert. The row lock the
// upsert takes serializes concurrent callers in the same scope until their
// transactions end. A new row is seeded from the issuances already filed in
// the scope so that numbering continues across a fresh counter table.
func (r *sequenceRepo) Next(ctx context.Context, scope core.SequenceScope) (int64, error) {
	from := time.Date(scope.Year, time.Month(scope.Month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	var next int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO document_sequences (organizational_unit, period_year, period_month, last_number)
		VALUES ($1, $2, $3, (
			SELECT COUNT(*) + 1
			FROM issuances
			WHERE organizational_unit = $1 AND issue_date >= $4 AND issue_date < $5
		))
		ON CONFLICT (organizational_unit, period_year, period_month)
		DO UPDATE SET last_number = document_sequences.last_number + 1
		RETURNING last_number
	`, scope.Unit, scope.Year, scope.Month, from, to).Scan(&next)
	if err != nil {
		return 0, mapError("advance document sequence", err)
	}
	return next, nil
}
