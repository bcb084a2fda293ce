package postgres

import (
	"errors"

	"distribution-backend/internal/core"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the store reacts to.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
)

// mapError translates driver errors into the core taxonomy. Errors that
// already carry a kind pass through unchanged.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if core.KindOf(err) != "" {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected:
			return core.Conflict(op, err)
		case codeUniqueViolation:
			return core.Conflictf("%s: duplicate %s", op, constraintSubject(pgErr))
		case codeForeignKeyViolation:
			return core.Conflictf("%s: record is still referenced (%s)", op, pgErr.ConstraintName)
		case codeCheckViolation:
			return core.Conflictf("%s: constraint %s violated", op, pgErr.ConstraintName)
		}
	}
	return core.Persistence(op, err)
}

func constraintSubject(pgErr *pgconn.PgError) string {
	switch pgErr.ConstraintName {
	case "issuances_document_number_key":
		return "document number"
	case "financial_distributions_issuance_id_key":
		return "financial distribution"
	default:
		return pgErr.ConstraintName
	}
}
