package postgres

import (
	"errors"
	"testing"

	"distribution-backend/internal/core"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		kind      core.ErrorKind
		retryable bool
		contains  string
	}{
		{"serialization failure", &pgconn.PgError{Code: codeSerializationFailure}, core.KindConflict, true, "retry"},
		{"deadlock", &pgconn.PgError{Code: codeDeadlockDetected}, core.KindConflict, true, "retry"},
		{"duplicate document number", &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "issuances_document_number_key"}, core.KindConflict, true, "duplicate document number"},
		{"foreign key", &pgconn.PgError{Code: codeForeignKeyViolation, ConstraintName: "issuance_lines_item_id_fkey"}, core.KindConflict, true, "still referenced"},
		{"check", &pgconn.PgError{Code: codeCheckViolation, ConstraintName: "items_on_hand_non_negative"}, core.KindConflict, true, "items_on_hand_non_negative"},
		{"other pg error", &pgconn.PgError{Code: "42P01"}, core.KindPersistence, false, "insert"},
		{"network error", errors.New("connection reset"), core.KindPersistence, false, "connection reset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapError("insert", tt.err)
			assert.Equal(t, tt.kind, core.KindOf(err))
			assert.Equal(t, tt.retryable, core.IsRetryable(err))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}

	assert.NoError(t, mapError("noop", nil))

	notFound := core.NotFound("item", 1)
	assert.Same(t, notFound, mapError("get item", notFound))
}
