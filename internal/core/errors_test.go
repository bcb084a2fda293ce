package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	stock := &InsufficientStockError{ItemID: 2, ItemName: "Bolt", Requested: 5, Available: 3}
	wrapped := fmt.Errorf("create issuance: %w", stock)

	assert.ErrorIs(t, wrapped, ErrInsufficientStock)
	assert.Equal(t, KindInsufficientStock, KindOf(wrapped))
	assert.Contains(t, stock.Error(), "Bolt")
	assert.Contains(t, stock.Error(), "available: 3")
	assert.False(t, IsRetryable(stock))

	notFound := NotFound("item", 9)
	assert.ErrorIs(t, notFound, ErrNotFound)
	assert.NotErrorIs(t, notFound, ErrValidation)
	assert.Equal(t, "item 9 not found", notFound.Error())

	conflict := Conflict("insert issuance", errors.New("serialization failure"))
	assert.True(t, IsRetryable(conflict))
	assert.ErrorIs(t, conflict, ErrConflict)

	cause := errors.New("connection reset")
	persistence := Persistence("list items", cause)
	assert.ErrorIs(t, persistence, ErrPersistence)
	assert.ErrorIs(t, persistence, cause)

	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}
