package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"distribution-backend/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedItem(t *testing.T, s *Store, onHand int64) int64 {
	t.Helper()
	var id int64
	require.NoError(t, s.InTx(context.Background(), func(uow core.UnitOfWork) error {
		item, err := uow.Items().Create(context.Background(), core.Item{Name: "Widget", Unit: "pcs", OnHand: onHand})
		if err != nil {
			return err
		}
		id = item.ID
		return nil
	}))
	return id
}

func onHand(t *testing.T, s *Store, id int64) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.View(context.Background(), func(uow core.UnitOfWork) error {
		item, err := uow.Items().Get(context.Background(), id)
		if err != nil {
			return err
		}
		n = item.OnHand
		return nil
	}))
	return n
}

func TestInTx_FailedWorkIsDiscarded(t *testing.T) {
	ctx := context.Background()
	s := New()
	id := seedItem(t, s, 10)

	boom := errors.New("boom")
	err := s.InTx(ctx, func(uow core.UnitOfWork) error {
		if _, err := uow.Items().AdjustStock(ctx, id, -4); err != nil {
			return err
		}
		if _, err := uow.Customers().Create(ctx, core.Customer{Name: "Toko"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int64(10), onHand(t, s, id))

	// IDs handed out by the discarded work are reused.
	require.NoError(t, s.InTx(ctx, func(uow core.UnitOfWork) error {
		c, err := uow.Customers().Create(ctx, core.Customer{Name: "Toko"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), c.ID)
		return nil
	}))
}

func TestView_WritesAreDiscarded(t *testing.T) {
	ctx := context.Background()
	s := New()
	id := seedItem(t, s, 10)

	require.NoError(t, s.View(ctx, func(uow core.UnitOfWork) error {
		_, err := uow.Items().AdjustStock(ctx, id, 5)
		return err
	}))
	assert.Equal(t, int64(10), onHand(t, s, id))
}

func TestAdjustStock_NeverNegative(t *testing.T) {
	ctx := context.Background()
	s := New()
	id := seedItem(t, s, 3)

	err := s.InTx(ctx, func(uow core.UnitOfWork) error {
		_, err := uow.Items().AdjustStock(ctx, id, -4)
		return err
	})
	var stockErr *core.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(3), stockErr.Available)
	assert.Equal(t, int64(4), stockErr.Requested)

	err = s.InTx(ctx, func(uow core.UnitOfWork) error {
		_, err := uow.Items().AdjustStock(ctx, 99, 1)
		return err
	})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSequence_SeedsFromExistingIssuances(t *testing.T) {
	ctx := context.Background()
	s := New()
	scope := core.SequenceScope{Unit: "DST", Year: 2024, Month: 3}

	require.NoError(t, s.InTx(ctx, func(uow core.UnitOfWork) error {
		c, err := uow.Customers().Create(ctx, core.Customer{Name: "Toko"})
		if err != nil {
			return err
		}
		iss := &core.Issuance{
			CustomerID:         c.ID,
			DocumentNumber:     "INV/001/05/DST/03/2024",
			OrganizationalUnit: "DST",
			IssueDate:          time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		}
		return uow.Issuances().Insert(ctx, iss)
	}))

	var first, second, other int64
	require.NoError(t, s.InTx(ctx, func(uow core.UnitOfWork) error {
		var err error
		if first, err = uow.Sequences().Next(ctx, scope); err != nil {
			return err
		}
		if second, err = uow.Sequences().Next(ctx, scope); err != nil {
			return err
		}
		other, err = uow.Sequences().Next(ctx, core.SequenceScope{Unit: "JKT", Year: 2024, Month: 3})
		return err
	}))
	assert.Equal(t, int64(2), first)
	assert.Equal(t, int64(3), second)
	assert.Equal(t, int64(1), other)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New()
	assert.ErrorIs(t, s.InTx(ctx, func(core.UnitOfWork) error { return nil }), context.Canceled)
	assert.ErrorIs(t, s.Ping(ctx), context.Canceled)
}
