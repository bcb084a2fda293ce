package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSequences struct {
	last map[SequenceScope]int64
	err  error
}

func (c *countingSequences) Next(_ context.Context, scope SequenceScope) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	if c.last == nil {
		c.last = map[SequenceScope]int64{}
	}
	c.last[scope]++
	return c.last[scope], nil
}

func TestFormatDocumentNumber(t *testing.T) {
	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "INV/001/05/DST/03/2024", FormatDocumentNumber(1, date, "DST"))
	assert.Equal(t, "INV/042/05/DST/03/2024", FormatDocumentNumber(42, date, "DST"))
	assert.Equal(t, "INV/1234/31/JKT/12/2025", FormatDocumentNumber(1234, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), "JKT"))
}

func TestDocumentNumberGenerator_Next(t *testing.T) {
	ctx := context.Background()
	gen := NewDocumentNumberGenerator(" dst ")
	assert.Equal(t, "DST", gen.Unit())

	seq := &countingSequences{}
	march5 := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	march20 := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	april1 := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	po := "PO-77"
	first, err := gen.Next(ctx, seq, march5, &po)
	require.NoError(t, err)
	second, err := gen.Next(ctx, seq, march20, nil)
	require.NoError(t, err)
	other, err := gen.Next(ctx, seq, april1, nil)
	require.NoError(t, err)

	assert.Equal(t, "INV/001/05/DST/03/2024", first)
	assert.Equal(t, "INV/002/20/DST/03/2024", second)
	assert.Equal(t, "INV/001/01/DST/04/2024", other)
}

func TestDocumentNumberGenerator_PropagatesSequenceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewDocumentNumberGenerator("DST").Next(context.Background(), &countingSequences{err: boom}, time.Now(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
