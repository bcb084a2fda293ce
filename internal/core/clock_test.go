package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAddMonths(t *testing.T) {
	d := func(y int, m time.Month, day int) time.Time { return time.Date(y, m, day, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		in   time.Time
		n    int
		want time.Time
	}{
		{d(2024, 3, 5), 1, d(2024, 4, 5)},
		{d(2024, 1, 31), 1, d(2024, 2, 29)},
		{d(2023, 1, 31), 1, d(2023, 2, 28)},
		{d(2024, 3, 31), 1, d(2024, 4, 30)},
		{d(2024, 12, 15), 1, d(2025, 1, 15)},
		{d(2024, 8, 31), 6, d(2025, 2, 28)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AddMonths(tt.in, tt.n), "%s + %d", tt.in.Format("2006-01-02"), tt.n)
	}
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2024, 3, 5, 23, 59, 0, 0, time.FixedZone("WIB", 7*3600))
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), DateOnly(in))
}
