package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const documentPrefix = "INV"

// DocumentNumberGenerator formats issuance numbers as
// INV/{seq:03d}/{dd}/{unit}/{mm}/{yyyy}.
//
// Next must be called inside the same unit of work that inserts the header,
// after all validation has passed, so that a failed issuance never consumes
// a number and concurrent issuances in one scope serialize on the counter row.
type DocumentNumberGenerator struct {
	unit string
}

func NewDocumentNumberGenerator(organizationalUnit string) *DocumentNumberGenerator {
	return &DocumentNumberGenerator{unit: strings.ToUpper(strings.TrimSpace(organizationalUnit))}
}

// Unit returns the organizational unit stamped on generated numbers.
func (g *DocumentNumberGenerator) Unit() string { return g.unit }

// Next reserves and formats the next number for date's (unit, year, month).
// The purchase-order reference is recorded on the header by the caller and
// does not change the format.
func (g *DocumentNumberGenerator) Next(ctx context.Context, seq SequenceRepository, date time.Time, _ *string) (string, error) {
	n, err := seq.Next(ctx, SequenceScope{Unit: g.unit, Year: date.Year(), Month: int(date.Month())})
	if err != nil {
		return "", fmt.Errorf("failed to generate document sequence: %w", err)
	}
	return FormatDocumentNumber(n, date, g.unit), nil
}

// FormatDocumentNumber renders a sequence value for date and unit.
func FormatDocumentNumber(seq int64, date time.Time, unit string) string {
	return fmt.Sprintf("%s/%03d/%02d/%s/%02d/%d", documentPrefix, seq, date.Day(), unit, int(date.Month()), date.Year())
}
