package app

import "distribution-backend/internal/core"

// ItemListResult is returned by ListItems.
type ItemListResult struct {
	Items []core.Item `json:"items"`
}

// CustomerListResult is returned by ListCustomers.
type CustomerListResult struct {
	Customers []core.Customer `json:"customers"`
}

// IssuanceListResult is returned by ListIssuances.
type IssuanceListResult struct {
	Issuances []core.IssuanceSummary `json:"issuances"`
	Year      int                    `json:"year,omitempty"`
	Month     int                    `json:"month,omitempty"`
}
