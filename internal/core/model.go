package core

import "time"

// PaymentStatus is the settlement state of an issuance's financial distribution.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// Valid reports whether s is one of the two known states.
func (s PaymentStatus) Valid() bool {
	return s == PaymentUnpaid || s == PaymentPaid
}

// Item is a stocked product. OnHand is never negative.
type Item struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	UnitCost  int64     `json:"unit_cost"`
	Unit      string    `json:"unit"`
	OnHand    int64     `json:"on_hand"`
	CreatedAt time.Time `json:"created_at"`
}

// Customer is the receiving party of an issuance.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// Issuance is the goods-issuance header. Totals always equal the sums over Lines.
type Issuance struct {
	ID                 int64          `json:"id"`
	CustomerID         int64          `json:"customer_id"`
	CustomerName       string         `json:"customer_name,omitempty"` // joined from customers
	DocumentNumber     string         `json:"document_number"`
	OrganizationalUnit string         `json:"organizational_unit"`
	PurchaseOrderRef   *string        `json:"purchase_order_ref,omitempty"`
	IssueDate          time.Time      `json:"issue_date"`
	DueDate            time.Time      `json:"due_date"`
	GrossRevenue       int64          `json:"gross_revenue"`
	CostOfGoods        int64          `json:"cost_of_goods"`
	GrossMargin        int64          `json:"gross_margin"`
	Lines              []IssuanceLine `json:"lines"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// IssuanceLine is one item row on an issuance. Subtotal = Quantity × UnitPrice.
type IssuanceLine struct {
	ID         int64  `json:"id"`
	IssuanceID int64  `json:"issuance_id"`
	LineNumber int    `json:"line_number"`
	ItemID     int64  `json:"item_id"`
	ItemName   string `json:"item_name,omitempty"` // joined from items
	Quantity   int64  `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
	Subtotal   int64  `json:"subtotal"`
}

// OwnerCount is the number of equal owner shares in a profit split.
const OwnerCount = 3

// FinancialDistribution holds the operating costs and profit split of one
// issuance. Exactly one exists per issuance and it is updated in place.
type FinancialDistribution struct {
	ID               int64             `json:"id"`
	IssuanceID       int64             `json:"issuance_id"`
	FeeRatePerUnit   int64             `json:"fee_rate_per_unit"`
	HandlingFeeTotal int64             `json:"handling_fee_total"`
	ShippingCharge   int64             `json:"shipping_charge"`
	OperatingCost    int64             `json:"operating_cost"`
	RunningMargin    int64             `json:"running_margin"`
	PaymentStatus    PaymentStatus     `json:"payment_status"`
	OwnerShares      [OwnerCount]int64 `json:"owner_shares"`
	ReserveShare     int64             `json:"reserve_share"`
	PeriodYear       int               `json:"period_year"`
	PeriodMonth      int               `json:"period_month"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Input ceilings. Quantities are counted in units, amounts in the smallest
// currency unit.
const (
	MaxQuantity = 1_000_000_000
	MaxAmount   = 1_000_000_000_000_000
)

// LineDraft is one requested line of an issuance draft.
type LineDraft struct {
	ItemID    int64 `json:"item_id" validate:"gt=0"`
	Quantity  int64 `json:"quantity" validate:"gt=0,max=1000000000"`
	UnitPrice int64 `json:"unit_price" validate:"gte=0,max=1000000000000000"`
}

// IssuanceDraft is the caller's input for creating or replacing an issuance.
type IssuanceDraft struct {
	CustomerID       int64         `json:"customer_id" validate:"gt=0"`
	IssueDate        time.Time     `json:"issue_date"`
	Lines            []LineDraft   `json:"lines" validate:"min=1,dive"`
	ShippingCharge   int64         `json:"shipping_charge" validate:"gte=0,max=1000000000000000"`
	PaymentStatus    PaymentStatus `json:"payment_status" validate:"omitempty,oneof=unpaid paid"`
	PurchaseOrderRef *string       `json:"purchase_order_ref,omitempty" validate:"omitempty,max=64"`
	FeeRatePerUnit   int64         `json:"fee_rate_per_unit" validate:"gte=0,max=1000000000000000"`
}

// IssuanceResult is returned by Create and Update.
type IssuanceResult struct {
	ID             int64          `json:"id"`
	DocumentNumber string         `json:"document_number"`
	IssueDate      time.Time      `json:"issue_date"`
	DueDate        time.Time      `json:"due_date"`
	Totals         Financials     `json:"totals"`
	PaymentStatus  PaymentStatus  `json:"payment_status"`
	Lines          []IssuanceLine `json:"lines"`
}

// IssuanceEditView is everything an edit form needs to re-render an issuance.
// Available maps each referenced item to its on-hand quantity plus what this
// issuance currently holds, i.e. the ceiling an edit is checked against.
type IssuanceEditView struct {
	Issuance     Issuance              `json:"issuance"`
	Customer     Customer              `json:"customer"`
	Distribution FinancialDistribution `json:"distribution"`
	Available    map[int64]int64       `json:"available"`
}

// IssuanceSummary is a list row.
type IssuanceSummary struct {
	ID             int64         `json:"id"`
	DocumentNumber string        `json:"document_number"`
	CustomerID     int64         `json:"customer_id"`
	CustomerName   string        `json:"customer_name"`
	IssueDate      time.Time     `json:"issue_date"`
	DueDate        time.Time     `json:"due_date"`
	GrossRevenue   int64         `json:"gross_revenue"`
	RunningMargin  int64         `json:"running_margin"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
}

// IssuanceFilter selects issuances by accounting period. Zero values match all.
type IssuanceFilter struct {
	Year  int
	Month int
}

// PeriodSummary aggregates the profit split across one accounting period.
type PeriodSummary struct {
	Year          int               `json:"year"`
	Month         int               `json:"month"`
	Issuances     int               `json:"issuances"`
	GrossRevenue  int64             `json:"gross_revenue"`
	RunningMargin int64             `json:"running_margin"`
	OwnerShares   [OwnerCount]int64 `json:"owner_shares"`
	ReserveShare  int64             `json:"reserve_share"`
	Unpaid        int               `json:"unpaid"`
}
