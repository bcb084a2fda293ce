package app

// CreateItemRequest is the input for registering an item.
type CreateItemRequest struct {
	Name         string `json:"name"`
	Unit         string `json:"unit"`
	UnitCost     int64  `json:"unit_cost"`
	InitialStock int64  `json:"initial_stock"`
}

// ReceiveStockRequest is the input for recording a goods receipt.
type ReceiveStockRequest struct {
	ItemID   int64 `json:"item_id"`
	Quantity int64 `json:"quantity"`
}

// CreateCustomerRequest is the input for registering a customer.
type CreateCustomerRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// IssuanceRequest is the input for creating or replacing a goods issuance.
type IssuanceRequest struct {
	CustomerID       int64               `json:"customer_id"`
	IssueDate        string              `json:"issue_date"` // YYYY-MM-DD; empty means today
	Lines            []IssuanceLineInput `json:"lines"`
	ShippingCharge   int64               `json:"shipping_charge"`
	PaymentStatus    string              `json:"payment_status"`     // defaults to unpaid
	PurchaseOrderRef string              `json:"purchase_order_ref"` // optional
	FeeRatePerUnit   *int64              `json:"fee_rate_per_unit"`  // nil means the configured default
}

// IssuanceLineInput is a single line within an IssuanceRequest.
type IssuanceLineInput struct {
	ItemID    int64 `json:"item_id"`
	Quantity  int64 `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
}
