// Package sales implements the transactional sale recording engine: one
// inventory adjustment and one ledger append, committed atomically.
package sales

import "errors"

// RecordSaleInput carries everything needed to record one sale. Amounts
// are minor currency units.
type RecordSaleInput struct {
	UserID      int64
	ItemID      int64
	ItemType    string
	ItemName    string
	Quantity    int64
	UnitPrice   int64
	PaymentType string
	// ReferenceID is an optional client-supplied UUID carried on the sale
	// for reconciliation against external payment records.
	ReferenceID string
}

// RevenueSummary is the scalar rollup exposed at /sales/summary.
type RevenueSummary struct {
	TotalRevenue   int64   `json:"total_revenue"`
	TotalSales     int64   `json:"total_sales"`
	AverageRevenue float64 `json:"average_revenue"`
}

// ErrInvalidQuantity indicates a non-positive quantity.
var ErrInvalidQuantity = errors.New("sales: quantity must be positive")

// ErrInvalidUnitPrice indicates a negative unit price.
var ErrInvalidUnitPrice = errors.New("sales: unit price must be >= 0")

// ErrMissingField indicates a required field was absent.
var ErrMissingField = errors.New("sales: missing required field")

// ErrInvalidReference indicates a malformed reference id.
var ErrInvalidReference = errors.New("sales: reference id must be a UUID")

// ErrTransactionFailed wraps persistence failures; the caller must treat
// the sale as not having happened.
var ErrTransactionFailed = errors.New("sales: transaction failed")
