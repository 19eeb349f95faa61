// Package ledger owns the append-only record of completed sales.
package ledger

import (
	"github.com/printloom/printloom/internal/inventory"
)

// DateLayout is the sortable timestamp format stored on every sale. Range
// queries compare these strings lexicographically, so the layout must stay
// most-significant-first.
const DateLayout = "2006-01-02 15:04:05"

// DayLayout is the calendar-day prefix of DateLayout.
const DayLayout = "2006-01-02"

// Sale is an immutable record of one transaction against one inventory
// item. Amounts are minor currency units. Sales are created only by the
// sales engine and never updated or deleted.
type Sale struct {
	ID          int64              `json:"id" db:"id"`
	UserID      int64              `json:"user_id" db:"user_id"`
	ItemID      int64              `json:"item_id" db:"item_id"`
	ItemType    inventory.ItemType `json:"item_type" db:"item_type"`
	ItemName    string             `json:"item_name" db:"item_name"`
	Quantity    int64              `json:"quantity" db:"quantity"`
	UnitPrice   int64              `json:"unit_price" db:"unit_price"`
	TotalAmount int64              `json:"total_amount" db:"total_amount"`
	PaymentType string             `json:"payment_type" db:"payment_type"`
	ReferenceID *string            `json:"reference_id,omitempty" db:"reference_id"`
	SaleDate    string             `json:"sale_date" db:"sale_date"`
	Timestamp   int64              `json:"timestamp" db:"ts_millis"`
}

// Filter narrows ledger listings. Zero values mean "no constraint". From
// and To are inclusive and compared lexicographically against SaleDate, so
// they must use the same sortable layout.
type Filter struct {
	UserID   int64
	ItemType inventory.ItemType
	From     string
	To       string
}
