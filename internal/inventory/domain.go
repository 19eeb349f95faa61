package inventory

import (
	"errors"
	"strings"
	"time"
)

// ItemType enumerates the sellable item kinds.
type ItemType string

const (
	// ItemTypeProduct is a physical product with countable stock.
	ItemTypeProduct ItemType = "product"
	// ItemTypeService is a service offering with an offered counter.
	ItemTypeService ItemType = "service"
	// ItemTypePrint is a print job with remaining copies.
	ItemTypePrint ItemType = "print"
)

// ParseItemType normalises and validates an item type string.
func ParseItemType(raw string) (ItemType, error) {
	switch ItemType(strings.ToLower(strings.TrimSpace(raw))) {
	case ItemTypeProduct:
		return ItemTypeProduct, nil
	case ItemTypeService:
		return ItemTypeService, nil
	case ItemTypePrint:
		return ItemTypePrint, nil
	default:
		return "", ErrInvalidItemType
	}
}

// Product models a stocked physical item. Prices are minor currency units.
type Product struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	UnitPrice  int64     `json:"unit_price" db:"unit_price"`
	TotalStock int64     `json:"total_stock" db:"total_stock"`
	Sold       int64     `json:"sold" db:"sold"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// ServiceItem models a service offering. Offered only ever increases.
type ServiceItem struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	UnitPrice int64     `json:"unit_price" db:"unit_price"`
	Offered   int64     `json:"offered" db:"offered"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Print models a print run with a remaining copy count.
type Print struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	UnitPrice int64     `json:"unit_price" db:"unit_price"`
	Copies    int64     `json:"copies" db:"copies"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ItemSnapshot is the unified read model over the three item kinds. Count
// carries the type-specific counter: remaining stock for products, total
// offered for services, remaining copies for prints.
type ItemSnapshot struct {
	ItemID   int64    `json:"item_id"`
	ItemType ItemType `json:"item_type"`
	Name     string   `json:"name"`
	Count    int64    `json:"count"`
}

// CreateProductInput describes a new product row.
type CreateProductInput struct {
	Name       string `json:"name" validate:"required,max=200"`
	UnitPrice  int64  `json:"unit_price" validate:"gte=0"`
	TotalStock int64  `json:"total_stock" validate:"gte=0"`
}

// CreateServiceInput describes a new service offering.
type CreateServiceInput struct {
	Name      string `json:"name" validate:"required,max=200"`
	UnitPrice int64  `json:"unit_price" validate:"gte=0"`
}

// CreatePrintInput describes a new print run.
type CreatePrintInput struct {
	Name      string `json:"name" validate:"required,max=200"`
	UnitPrice int64  `json:"unit_price" validate:"gte=0"`
	Copies    int64  `json:"copies" validate:"gte=0"`
}

// ErrItemNotFound indicates the referenced inventory row does not exist.
var ErrItemNotFound = errors.New("inventory: item not found")

// ErrInvalidItemType indicates an unsupported item type string.
var ErrInvalidItemType = errors.New("inventory: invalid item type")

// ErrInsufficientStock triggered when a sale would drive stock or copies negative.
var ErrInsufficientStock = errors.New("inventory: insufficient stock")
