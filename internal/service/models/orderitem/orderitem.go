package orderitem

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	// MaxQuantity is the largest quantity a product may be ordered in, per
	// item and summed per product. It matches the quantity tag below.
	MaxQuantity = math.MaxInt32
	// PriceScale is the number of decimal places a stored amount keeps.
	PriceScale = 4
)

// OrderItem represents a product line within an order.
type OrderItem struct {
	ProductID string          `json:"productId" validate:"required,idsegment"`
	Quantity  int             `json:"quantity"  validate:"gt=0,lte=2147483647"`
	UnitPrice decimal.Decimal `json:"unitPrice" validate:"gte=0"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Total returns quantity times unit price.
func (i OrderItem) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// HasPriceScale reports whether the unit price fits in PriceScale decimal
// places without rounding.
func (i OrderItem) HasPriceScale() bool {
	return i.UnitPrice.Equal(i.UnitPrice.Truncate(PriceScale))
}
