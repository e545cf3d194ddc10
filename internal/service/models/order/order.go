package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/corray333/backend-labs/orders/internal/service/models/orderitem"
	"github.com/corray333/backend-labs/orders/internal/service/models/stock"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrQuantityLimit is returned by Demands when a product's summed
	// quantity is above orderitem.MaxQuantity.
	ErrQuantityLimit = errors.New("quantity exceeds limit")
)

// MaxAmount bounds the order total so it fits the stored NUMERIC(19,4).
var MaxAmount = decimal.New(1, 15)

// Order represents a customer order in the system.
// ID is empty until the order is persisted.
type Order struct {
	ID          string                `json:"id"`
	CustomerID  string                `json:"customerId"  validate:"required,idsegment"`
	OrderedAt   time.Time             `json:"orderedAt"`
	Items       []orderitem.OrderItem `json:"items"       validate:"required,min=1,dive"`
	TotalAmount decimal.Decimal       `json:"totalAmount"`
	Status      Status                `json:"status"`
}

// New builds an unsaved order with derived subtotals and total.
func New(customerID string, items []orderitem.OrderItem) Order {
	o := Order{
		CustomerID: customerID,
		Items:      items,
	}
	o.Recalculate()

	return o
}

// Recalculate recomputes every item subtotal and the order total.
// Client supplied totals are never trusted.
func (o *Order) Recalculate() {
	total := decimal.Zero
	for i := range o.Items {
		o.Items[i].Subtotal = o.Items[i].Total()
		total = total.Add(o.Items[i].Subtotal)
	}
	o.TotalAmount = total
}

// Clone returns a deep copy so callers cannot share the items slice.
func (o Order) Clone() Order {
	if o.Items != nil {
		o.Items = append([]orderitem.OrderItem(nil), o.Items...)
	}

	return o
}

// Demands sums requested quantities per product, keeping the order in which
// products first appear. A sum above orderitem.MaxQuantity is an error.
func (o Order) Demands() ([]stock.Demand, error) {
	index := make(map[string]int, len(o.Items))
	demands := make([]stock.Demand, 0, len(o.Items))
	for _, item := range o.Items {
		if item.Quantity > orderitem.MaxQuantity {
			return nil, quantityLimitError(item.ProductID)
		}
		if i, ok := index[item.ProductID]; ok {
			if demands[i].Quantity > orderitem.MaxQuantity-item.Quantity {
				return nil, quantityLimitError(item.ProductID)
			}
			demands[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(demands)
		demands = append(demands, stock.Demand{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	return demands, nil
}

func quantityLimitError(productID string) error {
	return fmt.Errorf("product %q: %w %d", productID, ErrQuantityLimit, orderitem.MaxQuantity)
}
