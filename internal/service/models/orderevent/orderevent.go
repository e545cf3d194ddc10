package orderevent

import (
	"time"

	"github.com/corray333/backend-labs/orders/internal/service/models/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const TypeOrderCreated = "order.created"

// Line is one product line of an event.
type Line struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderCreated is published once per persisted order.
type OrderCreated struct {
	EventID     string          `json:"event_id"`
	Type        string          `json:"type"`
	OrderID     string          `json:"order_id"`
	CustomerID  string          `json:"customer_id"`
	OrderStatus string          `json:"order_status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Lines       []Line          `json:"lines"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

func NewOrderCreated(o order.Order) OrderCreated {
	lines := make([]Line, len(o.Items))
	for i, item := range o.Items {
		lines[i] = Line{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}

	return OrderCreated{
		EventID:     uuid.NewString(),
		Type:        TypeOrderCreated,
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		OrderStatus: o.Status.String(),
		TotalAmount: o.TotalAmount,
		Lines:       lines,
		OccurredAt:  o.OrderedAt,
	}
}
