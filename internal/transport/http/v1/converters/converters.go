// Package converters maps between the JSON wire shapes of the v1 API and the
// service models.
package converters

import (
	"time"

	"github.com/corray333/backend-labs/orders/internal/service/models/order"
	"github.com/corray333/backend-labs/orders/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
)

// OrderItemRequest is one line of a create order request.
type OrderItemRequest struct {
	ProductID string          `json:"productId"  example:"P-100"`
	Quantity  int             `json:"quantity"   example:"2"`
	UnitPrice decimal.Decimal `json:"unitPrice"  swaggertype:"string" example:"9.90"`
}

// CreateOrderRequest is the body of POST /orders. Totals are computed by the
// server, so the request carries none.
type CreateOrderRequest struct {
	CustomerID string             `json:"customerId" example:"C-1"`
	Items      []OrderItemRequest `json:"items"`
}

// OrderItemResponse is one line of a stored order.
type OrderItemResponse struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" swaggertype:"string"`
	Subtotal  decimal.Decimal `json:"subtotal"  swaggertype:"string"`
}

// OrderResponse is a stored order.
type OrderResponse struct {
	ID          string              `json:"id"`
	CustomerID  string              `json:"customerId"`
	OrderedAt   time.Time           `json:"orderedAt"`
	Items       []OrderItemResponse `json:"items"`
	TotalAmount decimal.Decimal     `json:"totalAmount" swaggertype:"string"`
	Status      string              `json:"status"`
}

// OrderFromRequest converts the request body to an unsaved order. A missing
// items array stays nil so validation reports it.
func OrderFromRequest(req CreateOrderRequest) order.Order {
	var items []orderitem.OrderItem
	if req.Items != nil {
		items = make([]orderitem.OrderItem, len(req.Items))
		for i, item := range req.Items {
			items[i] = orderitem.OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			}
		}
	}

	return order.New(req.CustomerID, items)
}

// OrderToResponse converts a stored order to its wire shape.
func OrderToResponse(o order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		}
	}

	return OrderResponse{
		ID:          o.ID,
		CustomerID:  o.CustomerID,
		OrderedAt:   o.OrderedAt,
		Items:       items,
		TotalAmount: o.TotalAmount,
		Status:      o.Status.String(),
	}
}

// OrdersToResponse never returns nil, so an empty list encodes as [].
func OrdersToResponse(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = OrderToResponse(o)
	}

	return out
}
