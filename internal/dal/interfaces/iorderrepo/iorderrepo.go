package iorderrepo

import (
	"context"

	"github.com/corray333/backend-labs/orders/internal/service/models/order"
)

// IOrderRepository stores orders.
type IOrderRepository interface {
	// Create stores the order, assigning its ID, and returns the stored copy.
	Create(ctx context.Context, o order.Order) (order.Order, error)

	// List returns orders matching the filter in creation order. A nil filter selects all.
	List(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)

	// FindByID returns order.ErrNotFound when no order has the id.
	FindByID(ctx context.Context, id string) (order.Order, error)
}
