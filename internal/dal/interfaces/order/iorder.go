package iorder

import (
	"context"

	"github.com/corray333/backend-labs/orders/internal/service/models/order"
)

// IOrderPostgresRepository works on the orders table only. Items are stored
// by the order item repository.
type IOrderPostgresRepository interface {
	Insert(ctx context.Context, o order.Order) error
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	FindByID(ctx context.Context, id string) (order.Order, error)
}
