package iorderitem

import (
	"context"

	"github.com/corray333/backend-labs/orders/internal/service/models/orderitem"
)

// PostgresRepository is an interface for order item postgres repository.
type PostgresRepository interface {
	BulkInsert(ctx context.Context, orderID string, items []orderitem.OrderItem) error
	QueryByOrderIDs(ctx context.Context, orderIDs []string) (map[string][]orderitem.OrderItem, error)
}
