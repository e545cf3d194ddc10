// Package memory implements an in-memory order repository.
package memory

import (
	"context"
	"sync"

	"github.com/corray333/backend-labs/orders/internal/service/models/order"
	"github.com/google/uuid"
)

// Repository keeps orders in process memory, in insertion order.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]order.Order
	ids    []string
}

// New creates a new in-memory repository.
func New() *Repository {
	return &Repository{orders: make(map[string]order.Order)}
}

// Create stores the order under a fresh id.
func (r *Repository) Create(ctx context.Context, o order.Order) (order.Order, error) {
	if err := ctx.Err(); err != nil {
		return order.Order{}, err
	}

	o = o.Clone()
	o.ID = uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	r.ids = append(r.ids, o.ID)

	return o.Clone(), nil
}

// FindByID retrieves an order by ID.
func (r *Repository) FindByID(_ context.Context, id string) (order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}

	return o.Clone(), nil
}

// List returns orders matching the filter.
func (r *Repository) List(_ context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]order.Order, 0, len(r.ids))
	for _, id := range r.ids {
		o := r.orders[id]
		if filter.Matches(o) {
			out = append(out, o.Clone())
		}
	}

	return out, nil
}
