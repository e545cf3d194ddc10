// Package cache wraps an order repository with a Redis read-through cache.
// Persisted orders never change, so entries are only written, never invalidated.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/orders/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/orders/internal/service/models/order"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "order:"

// Key returns the cache key of an order.
func Key(id string) string {
	return keyPrefix + id
}

// Repository caches FindByID results of the wrapped repository.
type Repository struct {
	next  iorderrepo.IOrderRepository
	rdb   redis.Cmdable
	ttl   time.Duration
	group singleflight.Group
}

func New(next iorderrepo.IOrderRepository, rdb redis.Cmdable, ttl time.Duration) *Repository {
	return &Repository{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
	}
}

// Create stores the order and warms the cache with it.
func (r *Repository) Create(ctx context.Context, o order.Order) (order.Order, error) {
	created, err := r.next.Create(ctx, o)
	if err != nil {
		return order.Order{}, err
	}
	r.store(ctx, created)

	return created, nil
}

// List is not cached.
func (r *Repository) List(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	return r.next.List(ctx, filter)
}

// FindByID serves from Redis and falls back to the wrapped repository.
// Concurrent misses for the same id share one repository read, which is not
// cancelled with the caller that started it. Redis errors only cost a cache
// miss.
func (r *Repository) FindByID(ctx context.Context, id string) (order.Order, error) {
	if o, ok := r.load(ctx, id); ok {
		return o, nil
	}

	v, err, _ := r.group.Do(id, func() (any, error) {
		shared := context.WithoutCancel(ctx)
		o, err := r.next.FindByID(shared, id)
		if err != nil {
			return order.Order{}, err
		}
		r.store(shared, o)

		return o, nil
	})
	if err != nil {
		return order.Order{}, err
	}

	return v.(order.Order).Clone(), nil
}

func (r *Repository) load(ctx context.Context, id string) (order.Order, bool) {
	data, err := r.rdb.Get(ctx, Key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.WarnContext(ctx, "Error reading order from cache", "order_id", id, "error", err)
		}

		return order.Order{}, false
	}

	var o order.Order
	if err := json.Unmarshal(data, &o); err != nil {
		slog.WarnContext(ctx, "Error decoding cached order", "order_id", id, "error", err)

		return order.Order{}, false
	}

	return o, true
}

func (r *Repository) store(ctx context.Context, o order.Order) {
	data, err := json.Marshal(o)
	if err != nil {
		slog.WarnContext(ctx, "Error encoding order for cache", "order_id", o.ID, "error", err)

		return
	}

	if err := r.rdb.Set(ctx, Key(o.ID), data, r.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "Error writing order to cache", "order_id", o.ID, "error", err)
	}
}
