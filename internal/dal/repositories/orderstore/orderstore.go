// Package orderstore is the Postgres implementation of the order repository.
// An order, its items and its order.created outbox message are written in
// one transaction.
package orderstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/orders/internal/dal/postgres"
	"github.com/corray333/backend-labs/orders/internal/dal/uow"
	"github.com/corray333/backend-labs/orders/internal/service/models/order"
	"github.com/corray333/backend-labs/orders/internal/service/models/orderevent"
	"github.com/corray333/backend-labs/orders/internal/service/models/outbox"
	"github.com/google/uuid"
)

// Store implements iorderrepo.IOrderRepository.
type Store struct {
	client      *postgres.Client
	eventsTopic string
	maxRetries  int
}

type option func(*Store)

// WithOutboxEvents enables order.created messages for topic.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOutboxEvents(topic string, maxRetries int) option {
	return func(s *Store) {
		s.eventsTopic = topic
		s.maxRetries = maxRetries
	}
}

func New(client *postgres.Client, opts ...option) *Store {
	s := &Store{client: client}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Store) newUOW() *uow.UnitOfWork {
	return uow.NewUnitOfWork(s.client)
}

// Create stores the order under a fresh UUID. Nothing is written unless
// every statement succeeds.
func (s *Store) Create(ctx context.Context, o order.Order) (order.Order, error) {
	o = o.Clone()
	o.ID = uuid.NewString()

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, err
	}
	defer func() {
		if err := work.Rollback(context.WithoutCancel(ctx)); err != nil {
			slog.ErrorContext(ctx, "Error rolling back order transaction", "order_id", o.ID, "error", err)
		}
	}()

	if err := work.OrderRepository().Insert(ctx, o); err != nil {
		return order.Order{}, err
	}

	if err := work.OrderItemRepository().BulkInsert(ctx, o.ID, o.Items); err != nil {
		return order.Order{}, err
	}

	if s.eventsTopic != "" {
		msg, err := outbox.NewOrderCreatedMessage(orderevent.NewOrderCreated(o), s.eventsTopic, s.maxRetries, time.Now())
		if err != nil {
			return order.Order{}, err
		}
		if err := work.OutboxRepository().Insert(ctx, msg); err != nil {
			return order.Order{}, err
		}
	}

	if err := work.Commit(ctx); err != nil {
		return order.Order{}, fmt.Errorf("failed to commit order: %w", err)
	}

	return o, nil
}

// List returns matching orders with their items.
func (s *Store) List(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	items, err := work.OrderItemRepository().QueryByOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return orders, nil
}

// FindByID returns the order with its items or order.ErrNotFound.
func (s *Store) FindByID(ctx context.Context, id string) (order.Order, error) {
	work := s.newUOW()

	o, err := work.OrderRepository().FindByID(ctx, id)
	if err != nil {
		return order.Order{}, err
	}

	items, err := work.OrderItemRepository().QueryByOrderIDs(ctx, []string{id})
	if err != nil {
		return order.Order{}, err
	}
	o.Items = items[id]

	return o, nil
}
