package ordersvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/orders/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/orders/internal/service/models/failure"
	"github.com/corray333/backend-labs/orders/internal/service/models/order"
	"github.com/corray333/backend-labs/orders/internal/service/models/stock"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("ordersvc")

// stockReserver performs the conditional decrement that makes a stock check
// binding, and undoes it. Both calls are idempotent per reservation id.
type stockReserver interface {
	Reserve(ctx context.Context, reservationID, productID string, quantity int) error
	Release(ctx context.Context, reservationID, productID string, quantity int) error
}

// OrderService is a service for managing orders.
type OrderService struct {
	repo      iorderrepo.IOrderRepository
	validator *Validator
	reserver  stockReserver
	now       func() time.Time
	newID     func() string
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService. It panics when a required
// dependency is missing.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}

	switch {
	case s.repo == nil:
		panic("ordersvc: order repository is required")
	case s.validator == nil:
		panic("ordersvc: validator is required")
	case s.reserver == nil:
		panic("ordersvc: stock reserver is required")
	}

	return s
}

// WithRepository sets the order repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRepository(repo iorderrepo.IOrderRepository) option {
	return func(s *OrderService) {
		s.repo = repo
	}
}

// WithValidator sets the order validator.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithValidator(v *Validator) option {
	return func(s *OrderService) {
		s.validator = v
	}
}

// WithStockReserver sets the inventory reservation client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithStockReserver(r stockReserver) option {
	return func(s *OrderService) {
		s.reserver = r
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *OrderService) {
		s.now = now
	}
}

// CreateOrder validates the order, reserves its stock and persists it.
// Steps run strictly in order and the first failure ends the attempt. Stock
// reserved for an attempt that does not end persisted is released, so a
// failed or abandoned request leaves inventory untouched.
func (s *OrderService) CreateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.CreateOrder",
		trace.WithAttributes(attribute.String("order.customer_id", o.CustomerID)),
	)
	defer span.End()

	o = o.Clone()
	o.ID = ""
	o.Recalculate()

	if err := s.validator.ValidateInsertOrder(ctx, &o); err != nil {
		return order.Order{}, reject(ctx, span, err)
	}

	results, err := s.validator.ValidateProductAvailability(ctx, &o)
	if err != nil {
		return order.Order{}, reject(ctx, span, err)
	}

	reservationID := s.newID()
	span.SetAttributes(attribute.String("order.reservation_id", reservationID))

	reserved, err := s.reserve(ctx, reservationID, results)
	if err != nil {
		return order.Order{}, reject(ctx, span, err)
	}

	o.OrderedAt = s.now().UTC().Truncate(time.Microsecond)
	o.Status = order.StatusCreated

	created, err := s.repo.Create(ctx, o)
	if err != nil {
		s.release(ctx, reservationID, reserved)

		return order.Order{}, reject(ctx, span, failure.PersistenceFailure(err))
	}

	span.SetAttributes(attribute.String("order.id", created.ID))
	slog.InfoContext(ctx, "Order created",
		"order_id", created.ID,
		"customer_id", created.CustomerID,
		"total_amount", created.TotalAmount.String(),
	)

	return created, nil
}

// ListOrders returns every stored order matching the filter. It never
// returns a nil slice.
func (s *OrderService) ListOrders(ctx context.Context, query order.QueryOrdersModel) ([]order.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.ListOrders")
	defer span.End()

	orders, err := s.repo.List(ctx, &query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	if orders == nil {
		return []order.Order{}, nil
	}

	return orders, nil
}

// FindOrder returns the order with the given id or order.ErrNotFound.
func (s *OrderService) FindOrder(ctx context.Context, id string) (order.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.FindOrder",
		trace.WithAttributes(attribute.String("order.id", id)),
	)
	defer span.End()

	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return order.Order{}, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return order.Order{}, fmt.Errorf("failed to find order: %w", err)
	}

	return o, nil
}

// reserve takes every checked quantity from the inventory in item order.
// On the first failure it gives back what was already taken. A failure other
// than a refusal may have been applied upstream, so that product is given
// back as well.
func (s *OrderService) reserve(
	ctx context.Context,
	reservationID string,
	results []stock.CheckResult,
) ([]stock.Demand, error) {
	reserved := make([]stock.Demand, 0, len(results))
	for _, res := range results {
		d := stock.Demand{ProductID: res.ProductID, Quantity: res.Requested}
		if err := s.reserver.Reserve(ctx, reservationID, d.ProductID, d.Quantity); err != nil {
			if failure.KindOf(err) != failure.KindOutOfStock {
				reserved = append(reserved, d)
			}
			s.release(ctx, reservationID, reserved)
			if failure.KindOf(err) == failure.KindUnknown {
				return nil, failure.DependencyUnavailable("inventory service", err)
			}

			return nil, err
		}
		reserved = append(reserved, d)
	}

	return reserved, nil
}

// release runs even if the request context is already cancelled.
func (s *OrderService) release(ctx context.Context, reservationID string, reserved []stock.Demand) {
	ctx = context.WithoutCancel(ctx)
	for _, d := range reserved {
		if err := s.reserver.Release(ctx, reservationID, d.ProductID, d.Quantity); err != nil {
			slog.ErrorContext(ctx, "Error releasing stock reservation",
				"reservation_id", reservationID,
				"product_id", d.ProductID,
				"quantity", d.Quantity,
				"error", err,
			)
		}
	}
}

func reject(ctx context.Context, span trace.Span, err error) error {
	kind := failure.KindOf(err)
	span.SetAttributes(attribute.String("order.rejection", kind.String()))

	switch kind {
	case failure.KindDependencyUnavailable, failure.KindPersistenceFailure, failure.KindUnknown:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "Error creating order", "kind", kind.String(), "error", err)
	default:
		slog.InfoContext(ctx, "Order rejected", "kind", kind.String(), "reason", err.Error())
	}

	return err
}
