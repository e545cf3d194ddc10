package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/orders/internal/dal/postgres"
	"github.com/corray333/backend-labs/orders/internal/service/models/order"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// OrderDal represents order data access layer model.
type OrderDal struct {
	Id          string          `db:"id"`
	CustomerId  string          `db:"customer_id"`
	OrderedAt   time.Time       `db:"ordered_at"`
	TotalAmount decimal.Decimal `db:"total_amount"`
	Status      string          `db:"status"`
}

// ToModel converts OrderDal to service layer Order model without items.
func (o *OrderDal) ToModel() (*order.Order, error) {
	status, err := order.ParseStatus(o.Status)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", o.Id, err)
	}

	return &order.Order{
		ID:          o.Id,
		CustomerID:  o.CustomerId,
		OrderedAt:   o.OrderedAt.UTC(),
		TotalAmount: o.TotalAmount,
		Status:      status,
	}, nil
}

// OrderDalFromModel converts service layer Order model to OrderDal.
func OrderDalFromModel(o *order.Order) *OrderDal {
	return &OrderDal{
		Id:          o.ID,
		CustomerId:  o.CustomerID,
		OrderedAt:   o.OrderedAt,
		TotalAmount: o.TotalAmount,
		Status:      o.Status.String(),
	}
}

var orderColumns = []string{"id", "customer_id", "ordered_at", "total_amount", "status"}

// PostgresOrderRepository reads and writes the orders table.
type PostgresOrderRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a repository on a pool or a transaction.
func NewPostgresOrderRepository(conn postgres.Conn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert writes the order row. The caller assigns the id.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) error {
	dal := OrderDalFromModel(&o)
	query, args, err := r.sb.Insert("orders").
		Columns(orderColumns...).
		Values(dal.Id, dal.CustomerId, dal.OrderedAt, dal.TotalAmount, dal.Status).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

// Query retrieves orders, without items, in creation order.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	query := r.sb.Select(orderColumns...).From("orders").OrderBy("seq ASC")
	if filter != nil && filter.CustomerID != "" {
		query = query.Where(sq.Eq{"customer_id": filter.CustomerID})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	result := []order.Order{}
	for rows.Next() {
		var dal OrderDal
		if err := rows.Scan(&dal.Id, &dal.CustomerId, &dal.OrderedAt, &dal.TotalAmount, &dal.Status); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// FindByID returns the order row or order.ErrNotFound.
func (r *PostgresOrderRepository) FindByID(ctx context.Context, id string) (order.Order, error) {
	sql, args, err := r.sb.Select(orderColumns...).From("orders").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build query: %w", err)
	}

	var dal OrderDal
	err = r.conn.QueryRow(ctx, sql, args...).
		Scan(&dal.Id, &dal.CustomerId, &dal.OrderedAt, &dal.TotalAmount, &dal.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return order.Order{}, order.ErrNotFound
	}
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to find order: %w", err)
	}

	model, err := dal.ToModel()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to convert order dal to model: %w", err)
	}

	return *model, nil
}
