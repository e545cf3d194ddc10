package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/orders/internal/dal/postgres"
	"github.com/corray333/backend-labs/orders/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
)

// OrderItemDal represents order item data access layer model.
type OrderItemDal struct {
	OrderId   string          `db:"order_id"`
	Position  int             `db:"line_no"`
	ProductId string          `db:"product_id"`
	Quantity  int             `db:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price"`
	Subtotal  decimal.Decimal `db:"subtotal"`
}

// ToModel converts OrderItemDal to service layer OrderItem model.
func (oi *OrderItemDal) ToModel() orderitem.OrderItem {
	return orderitem.OrderItem{
		ProductID: oi.ProductId,
		Quantity:  oi.Quantity,
		UnitPrice: oi.UnitPrice,
		Subtotal:  oi.Subtotal,
	}
}

// PostgresOrderItemRepository reads and writes the order_items table.
type PostgresOrderItemRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderItemRepository creates a repository on a pool or a transaction.
func NewPostgresOrderItemRepository(conn postgres.Conn) *PostgresOrderItemRepository {
	return &PostgresOrderItemRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// BulkInsert inserts all items of one order in a single statement, keeping
// their position.
func (r *PostgresOrderItemRepository) BulkInsert(
	ctx context.Context,
	orderID string,
	items []orderitem.OrderItem,
) error {
	if len(items) == 0 {
		return nil
	}

	query := r.sb.Insert("order_items").
		Columns("order_id", "line_no", "product_id", "quantity", "unit_price", "subtotal")
	for i, item := range items {
		query = query.Values(orderID, i, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to bulk insert order items: %w", err)
	}

	return nil
}

// QueryByOrderIDs returns the items of the given orders keyed by order id,
// each list in position order.
func (r *PostgresOrderItemRepository) QueryByOrderIDs(
	ctx context.Context,
	orderIDs []string,
) (map[string][]orderitem.OrderItem, error) {
	result := make(map[string][]orderitem.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	sql, args, err := r.sb.
		Select("order_id", "line_no", "product_id", "quantity", "unit_price", "subtotal").
		From("order_items").
		Where(sq.Eq{"order_id": orderIDs}).
		OrderBy("order_id", "line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dal OrderItemDal
		err := rows.Scan(
			&dal.OrderId,
			&dal.Position,
			&dal.ProductId,
			&dal.Quantity,
			&dal.UnitPrice,
			&dal.Subtotal,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		result[dal.OrderId] = append(result[dal.OrderId], dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
