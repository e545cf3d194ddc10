package uow

import (
	"context"
	"errors"
	"fmt"

	"github.com/corray333/backend-labs/orders/internal/dal/interfaces/ioutboxrepo"
	iorder "github.com/corray333/backend-labs/orders/internal/dal/interfaces/order"
	iorderitem "github.com/corray333/backend-labs/orders/internal/dal/interfaces/orderitem"
	"github.com/corray333/backend-labs/orders/internal/dal/postgres"
	orderrepo "github.com/corray333/backend-labs/orders/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/corray333/backend-labs/orders/internal/dal/repositories/orderitem/postgres"
	outboxrepo "github.com/corray333/backend-labs/orders/internal/dal/repositories/outbox/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UnitOfWork groups the table repositories. Before Begin they run on the
// pool, after Begin on a single transaction.
type UnitOfWork struct {
	pool          *pgxpool.Pool
	tx            pgx.Tx
	orderRepo     *orderrepo.PostgresOrderRepository
	orderItemRepo *orderitemrepo.PostgresOrderItemRepository
	outboxRepo    *outboxrepo.OutboxRepository
}

func (u *UnitOfWork) OrderRepository() iorder.IOrderPostgresRepository {
	return u.orderRepo
}

func (u *UnitOfWork) OrderItemRepository() iorderitem.PostgresRepository {
	return u.orderItemRepo
}

func (u *UnitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

func NewUnitOfWork(client *postgres.Client) *UnitOfWork {
	u := &UnitOfWork{pool: client.Pool()}
	u.bind(client.Pool())

	return u
}

func (u *UnitOfWork) bind(conn postgres.Conn) {
	u.orderRepo = orderrepo.NewPostgresOrderRepository(conn)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(conn)
	u.outboxRepo = outboxrepo.NewOutboxRepository(conn)
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	// rebind repositories to the transaction
	u.bind(tx)

	return nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

// Rollback is a no-op after a successful Commit.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}

	return err
}
