package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/corray333/backend-labs/orders/internal/service/models/order"
	"github.com/corray333/backend-labs/orders/internal/service/models/orderitem"
	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
)

const ttl = 10 * time.Minute

type stubRepository struct {
	orders map[string]order.Order
	finds  int

	// started and gate hold FindByID until the test releases it.
	started chan struct{}
	gate    chan struct{}
	seenErr error
}

func (s *stubRepository) Create(_ context.Context, o order.Order) (order.Order, error) {
	o.ID = "generated"
	s.orders[o.ID] = o

	return o, nil
}

func (s *stubRepository) List(context.Context, *order.QueryOrdersModel) ([]order.Order, error) {
	out := make([]order.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}

	return out, nil
}

func (s *stubRepository) FindByID(ctx context.Context, id string) (order.Order, error) {
	if s.gate != nil {
		close(s.started)
		<-s.gate
	}
	s.seenErr = ctx.Err()
	if s.seenErr != nil {
		return order.Order{}, s.seenErr
	}
	s.finds++
	o, ok := s.orders[id]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}

	return o, nil
}

func sampleOrder(id string) order.Order {
	o := order.New("C1", []orderitem.OrderItem{
		{ProductID: "P1", Quantity: 2, UnitPrice: decimal.RequireFromString("9.90")},
	})
	o.ID = id
	o.Status = order.StatusCreated
	o.OrderedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	return o
}

func TestFindByIDCacheHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	repo := &stubRepository{orders: map[string]order.Order{}}
	c := New(repo, db, ttl)

	want := sampleOrder("o-1")
	payload, _ := json.Marshal(want)
	mock.ExpectGet(Key("o-1")).SetVal(string(payload))

	got, err := c.FindByID(context.Background(), "o-1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.ID != want.ID || !got.TotalAmount.Equal(want.TotalAmount) || len(got.Items) != 1 {
		t.Errorf("FindByID() = %+v", got)
	}
	if repo.finds != 0 {
		t.Errorf("repository read on cache hit")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestFindByIDCacheMissFillsCache(t *testing.T) {
	db, mock := redismock.NewClientMock()
	want := sampleOrder("o-1")
	repo := &stubRepository{orders: map[string]order.Order{"o-1": want}}
	c := New(repo, db, ttl)

	payload, _ := json.Marshal(want)
	mock.ExpectGet(Key("o-1")).RedisNil()
	mock.ExpectSet(Key("o-1"), payload, ttl).SetVal("OK")

	got, err := c.FindByID(context.Background(), "o-1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.ID != "o-1" || repo.finds != 1 {
		t.Errorf("got %+v after %d repository reads", got, repo.finds)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestFindByIDRedisDown(t *testing.T) {
	db, mock := redismock.NewClientMock()
	want := sampleOrder("o-1")
	repo := &stubRepository{orders: map[string]order.Order{"o-1": want}}
	c := New(repo, db, ttl)

	payload, _ := json.Marshal(want)
	mock.ExpectGet(Key("o-1")).SetErr(errors.New("connection refused"))
	mock.ExpectSet(Key("o-1"), payload, ttl).SetErr(errors.New("connection refused"))

	got, err := c.FindByID(context.Background(), "o-1")
	if err != nil {
		t.Fatalf("FindByID() error = %v, redis errors must not fail reads", err)
	}
	if got.ID != "o-1" {
		t.Errorf("FindByID() = %+v", got)
	}
}

func TestFindByIDNotFoundIsNotCached(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(&stubRepository{orders: map[string]order.Order{}}, db, ttl)

	mock.ExpectGet(Key("missing")).RedisNil()

	if _, err := c.FindByID(context.Background(), "missing"); !errors.Is(err, order.ErrNotFound) {
		t.Fatalf("FindByID() error = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCreateWarmsCache(t *testing.T) {
	db, mock := redismock.NewClientMock()
	repo := &stubRepository{orders: map[string]order.Order{}}
	c := New(repo, db, ttl)

	o := sampleOrder("")
	stored := o
	stored.ID = "generated"
	payload, _ := json.Marshal(stored)
	mock.ExpectSet(Key("generated"), payload, ttl).SetVal("OK")

	created, err := c.Create(context.Background(), o)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID != "generated" {
		t.Errorf("created id = %q", created.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestFindByIDSharedReadOutlivesCaller(t *testing.T) {
	db, mock := redismock.NewClientMock()
	want := sampleOrder("o-1")
	repo := &stubRepository{
		orders:  map[string]order.Order{"o-1": want},
		started: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	c := New(repo, db, ttl)

	payload, _ := json.Marshal(want)
	mock.ExpectGet(Key("o-1")).RedisNil()
	mock.ExpectSet(Key("o-1"), payload, ttl).SetVal("OK")

	ctx, cancel := context.WithCancel(context.Background())
	type result struct {
		o   order.Order
		err error
	}
	done := make(chan result, 1)
	go func() {
		o, err := c.FindByID(ctx, "o-1")
		done <- result{o: o, err: err}
	}()

	<-repo.started
	cancel()
	close(repo.gate)

	res := <-done
	if repo.seenErr != nil {
		t.Fatalf("repository read saw %v after the caller was cancelled", repo.seenErr)
	}
	if res.err != nil || res.o.ID != "o-1" {
		t.Fatalf("FindByID() = %+v, %v", res.o, res.err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
