package ordersvc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/corray333/backend-labs/orders/internal/service/models/failure"
	"github.com/corray333/backend-labs/orders/internal/service/models/order"
	"github.com/corray333/backend-labs/orders/internal/service/models/stock"
)

type fakeCustomers struct {
	mu     sync.Mutex
	known  map[string]bool
	err    error
	calls  int
	lookup []string
}

func (f *fakeCustomers) Exists(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lookup = append(f.lookup, id)
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if f.err != nil {
		return false, f.err
	}

	return f.known[id], nil
}

// fakeInventory keeps stock levels and applies reservations to them. Units
// are held per reservation id and product, as the inventory service does.
type fakeInventory struct {
	mu         sync.Mutex
	stock      map[string]int
	checkErr   map[string]error
	checkDelay map[string]time.Duration
	refuse     map[string]bool
	lostReply  map[string]bool
	checks     map[string]int
	checkCalls int
	holds      map[string]int
	reserved   map[string]int
	released   map[string]int
}

func newFakeInventory(levels map[string]int) *fakeInventory {
	return &fakeInventory{
		stock:      levels,
		checkErr:   map[string]error{},
		checkDelay: map[string]time.Duration{},
		refuse:     map[string]bool{},
		lostReply:  map[string]bool{},
		checks:     map[string]int{},
		holds:      map[string]int{},
		reserved:   map[string]int{},
		released:   map[string]int{},
	}
}

func (f *fakeInventory) CheckStock(ctx context.Context, productID string, requested int) (stock.CheckResult, error) {
	f.mu.Lock()
	delay := f.checkDelay[productID]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkCalls++
	f.checks[productID] = requested
	if err := ctx.Err(); err != nil {
		return stock.CheckResult{}, err
	}
	if err := f.checkErr[productID]; err != nil {
		return stock.CheckResult{}, err
	}

	return stock.NewCheckResult(productID, requested, f.stock[productID]), nil
}

// Reserve decrements stock. For products in lostReply the decrement is
// applied but the caller sees a timeout.
func (f *fakeInventory) Reserve(_ context.Context, reservationID, productID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := reservationID + "/" + productID
	if _, ok := f.holds[key]; ok {
		return nil
	}
	if f.refuse[productID] || f.stock[productID] < quantity {
		return failure.OutOfStockRejected(productID, quantity)
	}
	f.stock[productID] -= quantity
	f.holds[key] = quantity
	f.reserved[productID] += quantity

	if f.lostReply[productID] {
		return failure.DependencyUnavailable("inventory service", context.DeadlineExceeded)
	}

	return nil
}

// Release gives back what reservationID holds for productID, if anything.
func (f *fakeInventory) Release(_ context.Context, reservationID, productID string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := reservationID + "/" + productID
	held, ok := f.holds[key]
	if !ok {
		return nil
	}
	delete(f.holds, key)
	f.stock[productID] += held
	f.released[productID] += held

	return nil
}

// failingRepo fails every write and stores nothing.
type failingRepo struct {
	creates int
}

var errDatabaseDown = errors.New("database down")

func (r *failingRepo) Create(context.Context, order.Order) (order.Order, error) {
	r.creates++

	return order.Order{}, errDatabaseDown
}

func (r *failingRepo) List(context.Context, *order.QueryOrdersModel) ([]order.Order, error) {
	return nil, nil
}

func (r *failingRepo) FindByID(context.Context, string) (order.Order, error) {
	return order.Order{}, order.ErrNotFound
}
