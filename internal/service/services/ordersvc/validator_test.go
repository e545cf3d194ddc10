package ordersvc

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/corray333/backend-labs/orders/internal/service/models/failure"
	"github.com/corray333/backend-labs/orders/internal/service/models/order"
	"github.com/corray333/backend-labs/orders/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
)

func item(productID string, quantity int, price string) orderitem.OrderItem {
	return orderitem.OrderItem{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: decimal.RequireFromString(price),
	}
}

func TestValidateInsertOrderShape(t *testing.T) {
	tests := []struct {
		name    string
		order   order.Order
		wantMsg string
	}{
		{
			name:    "no items",
			order:   order.New("C1", []orderitem.OrderItem{}),
			wantMsg: "items must contain at least one item",
		},
		{
			name:    "nil items",
			order:   order.New("C1", nil),
			wantMsg: "items must contain at least one item",
		},
		{
			name:    "missing customer",
			order:   order.New("", []orderitem.OrderItem{item("P1", 1, "1")}),
			wantMsg: "customerId is required",
		},
		{
			name:    "zero quantity",
			order:   order.New("C1", []orderitem.OrderItem{item("P1", 0, "1")}),
			wantMsg: "items[0].quantity must be positive",
		},
		{
			name:    "negative price",
			order:   order.New("C1", []orderitem.OrderItem{item("P1", 1, "-0.01")}),
			wantMsg: "items[0].unitPrice must not be negative",
		},
		{
			name:    "missing product",
			order:   order.New("C1", []orderitem.OrderItem{item("", 1, "1")}),
			wantMsg: "items[0].productId is required",
		},
		{
			name:    "dot dot customer",
			order:   order.New("..", []orderitem.OrderItem{item("P1", 1, "1")}),
			wantMsg: "customerId must not be '.' or '..' or contain '/'",
		},
		{
			name:    "customer with slash",
			order:   order.New("X/../C1", []orderitem.OrderItem{item("P1", 1, "1")}),
			wantMsg: "customerId must not be '.' or '..' or contain '/'",
		},
		{
			name:    "dot product",
			order:   order.New("C1", []orderitem.OrderItem{item(".", 1, "1")}),
			wantMsg: "items[0].productId must not be '.' or '..' or contain '/'",
		},
		{
			name:    "quantity above limit",
			order:   order.New("C1", []orderitem.OrderItem{item("P1", orderitem.MaxQuantity+1, "0")}),
			wantMsg: "items[0].quantity must not exceed 2147483647",
		},
		{
			name: "summed quantity above limit",
			order: order.New("C1", []orderitem.OrderItem{
				item("P1", orderitem.MaxQuantity, "0"), item("P1", 1, "0"),
			}),
			wantMsg: `product "P1": quantity exceeds limit 2147483647`,
		},
		{
			name:    "price below stored precision",
			order:   order.New("C1", []orderitem.OrderItem{item("P1", 1, "0.00001")}),
			wantMsg: "items[0].unitPrice must have at most 4 decimal places",
		},
		{
			name:    "total above stored precision",
			order:   order.New("C1", []orderitem.OrderItem{item("P1", 2, "500000000000000")}),
			wantMsg: "totalAmount must be less than 1000000000000000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			customers := &fakeCustomers{known: map[string]bool{"C1": true}}
			v := NewValidator(customers, newFakeInventory(nil))

			err := v.ValidateInsertOrder(context.Background(), &tt.order)
			if !errors.Is(err, failure.ErrInvalidOrder) {
				t.Fatalf("error = %v, want InvalidOrder", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantMsg)
			}
			if customers.calls != 0 {
				t.Errorf("customer service called %d times for a malformed order", customers.calls)
			}
		})
	}
}

func TestValidateInsertOrderNil(t *testing.T) {
	v := NewValidator(&fakeCustomers{}, newFakeInventory(nil))
	if err := v.ValidateInsertOrder(context.Background(), nil); !errors.Is(err, failure.ErrInvalidOrder) {
		t.Fatalf("error = %v, want InvalidOrder", err)
	}
}

func TestValidateInsertOrderCustomer(t *testing.T) {
	o := order.New("C1", []orderitem.OrderItem{item("P1", 1, "1")})

	tests := []struct {
		name      string
		customers *fakeCustomers
		want      error
	}{
		{name: "exists", customers: &fakeCustomers{known: map[string]bool{"C1": true}}},
		{name: "absent", customers: &fakeCustomers{known: map[string]bool{}}, want: failure.ErrCustomerNotFound},
		{
			name:      "lookup fails",
			customers: &fakeCustomers{err: errors.New("connection refused")},
			want:      failure.ErrDependencyUnavailable,
		},
		{
			name:      "classified lookup error passes through",
			customers: &fakeCustomers{err: failure.DependencyUnavailable("customer service", errors.New("503"))},
			want:      failure.ErrDependencyUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator(tt.customers, newFakeInventory(nil))
			err := v.ValidateInsertOrder(context.Background(), &o)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("error = %v", err)
				}

				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if tt.customers.lookup[0] != "C1" {
				t.Errorf("looked up %q", tt.customers.lookup[0])
			}
		})
	}
}

func TestValidateProductAvailability(t *testing.T) {
	inv := newFakeInventory(map[string]int{"P1": 10, "P2": 1})
	v := NewValidator(&fakeCustomers{}, inv)

	o := order.New("C1", []orderitem.OrderItem{item("P1", 2, "1"), item("P2", 1, "1")})
	results, err := v.ValidateProductAvailability(context.Background(), &o)
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if len(results) != 2 || results[0].ProductID != "P1" || results[1].ProductID != "P2" {
		t.Fatalf("results = %+v", results)
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("result %+v did not pass", r)
		}
	}
	if inv.stock["P1"] != 10 || inv.stock["P2"] != 1 {
		t.Errorf("stock check changed inventory: %v", inv.stock)
	}
}

func TestValidateProductAvailabilityOutOfStock(t *testing.T) {
	inv := newFakeInventory(map[string]int{"P1": 10, "P2": 0, "P3": 0})
	v := NewValidator(&fakeCustomers{}, inv, WithStockCheckConcurrency(1))

	o := order.New("C1", []orderitem.OrderItem{item("P1", 1, "1"), item("P2", 1, "1"), item("P3", 1, "1")})
	_, err := v.ValidateProductAvailability(context.Background(), &o)
	if !errors.Is(err, failure.ErrOutOfStock) {
		t.Fatalf("error = %v, want OutOfStock", err)
	}

	var ferr *failure.Error
	if !errors.As(err, &ferr) || ferr.ProductID != "P2" {
		t.Errorf("failing product = %+v, want P2", ferr)
	}
}

func TestValidateProductAvailabilityEarliestShortfallWins(t *testing.T) {
	inv := newFakeInventory(map[string]int{"P1": 0, "P2": 0})
	inv.checkDelay["P1"] = 50 * time.Millisecond
	v := NewValidator(&fakeCustomers{}, inv, WithStockCheckConcurrency(2))

	o := order.New("C1", []orderitem.OrderItem{item("P1", 1, "1"), item("P2", 1, "1")})
	_, err := v.ValidateProductAvailability(context.Background(), &o)

	var ferr *failure.Error
	if !errors.As(err, &ferr) || ferr.Kind != failure.KindOutOfStock || ferr.ProductID != "P1" {
		t.Fatalf("error = %v, want OutOfStock for P1", err)
	}
}

func TestValidateProductAvailabilitySkipsLaterChecks(t *testing.T) {
	inv := newFakeInventory(map[string]int{"P1": 0, "P2": 5, "P3": 5})
	v := NewValidator(&fakeCustomers{}, inv, WithStockCheckConcurrency(1))

	o := order.New("C1", []orderitem.OrderItem{item("P1", 1, "1"), item("P2", 1, "1"), item("P3", 1, "1")})
	if _, err := v.ValidateProductAvailability(context.Background(), &o); !errors.Is(err, failure.ErrOutOfStock) {
		t.Fatalf("error = %v, want OutOfStock", err)
	}
	if inv.checkCalls != 1 {
		t.Errorf("checks = %v, want only P1 checked", inv.checks)
	}
}

func TestValidateProductAvailabilityQuantityOverflow(t *testing.T) {
	inv := newFakeInventory(map[string]int{"P1": 5})
	v := NewValidator(&fakeCustomers{}, inv)

	o := order.Order{CustomerID: "C1", Items: []orderitem.OrderItem{
		{ProductID: "P1", Quantity: math.MaxInt},
		{ProductID: "P1", Quantity: 2},
	}}
	if _, err := v.ValidateProductAvailability(context.Background(), &o); !errors.Is(err, failure.ErrInvalidOrder) {
		t.Fatalf("error = %v, want InvalidOrder", err)
	}
	if inv.checkCalls != 0 {
		t.Errorf("inventory called %d times", inv.checkCalls)
	}
}

func TestValidateProductAvailabilityAggregates(t *testing.T) {
	inv := newFakeInventory(map[string]int{"P1": 5})
	v := NewValidator(&fakeCustomers{}, inv)

	o := order.New("C1", []orderitem.OrderItem{item("P1", 3, "1"), item("P1", 3, "1")})
	_, err := v.ValidateProductAvailability(context.Background(), &o)
	if !errors.Is(err, failure.ErrOutOfStock) {
		t.Fatalf("error = %v, want OutOfStock for 6 of 5", err)
	}
	if inv.checkCalls != 1 || inv.checks["P1"] != 6 {
		t.Errorf("checks = %v in %d calls, want one check for 6", inv.checks, inv.checkCalls)
	}
}

func TestValidateProductAvailabilityInventoryDown(t *testing.T) {
	inv := newFakeInventory(map[string]int{"P1": 5})
	inv.checkErr["P1"] = errors.New("connection reset")
	v := NewValidator(&fakeCustomers{}, inv)

	o := order.New("C1", []orderitem.OrderItem{item("P1", 1, "1")})
	if _, err := v.ValidateProductAvailability(context.Background(), &o); !errors.Is(err, failure.ErrDependencyUnavailable) {
		t.Fatalf("error = %v, want DependencyUnavailable", err)
	}
}

func TestValidateProductAvailabilityNoItems(t *testing.T) {
	inv := newFakeInventory(nil)
	v := NewValidator(&fakeCustomers{}, inv)

	o := order.New("C1", nil)
	if _, err := v.ValidateProductAvailability(context.Background(), &o); !errors.Is(err, failure.ErrInvalidOrder) {
		t.Fatalf("error = %v, want InvalidOrder", err)
	}
	if inv.checkCalls != 0 {
		t.Errorf("inventory called %d times", inv.checkCalls)
	}
}
