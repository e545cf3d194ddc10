// Package failure classifies why an order could not be created.
package failure

import (
	"errors"
	"fmt"
)

// Kind is a rejection class. Each kind maps to exactly one HTTP status.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidOrder
	KindCustomerNotFound
	KindOutOfStock
	KindDependencyUnavailable
	KindPersistenceFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidOrder:
		return "InvalidOrder"
	case KindCustomerNotFound:
		return "CustomerNotFound"
	case KindOutOfStock:
		return "OutOfStock"
	case KindDependencyUnavailable:
		return "DependencyUnavailable"
	case KindPersistenceFailure:
		return "PersistenceFailure"
	default:
		return "Unknown"
	}
}

// Error is a classified failure. ProductID is set for OutOfStock.
type Error struct {
	Kind      Kind
	Msg       string
	ProductID string
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}

	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidOrder          = &Error{Kind: KindInvalidOrder, Msg: "invalid order"}
	ErrCustomerNotFound      = &Error{Kind: KindCustomerNotFound, Msg: "customer not found"}
	ErrOutOfStock            = &Error{Kind: KindOutOfStock, Msg: "out of stock"}
	ErrDependencyUnavailable = &Error{Kind: KindDependencyUnavailable, Msg: "dependency unavailable"}
	ErrPersistenceFailure    = &Error{Kind: KindPersistenceFailure, Msg: "persistence failure"}
)

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}

func InvalidOrder(format string, args ...any) error {
	return &Error{Kind: KindInvalidOrder, Msg: fmt.Sprintf(format, args...)}
}

func CustomerNotFound(customerID string) error {
	return &Error{Kind: KindCustomerNotFound, Msg: fmt.Sprintf("customer %q not found", customerID)}
}

func OutOfStock(productID string, requested, available int) error {
	return &Error{
		Kind:      KindOutOfStock,
		Msg:       fmt.Sprintf("product %q is out of stock: requested %d, available %d", productID, requested, available),
		ProductID: productID,
	}
}

// OutOfStockRejected reports a reservation refused by the inventory service,
// which does not say how much is left.
func OutOfStockRejected(productID string, requested int) error {
	return &Error{
		Kind:      KindOutOfStock,
		Msg:       fmt.Sprintf("product %q is out of stock: reservation of %d refused", productID, requested),
		ProductID: productID,
	}
}

func DependencyUnavailable(dependency string, err error) error {
	return &Error{Kind: KindDependencyUnavailable, Msg: dependency + " unavailable", Err: err}
}

func PersistenceFailure(err error) error {
	return &Error{Kind: KindPersistenceFailure, Msg: "failed to persist order", Err: err}
}
