package failure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSentinelsMatchByKind(t *testing.T) {
	err := fmt.Errorf("create order: %w", OutOfStock("P2", 5, 3))

	if !errors.Is(err, ErrOutOfStock) {
		t.Error("wrapped OutOfStock does not match ErrOutOfStock")
	}
	if errors.Is(err, ErrCustomerNotFound) {
		t.Error("OutOfStock matches ErrCustomerNotFound")
	}
	if got := KindOf(err); got != KindOutOfStock {
		t.Errorf("KindOf() = %s, want OutOfStock", got)
	}

	var fe *Error
	if !errors.As(err, &fe) || fe.ProductID != "P2" {
		t.Errorf("product id not carried: %+v", fe)
	}
	if !strings.Contains(err.Error(), `"P2"`) {
		t.Errorf("message does not name the product: %q", err.Error())
	}
}

func TestDependencyUnavailableKeepsCause(t *testing.T) {
	err := DependencyUnavailable("customer service", context.DeadlineExceeded)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("cause lost")
	}
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Error("kind lost")
	}
}

func TestKindOfUnclassified(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindUnknown {
		t.Errorf("KindOf() = %s, want Unknown", got)
	}
	if got := KindOf(nil); got != KindUnknown {
		t.Errorf("KindOf(nil) = %s, want Unknown", got)
	}
}
