package ordersvc

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/corray333/backend-labs/orders/internal/service/models/failure"
	"github.com/corray333/backend-labs/orders/internal/service/models/order"
	"github.com/corray333/backend-labs/orders/internal/service/models/orderitem"
	"github.com/corray333/backend-labs/orders/internal/service/models/stock"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const defaultStockCheckConcurrency = 8

type customerLookup interface {
	Exists(ctx context.Context, customerID string) (bool, error)
}

type stockChecker interface {
	CheckStock(ctx context.Context, productID string, requested int) (stock.CheckResult, error)
}

// Validator runs the business checks an order must pass before it is stored.
type Validator struct {
	customers   customerLookup
	inventory   stockChecker
	validate    *validator.Validate
	concurrency int
}

type validatorOption func(*Validator)

// WithStockCheckConcurrency caps the number of parallel stock checks.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithStockCheckConcurrency(n int) validatorOption {
	return func(v *Validator) {
		if n > 0 {
			v.concurrency = n
		}
	}
}

// NewValidator creates a Validator backed by the given clients.
func NewValidator(customers customerLookup, inventory stockChecker, opts ...validatorOption) *Validator {
	v := &Validator{
		customers:   customers,
		inventory:   inventory,
		validate:    newStructValidator(),
		concurrency: defaultStockCheckConcurrency,
	}
	for _, opt := range opts {
		opt(v)
	}

	return v
}

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()

			return f
		}

		return nil
	}, decimal.Decimal{})

	// ids travel as a single URL path segment to the customer and inventory
	// services.
	_ = v.RegisterValidation("idsegment", func(fl validator.FieldLevel) bool {
		id := fl.Field().String()

		return id != "." && id != ".." && !strings.Contains(id, "/")
	})

	return v
}

// ValidateInsertOrder checks the order shape and then that the customer
// exists. Shape errors never reach the customer service.
func (v *Validator) ValidateInsertOrder(ctx context.Context, o *order.Order) error {
	ctx, span := tracer.Start(ctx, "Validator.ValidateInsertOrder")
	defer span.End()

	if o == nil {
		return failure.InvalidOrder("order is required")
	}

	if err := v.validate.StructCtx(ctx, o); err != nil {
		return structuralFailure(err)
	}
	if err := checkAmounts(o); err != nil {
		return err
	}

	exists, err := v.customers.Exists(ctx, o.CustomerID)
	if err != nil {
		if failure.KindOf(err) == failure.KindUnknown {
			return failure.DependencyUnavailable("customer service", err)
		}

		return err
	}
	if !exists {
		return failure.CustomerNotFound(o.CustomerID)
	}

	return nil
}

// ValidateProductAvailability checks stock for every product in the order,
// summing quantities of repeated products. The first problem in item order
// decides the outcome: a shortfall is OutOfStock, a failed check is
// DependencyUnavailable. The checks have no side effects.
func (v *Validator) ValidateProductAvailability(ctx context.Context, o *order.Order) ([]stock.CheckResult, error) {
	ctx, span := tracer.Start(ctx, "Validator.ValidateProductAvailability")
	defer span.End()

	if o == nil || len(o.Items) == 0 {
		return nil, failure.InvalidOrder("items must contain at least one item")
	}

	demands, err := o.Demands()
	if err != nil {
		return nil, failure.InvalidOrder("%v", err)
	}
	span.SetAttributes(attribute.Int("order.products", len(demands)))

	results := make([]stock.CheckResult, len(demands))
	errs := make([]error, len(demands))

	// Checks never cancel each other. A failure only skips checks of later
	// products that have not started, since they cannot change the outcome.
	var (
		mu        sync.Mutex
		firstFail = len(demands)
	)
	skip := func(i int) bool {
		mu.Lock()
		defer mu.Unlock()

		return i > firstFail
	}
	fail := func(i int) {
		mu.Lock()
		defer mu.Unlock()
		firstFail = min(firstFail, i)
	}

	var g errgroup.Group
	g.SetLimit(v.concurrency)
	for i, d := range demands {
		g.Go(func() error {
			if skip(i) {
				return nil
			}
			res, err := v.inventory.CheckStock(ctx, d.ProductID, d.Quantity)
			if err != nil {
				errs[i] = err
				fail(i)

				return nil
			}
			results[i] = res
			if !res.Passed {
				fail(i)
			}

			return nil
		})
	}
	_ = g.Wait()

	for i, res := range results {
		if err := errs[i]; err != nil {
			if failure.KindOf(err) == failure.KindUnknown {
				return nil, failure.DependencyUnavailable("inventory service", err)
			}

			return nil, err
		}
		if !res.Passed {
			return nil, failure.OutOfStock(res.ProductID, res.Requested, res.Available)
		}
	}

	return results, nil
}

// checkAmounts rejects amounts the store could not keep exactly and per
// product quantities above orderitem.MaxQuantity.
func checkAmounts(o *order.Order) error {
	total := decimal.Zero
	for i, item := range o.Items {
		if !item.HasPriceScale() {
			return failure.InvalidOrder("items[%d].unitPrice must have at most %d decimal places", i, orderitem.PriceScale)
		}
		total = total.Add(item.Total())
	}
	if total.GreaterThanOrEqual(order.MaxAmount) {
		return failure.InvalidOrder("totalAmount must be less than %s", order.MaxAmount)
	}
	if _, err := o.Demands(); err != nil {
		return failure.InvalidOrder("%v", err)
	}

	return nil
}

func structuralFailure(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return failure.InvalidOrder("invalid order: %v", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}

	return failure.InvalidOrder("%s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	switch fe.Tag() {
	case "required":
		if fe.Kind() == reflect.Slice {
			return field + " must contain at least one item"
		}

		return field + " is required"
	case "min":
		return field + " must contain at least one item"
	case "gt":
		return field + " must be positive"
	case "gte":
		return field + " must not be negative"
	case "lte":
		return field + " must not exceed " + fe.Param()
	case "idsegment":
		return field + " must not be '.' or '..' or contain '/'"
	default:
		return field + " is invalid"
	}
}
