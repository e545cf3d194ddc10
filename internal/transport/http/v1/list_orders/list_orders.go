package listorders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/orders/internal/service/models/order"
	"github.com/corray333/backend-labs/orders/internal/transport/http/v1/apierror"
	"github.com/corray333/backend-labs/orders/internal/transport/http/v1/converters"
	"github.com/gorilla/schema"
)

// service is an interface for the service layer.
type service interface {
	ListOrders(ctx context.Context, query order.QueryOrdersModel) ([]order.Order, error)
}

type listOrdersQuery struct {
	CustomerID string `schema:"customerId"`
}

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}

// ListOrders handles the list orders request.
//
//	@Summary		List orders
//	@Description	Returns stored orders in creation order, optionally for one customer.
//	@Tags			orders
//	@Produce		json
//	@Param			customerId	query		string	false	"Customer filter"
//	@Success		200			{array}		converters.OrderResponse
//	@Failure		400			{string}	string	"Malformed query"
//	@Failure		500			{string}	string	"Orders could not be read"
//	@Router			/orders [get]
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	var q listOrdersQuery
	if err := decoder.Decode(&q, r.URL.Query()); err != nil {
		http.Error(w, "Invalid query parameters", http.StatusBadRequest)
		slog.WarnContext(r.Context(), "Error decoding query for list orders", "error", err)

		return
	}

	orders, err := service.ListOrders(r.Context(), order.QueryOrdersModel{CustomerID: q.CustomerID})
	if err != nil {
		apierror.Write(w, r, err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(converters.OrdersToResponse(orders)); err != nil {
		slog.ErrorContext(r.Context(), "Error writing response for list orders", "error", err)
	}
}
