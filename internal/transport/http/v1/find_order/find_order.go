package findorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/orders/internal/service/models/order"
	"github.com/corray333/backend-labs/orders/internal/transport/http/v1/apierror"
	"github.com/corray333/backend-labs/orders/internal/transport/http/v1/converters"
	"github.com/go-chi/chi/v5"
)

type service interface {
	FindOrder(ctx context.Context, id string) (order.Order, error)
}

// FindOrder handles the get order by id request.
//
//	@Summary	Get an order
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"Order id"
//	@Success	200	{object}	converters.OrderResponse
//	@Failure	404	{string}	string	"order not found"
//	@Router		/orders/{id} [get]
func FindOrder(w http.ResponseWriter, r *http.Request, service service) {
	o, err := service.FindOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, r, err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(converters.OrderToResponse(o)); err != nil {
		slog.ErrorContext(r.Context(), "Error writing response for find order", "error", err)
	}
}
