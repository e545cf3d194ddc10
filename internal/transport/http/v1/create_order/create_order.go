package createorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/orders/internal/service/models/order"
	"github.com/corray333/backend-labs/orders/internal/transport/http/v1/apierror"
	"github.com/corray333/backend-labs/orders/internal/transport/http/v1/converters"
)

const maxBodyBytes = 1 << 20

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, o order.Order) (order.Order, error)
}

// CreateOrder handles the create order request.
//
//	@Summary		Create an order
//	@Description	Validates the customer and stock, then stores the order.
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			order	body		converters.CreateOrderRequest	true	"Order to create"
//	@Success		201		{object}	converters.OrderResponse
//	@Failure		400		{string}	string	"Malformed body or invalid order"
//	@Failure		404		{string}	string	"Customer not found"
//	@Failure		412		{string}	string	"Product out of stock"
//	@Failure		503		{string}	string	"Customer or inventory service unavailable"
//	@Failure		500		{string}	string	"Order could not be stored"
//	@Router			/orders [post]
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	var req converters.CreateOrderRequest

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "Failed to decode request body", http.StatusBadRequest)
		slog.WarnContext(r.Context(), "Error decoding request body for create order", "error", err)

		return
	}

	created, err := service.CreateOrder(r.Context(), converters.OrderFromRequest(req))
	if err != nil {
		apierror.Write(w, r, err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(converters.OrderToResponse(created)); err != nil {
		slog.ErrorContext(r.Context(), "Error writing response for create order", "error", err)
	}
}
