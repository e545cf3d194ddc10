// Package apierror maps service errors to HTTP responses.
package apierror

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/orders/internal/service/models/failure"
	"github.com/corray333/backend-labs/orders/internal/service/models/order"
)

// Status returns the HTTP status for err.
func Status(err error) int {
	if errors.Is(err, order.ErrNotFound) {
		return http.StatusNotFound
	}

	switch failure.KindOf(err) {
	case failure.KindInvalidOrder:
		return http.StatusBadRequest
	case failure.KindCustomerNotFound:
		return http.StatusNotFound
	case failure.KindOutOfStock:
		return http.StatusPreconditionFailed
	case failure.KindDependencyUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Write sends err as a plain text response. Internal errors are logged and
// their details are not exposed.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)

	msg := err.Error()
	switch {
	case errors.Is(err, order.ErrNotFound):
		msg = order.ErrNotFound.Error()
	case status == http.StatusInternalServerError:
		slog.ErrorContext(r.Context(), "Error handling request", "path", r.URL.Path, "error", err)
		msg = http.StatusText(status)
	}

	http.Error(w, msg, status)
}
