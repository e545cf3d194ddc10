package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/corray333/backend-labs/orders/internal/service/models/failure"
	"github.com/corray333/backend-labs/orders/internal/service/models/order"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{failure.InvalidOrder("items must contain at least one item"), http.StatusBadRequest},
		{failure.CustomerNotFound("C1"), http.StatusNotFound},
		{failure.OutOfStock("P1", 2, 1), http.StatusPreconditionFailed},
		{failure.OutOfStockRejected("P1", 2), http.StatusPreconditionFailed},
		{failure.DependencyUnavailable("inventory service", errors.New("timeout")), http.StatusServiceUnavailable},
		{failure.PersistenceFailure(errors.New("disk full")), http.StatusInternalServerError},
		{fmt.Errorf("failed to find order: %w", order.ErrNotFound), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := Status(tt.err); got != tt.want {
			t.Errorf("Status(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWrite(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantBody string
	}{
		{"not found text is fixed", fmt.Errorf("lookup: %w", order.ErrNotFound), "order not found"},
		{"out of stock names product", failure.OutOfStock("P7", 3, 0), "P7"},
		{"internal details hidden", failure.PersistenceFailure(errors.New("pq: secret")), "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Write(rec, httptest.NewRequest(http.MethodGet, "/orders", nil), tt.err)

			body := strings.TrimSpace(rec.Body.String())
			if !strings.Contains(body, tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", body, tt.wantBody)
			}
			if strings.Contains(body, "secret") {
				t.Errorf("body leaks internal error: %q", body)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
				t.Errorf("content type = %q", ct)
			}
		})
	}
}
