package inventory

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/corray333/backend-labs/orders/internal/dal/clients/httpclient"
	"github.com/corray333/backend-labs/orders/internal/service/models/failure"
	"github.com/corray333/backend-labs/orders/internal/service/models/stock"
)

const dependencyName = "inventory service"

type productResponse struct {
	ID       string `json:"id"`
	Quantity *int   `json:"quantity"`
}

// reservationRequest carries the key that makes reserve and release
// idempotent on the inventory side.
type reservationRequest struct {
	ReservationID string `json:"reservationId"`
	Quantity      int    `json:"quantity"`
}

// Client talks to the inventory service.
type Client struct {
	http *httpclient.Client
}

// MustNewClient creates an inventory client for baseURL.
func MustNewClient(baseURL string, timeout time.Duration, retries uint64) *Client {
	c, err := NewClient(baseURL, timeout, retries)
	if err != nil {
		panic(err)
	}

	return c
}

func NewClient(baseURL string, timeout time.Duration, retries uint64, opts ...httpclient.Option) (*Client, error) {
	hc, err := httpclient.New(baseURL, timeout, "inventory-client", append(opts, httpclient.WithRetries(retries))...)
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory client: %w", err)
	}

	return &Client{http: hc}, nil
}

// CheckStock compares the requested quantity with the stock on hand.
// An unknown product is reported as a failing result with nothing available.
func (c *Client) CheckStock(ctx context.Context, productID string, requested int) (stock.CheckResult, error) {
	resp, err := c.http.Get(ctx, "InventoryClient.CheckStock", "products", productID)
	if err != nil {
		return stock.CheckResult{}, failure.DependencyUnavailable(dependencyName, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return stock.NewCheckResult(productID, requested, 0), nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return stock.CheckResult{}, failure.DependencyUnavailable(dependencyName, &httpclient.StatusError{
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
		})
	}

	var product productResponse
	if err := resp.DecodeJSON(&product); err != nil {
		return stock.CheckResult{}, failure.DependencyUnavailable(dependencyName, err)
	}
	if product.Quantity == nil {
		return stock.CheckResult{}, failure.DependencyUnavailable(
			dependencyName,
			fmt.Errorf("product %q response has no quantity", productID),
		)
	}

	return stock.NewCheckResult(productID, requested, *product.Quantity), nil
}

// Reserve asks the inventory service to decrement stock only if at least
// quantity units remain. A refusal is returned as OutOfStock. Any other
// error leaves the outcome unknown and the caller must release the same
// reservation.
func (c *Client) Reserve(ctx context.Context, reservationID, productID string, quantity int) error {
	body := reservationRequest{ReservationID: reservationID, Quantity: quantity}
	resp, err := c.http.PostJSON(ctx, "InventoryClient.Reserve", body, "products", productID, "reserve")
	if err != nil {
		return failure.DependencyUnavailable(dependencyName, err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	case http.StatusNotFound, http.StatusConflict, http.StatusPreconditionFailed:
		return failure.OutOfStockRejected(productID, quantity)
	default:
		return failure.DependencyUnavailable(dependencyName, &httpclient.StatusError{
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
		})
	}
}

// Release returns the units held under reservationID. A reservation the
// inventory never recorded has nothing to return.
func (c *Client) Release(ctx context.Context, reservationID, productID string, quantity int) error {
	body := reservationRequest{ReservationID: reservationID, Quantity: quantity}
	resp, err := c.http.PostJSON(ctx, "InventoryClient.Release", body, "products", productID, "release")
	if err != nil {
		return failure.DependencyUnavailable(dependencyName, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failure.DependencyUnavailable(dependencyName, &httpclient.StatusError{
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
		})
	}

	return nil
}
