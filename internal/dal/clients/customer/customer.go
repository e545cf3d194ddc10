package customer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/corray333/backend-labs/orders/internal/dal/clients/httpclient"
	"github.com/corray333/backend-labs/orders/internal/service/models/failure"
)

const dependencyName = "customer service"

// Client looks customers up in the customer service.
type Client struct {
	http *httpclient.Client
}

// MustNewClient creates a customer client for baseURL.
func MustNewClient(baseURL string, timeout time.Duration, retries uint64) *Client {
	c, err := NewClient(baseURL, timeout, retries)
	if err != nil {
		panic(err)
	}

	return c
}

func NewClient(baseURL string, timeout time.Duration, retries uint64, opts ...httpclient.Option) (*Client, error) {
	hc, err := httpclient.New(baseURL, timeout, "customer-client", append(opts, httpclient.WithRetries(retries))...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer client: %w", err)
	}

	return &Client{http: hc}, nil
}

// Exists reports whether the customer is known. Only an explicit 404 means
// absent; every other failure is returned as DependencyUnavailable.
func (c *Client) Exists(ctx context.Context, customerID string) (bool, error) {
	resp, err := c.http.Get(ctx, "CustomerClient.Exists", "customers", customerID)
	if err != nil {
		return false, failure.DependencyUnavailable(dependencyName, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	default:
		return false, failure.DependencyUnavailable(dependencyName, &httpclient.StatusError{
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
		})
	}
}
