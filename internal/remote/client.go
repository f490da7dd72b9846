package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"stationers/internal/domain"
)

// Client calls the reference backend REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ Backend = (*Client)(nil)

// NewClient builds a client for the backend at baseURL, e.g. http://localhost:9091.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Health probes the backend liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, "health", http.MethodGet, "/health", nil, nil)
}

func (c *Client) GetAllProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	err := c.do(ctx, "getAllProducts", http.MethodGet, "/api/v1/products", nil, &out)
	return out, err
}

func (c *Client) GetProductsByCategory(ctx context.Context, category domain.Category) ([]domain.Product, error) {
	var out []domain.Product
	path := "/api/v1/products?category=" + url.QueryEscape(string(category))
	err := c.do(ctx, "getProductsByCategory", http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	var out domain.Product
	err := c.do(ctx, "getProductById", http.MethodGet, "/api/v1/products/"+strconv.FormatInt(id, 10), nil, &out)
	if err != nil {
		var e *Error
		if errors.As(err, &e) && e.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetOrders(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	err := c.do(ctx, "getOrders", http.MethodGet, "/api/v1/orders", nil, &out)
	return out, err
}

func (c *Client) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*domain.Order, error) {
	var out domain.Order
	if err := c.do(ctx, "placeOrder", http.MethodPost, "/api/v1/orders", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	body := map[string]domain.OrderStatus{"status": status}
	return c.do(ctx, "updateOrderStatus", http.MethodPut, fmt.Sprintf("/api/v1/orders/%d/status", orderID), body, nil)
}

func (c *Client) AddProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	var out domain.Product
	if err := c.do(ctx, "addProduct", http.MethodPost, "/api/v1/products", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	var out domain.Product
	if err := c.do(ctx, "updateProduct", http.MethodPut, fmt.Sprintf("/api/v1/products/%d", p.ID), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, "deleteProduct", http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", id), nil, nil)
}

func (c *Client) SeedProducts(ctx context.Context) error {
	return c.do(ctx, "seedProducts", http.MethodPost, "/api/v1/products/seed", nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return &Error{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Message: err.Error(), Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		kind := ErrUnavailable
		if resp.StatusCode < http.StatusInternalServerError {
			kind = ErrRejected
		}
		return &Error{Op: op, Status: resp.StatusCode, Message: payload.Error, Err: kind}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Message: "decode response", Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	}
	return nil
}
