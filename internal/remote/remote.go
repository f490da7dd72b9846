// Package remote describes the operations the storefront may invoke against the
// backend that owns products and orders, and provides an in-process and an HTTP
// implementation of them.
package remote

import (
	"context"
	"errors"
	"fmt"

	"stationers/internal/domain"
)

// Backend is the typed remote interface. Durable state lives behind it.
type Backend interface {
	GetAllProducts(ctx context.Context) ([]domain.Product, error)
	GetProductsByCategory(ctx context.Context, category domain.Category) ([]domain.Product, error)
	// GetProductByID returns (nil, nil) when the product does not exist.
	GetProductByID(ctx context.Context, id int64) (*domain.Product, error)
	GetOrders(ctx context.Context) ([]domain.Order, error)
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error
	AddProduct(ctx context.Context, p domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, p domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	SeedProducts(ctx context.Context) error
}

// PlaceOrderRequest is the payload of Backend.PlaceOrder.
type PlaceOrderRequest struct {
	CustomerName string             `json:"customer_name"`
	Phone        string             `json:"phone"`
	Address      string             `json:"address"`
	Items        []domain.OrderItem `json:"items"`
	TotalAmount  int64              `json:"total_amount"`
}

// Gate reports whether the connection to the backend is established.
type Gate interface {
	Ready() bool
}

type alwaysReady struct{}

func (alwaysReady) Ready() bool { return true }

// AlwaysReady is the gate of an in-process backend.
var AlwaysReady Gate = alwaysReady{}

var (
	// ErrRejected means the backend refused the call (bad input, unknown id, no stock).
	ErrRejected = errors.New("rejected by backend")
	// ErrUnavailable means the call did not reach the backend or the backend failed.
	ErrUnavailable = errors.New("backend unavailable")
)

// Error describes a failed remote call.
type Error struct {
	Op      string // operation name, e.g. "placeOrder"
	Status  int    // HTTP status when the call went over the wire
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %d %s", e.Op, e.Status, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }
