package query

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"stationers/internal/domain"
	"stationers/internal/remote"
)

var (
	productsKey = Key{"products"}
	ordersKey   = Key{"orders"}
)

func categoryKey(c domain.Category) Key { return Key{"products", "category", string(c)} }
func productKey(id int64) Key          { return Key{"products", "id", strconv.FormatInt(id, 10)} }

// Policies groups the read policies by data family.
type Policies struct {
	Products Policy
	Orders   Policy
}

// DefaultPolicies: products fresh for 5 minutes, orders for 30 seconds,
// one retry after 2 seconds.
func DefaultPolicies() Policies {
	return Policies{
		Products: Policy{StaleTime: 5 * time.Minute, Retries: 1, RetryDelay: 2 * time.Second},
		Orders:   Policy{StaleTime: 30 * time.Second, Retries: 1, RetryDelay: 2 * time.Second},
	}
}

// Hooks are the typed reads and writes the views use.
type Hooks struct {
	c        *Client
	backend  remote.Backend
	policies Policies
}

func NewHooks(c *Client, backend remote.Backend, policies Policies) *Hooks {
	return &Hooks{c: c, backend: backend, policies: policies}
}

// Client exposes the underlying cache, e.g. to Wait for background refetches.
func (h *Hooks) Client() *Client { return h.c }

func (h *Hooks) AllProducts(ctx context.Context) ([]domain.Product, error) {
	return Fetch(ctx, h.c, productsKey, h.policies.Products, h.allProducts)
}

// RefetchAllProducts ignores the staleness window.
func (h *Hooks) RefetchAllProducts(ctx context.Context) ([]domain.Product, error) {
	return Refetch(ctx, h.c, productsKey, h.policies.Products, h.allProducts)
}

func (h *Hooks) allProducts(ctx context.Context) ([]domain.Product, error) {
	list, err := h.backend.GetAllProducts(ctx)
	return orEmpty(list), err
}

func (h *Hooks) ProductsByCategory(ctx context.Context, category domain.Category) ([]domain.Product, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}
	return Fetch(ctx, h.c, categoryKey(category), h.policies.Products, func(ctx context.Context) ([]domain.Product, error) {
		list, err := h.backend.GetProductsByCategory(ctx, category)
		return orEmpty(list), err
	})
}

// ProductByID returns nil when the backend does not know the product.
// Lookups by ID back actions, not displayed pages, so they are not refetched
// after an invalidation.
func (h *Hooks) ProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	p := h.policies.Products
	p.Passive = true
	return Fetch(ctx, h.c, productKey(id), p, func(ctx context.Context) (*domain.Product, error) {
		return h.backend.GetProductByID(ctx, id)
	})
}

func (h *Hooks) Orders(ctx context.Context) ([]domain.Order, error) {
	return Fetch(ctx, h.c, ordersKey, h.policies.Orders, h.orders)
}

func (h *Hooks) RefetchOrders(ctx context.Context) ([]domain.Order, error) {
	return Refetch(ctx, h.c, ordersKey, h.policies.Orders, h.orders)
}

func (h *Hooks) orders(ctx context.Context) ([]domain.Order, error) {
	list, err := h.backend.GetOrders(ctx)
	return orEmpty(list), err
}

func (h *Hooks) PlaceOrder(ctx context.Context, req remote.PlaceOrderRequest) (*domain.Order, error) {
	return Mutate(ctx, h.c, []Key{ordersKey}, func(ctx context.Context) (*domain.Order, error) {
		return h.backend.PlaceOrder(ctx, req)
	})
}

func (h *Hooks) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	_, err := Mutate(ctx, h.c, []Key{ordersKey}, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, h.backend.UpdateOrderStatus(ctx, orderID, status)
	})
	return err
}

func (h *Hooks) SeedProducts(ctx context.Context) error {
	_, err := Mutate(ctx, h.c, []Key{productsKey}, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, h.backend.SeedProducts(ctx)
	})
	return err
}

func orEmpty[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
