package remote

import (
	"context"
	"errors"
	"fmt"

	"stationers/internal/domain"
	"stationers/internal/repository"
	"stationers/internal/service"
)

// Local serves the remote interface in-process from the reference backend services.
type Local struct {
	products *service.ProductService
	orders   *service.OrderService
}

var _ Backend = (*Local)(nil)

func NewLocal(products *service.ProductService, orders *service.OrderService) *Local {
	return &Local{products: products, orders: orders}
}

// NewInMemory wires a Local backend over a fresh in-memory store.
func NewInMemory() *Local {
	store := repository.NewMemoryStore()
	tx := repository.NewMemoryTx(store)
	return NewLocal(
		service.NewProductService(store, tx),
		service.NewOrderService(store, repository.NewMemoryOrders(store), tx),
	)
}

func localErr(op string, err error) error {
	if err == nil {
		return nil
	}
	kind := ErrUnavailable
	if errors.Is(err, service.ErrInvalidInput) || errors.Is(err, service.ErrNotEnoughStock) || errors.Is(err, repository.ErrNotFound) {
		kind = ErrRejected
	}
	return &Error{Op: op, Message: err.Error(), Err: fmt.Errorf("%w: %w", kind, err)}
}

func (l *Local) GetAllProducts(ctx context.Context) ([]domain.Product, error) {
	list, err := l.products.List(ctx, "")
	return list, localErr("getAllProducts", err)
}

func (l *Local) GetProductsByCategory(ctx context.Context, category domain.Category) ([]domain.Product, error) {
	list, err := l.products.List(ctx, category)
	return list, localErr("getProductsByCategory", err)
}

func (l *Local) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := l.products.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return p, localErr("getProductById", err)
}

func (l *Local) GetOrders(ctx context.Context) ([]domain.Order, error) {
	list, err := l.orders.List(ctx)
	return list, localErr("getOrders", err)
}

func (l *Local) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*domain.Order, error) {
	o, err := l.orders.PlaceOrder(ctx, service.PlaceOrderInput{
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Address:      req.Address,
		Items:        req.Items,
		TotalAmount:  req.TotalAmount,
	})
	return o, localErr("placeOrder", err)
}

func (l *Local) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	_, err := l.orders.UpdateStatus(ctx, orderID, status)
	return localErr("updateOrderStatus", err)
}

func (l *Local) AddProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	created, err := l.products.Create(ctx, p)
	return created, localErr("addProduct", err)
}

func (l *Local) UpdateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	updated, err := l.products.Update(ctx, p)
	return updated, localErr("updateProduct", err)
}

func (l *Local) DeleteProduct(ctx context.Context, id int64) error {
	return localErr("deleteProduct", l.products.Delete(ctx, id))
}

func (l *Local) SeedProducts(ctx context.Context) error {
	_, err := l.products.Seed(ctx)
	return localErr("seedProducts", err)
}
