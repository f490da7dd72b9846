package service

import (
	"context"
	"errors"
	"strings"

	"stationers/internal/domain"
	"stationers/internal/repository"
)

// OrderService реализует логику заказов: оформление, список, смена статуса
type OrderService struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	tx       repository.TxManager
}

func NewOrderService(products repository.ProductRepository, orders repository.OrderRepository, tx repository.TxManager) *OrderService {
	return &OrderService{products: products, orders: orders, tx: tx}
}

var ErrNotEnoughStock = errors.New("not enough stock")

// PlaceOrderInput данные оформления заказа
type PlaceOrderInput struct {
	CustomerName string
	Phone        string
	Address      string
	Items        []domain.OrderItem
	TotalAmount  int64
}

func (in PlaceOrderInput) validate() error {
	if strings.TrimSpace(in.CustomerName) == "" || strings.TrimSpace(in.Phone) == "" || strings.TrimSpace(in.Address) == "" {
		return ErrInvalidInput
	}
	if len(in.Items) == 0 {
		return ErrInvalidInput
	}
	var sum int64
	for _, it := range in.Items {
		if it.ProductID <= 0 || it.Quantity <= 0 || it.Price < 0 {
			return ErrInvalidInput
		}
		sum += it.Subtotal()
	}
	if sum != in.TotalAmount {
		return ErrInvalidInput
	}
	return nil
}

// PlaceOrder проверяет наличие товара, атомарно списывает запас и создаёт заказ в статусе pending
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*domain.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var created *domain.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		// accumulate updates to avoid partial state
		need := make(map[int64]int64)
		for _, it := range in.Items {
			need[it.ProductID] += it.Quantity
		}
		productCopies := make([]*domain.Product, 0, len(need))
		for id, qty := range need {
			p, err := s.products.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if p.StockQuantity < qty {
				return ErrNotEnoughStock
			}
			p.StockQuantity -= qty
			productCopies = append(productCopies, p)
		}
		for _, p := range productCopies {
			if err := s.products.Update(ctx, p); err != nil {
				return err
			}
		}

		o := domain.Order{
			CustomerName: strings.TrimSpace(in.CustomerName),
			Phone:        strings.TrimSpace(in.Phone),
			Address:      strings.TrimSpace(in.Address),
			Items:        in.Items,
			Status:       domain.OrderStatusPending,
			TotalAmount:  in.TotalAmount,
		}
		if err := s.orders.Create(ctx, &o); err != nil {
			return err
		}
		created = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetOrder возвращает заказ по id
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.orders.GetByID(ctx, id)
}

func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

// UpdateStatus ставит любой из четырёх статусов независимо от текущего
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if id <= 0 || !status.Valid() {
		return nil, ErrInvalidInput
	}
	var updated *domain.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		o.Status = status
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
