package admin

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"stationers/internal/domain"
)

var ErrUpdateInFlight = errors.New("status update already in progress for this order")

// Source чтения и запись, нужные странице заказов; реализуется query.Hooks
type Source interface {
	Orders(ctx context.Context) ([]domain.Order, error)
	AllProducts(ctx context.Context) ([]domain.Product, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error
}

// ItemView позиция заказа с названием товара
type ItemView struct {
	domain.OrderItem
	ProductName   string `json:"product_name"`
	PriceLabel    string `json:"price_label"`
	SubtotalLabel string `json:"subtotal_label"`
}

// OrderView заказ для таблицы администратора
type OrderView struct {
	domain.Order
	Items       []ItemView `json:"items"`
	StatusLabel string     `json:"status_label"`
	TotalLabel  string     `json:"total_label"`
	ItemCount   int64      `json:"item_count"`
}

// Overview содержимое страницы заказов
type Overview struct {
	Orders []OrderView                 `json:"orders"`
	Counts map[domain.OrderStatus]int `json:"counts"`
	Total  int                         `json:"total"`
}

type Orders struct {
	src Source

	mu       sync.Mutex
	inFlight map[int64]struct{}
}

func New(src Source) *Orders {
	return &Orders{src: src, inFlight: make(map[int64]struct{})}
}

// List returns orders newest first. Product names come from the catalogue;
// a failed catalogue read only degrades names to "Product #<id>".
func (o *Orders) List(ctx context.Context) (*Overview, error) {
	orders, err := o.src.Orders(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string)
	if products, err := o.src.AllProducts(ctx); err == nil {
		for _, p := range products {
			names[p.ID] = p.Name
		}
	}

	sorted := slices.Clone(orders)
	slices.SortStableFunc(sorted, func(a, b domain.Order) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	ov := &Overview{
		Orders: make([]OrderView, 0, len(sorted)),
		Counts: make(map[domain.OrderStatus]int, len(domain.OrderStatuses)),
		Total:  len(sorted),
	}
	for _, s := range domain.OrderStatuses {
		ov.Counts[s] = 0
	}
	for _, ord := range sorted {
		ov.Counts[ord.Status]++
		ov.Orders = append(ov.Orders, orderView(ord, names))
	}
	return ov, nil
}

func orderView(ord domain.Order, names map[int64]string) OrderView {
	v := OrderView{
		Order:       ord,
		Items:       make([]ItemView, 0, len(ord.Items)),
		StatusLabel: ord.Status.Label(),
		TotalLabel:  domain.FormatPrice(ord.TotalAmount),
	}
	for _, it := range ord.Items {
		v.ItemCount += it.Quantity
		v.Items = append(v.Items, ItemView{
			OrderItem:     it,
			ProductName:   ProductName(names, it.ProductID),
			PriceLabel:    domain.FormatPrice(it.Price),
			SubtotalLabel: domain.FormatPrice(it.Subtotal()),
		})
	}
	return v
}

// ProductName looks the product up, falling back to "Product #<id>".
func ProductName(names map[int64]string, id int64) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return "Product #" + strconv.FormatInt(id, 10)
}

// UpdateStatus sends the new status. Any of the four statuses may follow any other.
// A second update for the same order is refused while the first is in flight.
func (o *Orders) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownStatus, status)
	}

	o.mu.Lock()
	if _, busy := o.inFlight[orderID]; busy {
		o.mu.Unlock()
		return ErrUpdateInFlight
	}
	o.inFlight[orderID] = struct{}{}
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		delete(o.inFlight, orderID)
		o.mu.Unlock()
	}()
	return o.src.UpdateOrderStatus(ctx, orderID, status)
}
