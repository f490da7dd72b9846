package domain

import (
	"errors"
	"time"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownStatus   = errors.New("unknown order status")
)

// Category категория товара в каталоге
type Category string

const (
	CategoryWriting          Category = "writing"
	CategoryPaper            Category = "paper"
	CategoryArtSupplies      Category = "artSupplies"
	CategoryOfficeEssentials Category = "officeEssentials"
	CategorySchoolSupplies   Category = "schoolSupplies"
)

// Categories все категории в порядке вкладок каталога
var Categories = []Category{
	CategoryWriting,
	CategoryPaper,
	CategoryArtSupplies,
	CategoryOfficeEssentials,
	CategorySchoolSupplies,
}

var categoryLabels = map[Category]string{
	CategoryWriting:          "Writing",
	CategoryPaper:            "Paper",
	CategoryArtSupplies:      "Art Supplies",
	CategoryOfficeEssentials: "Office Essentials",
	CategorySchoolSupplies:   "School Supplies",
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label человекочитаемое название категории
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// LowStockThreshold при остатке не больше порога показываем "Only N left"
const LowStockThreshold = 5

// Product товар магазина. Цена в пайсах.
type Product struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Category      Category `json:"category"`
	Price         int64    `json:"price"`
	StockQuantity int64    `json:"stock_quantity"`
	ImageURL      string   `json:"image_url"`
}

// InStock товар можно положить в корзину
func (p Product) InStock() bool { return p.StockQuantity > 0 }

func (p Product) LowStock() bool {
	return p.InStock() && p.StockQuantity <= LowStockThreshold
}

// OrderStatus тип статуса заказа
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusDispatched OrderStatus = "dispatched"
	OrderStatusDelivered  OrderStatus = "delivered"
)

// OrderStatuses статусы в порядке прохождения заказа
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusDispatched,
	OrderStatusDelivered,
}

var statusLabels = map[OrderStatus]string{
	OrderStatusPending:    "Pending",
	OrderStatusProcessing: "Processing",
	OrderStatusDispatched: "Dispatched",
	OrderStatusDelivered:  "Delivered",
}

func (s OrderStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s OrderStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// OrderItem позиция в заказе; Price: цена на момент заказа
type OrderItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
	Price     int64 `json:"price"`
}

// Subtotal стоимость позиции
func (it OrderItem) Subtotal() int64 { return it.Price * it.Quantity }

// Order сущность заказа
type Order struct {
	ID           int64       `json:"id"`
	CustomerName string      `json:"customer_name"`
	Phone        string      `json:"phone"`
	Address      string      `json:"address"`
	Timestamp    time.Time   `json:"timestamp"`
	Status       OrderStatus `json:"status"`
	TotalAmount  int64       `json:"total_amount"`
	Items        []OrderItem `json:"items"`
}
