package cart

import (
	"slices"
	"sync"

	"stationers/internal/domain"
)

// LineItem строка корзины: снимок товара и количество (всегда > 0)
type LineItem struct {
	Product  domain.Product `json:"product"`
	Quantity int64          `json:"quantity"`
}

// Subtotal стоимость строки по цене из снимка
func (li LineItem) Subtotal() int64 { return li.Product.Price * li.Quantity }

// Cart корзина одного покупателя. Не больше одной строки на товар,
// строки в порядке добавления.
type Cart struct {
	mu    sync.RWMutex
	items []LineItem
}

func New() *Cart { return &Cart{} }

// AddItem увеличивает количество на 1 или добавляет строку с количеством 1.
// Остаток на складе здесь не проверяется.
func (c *Cart) AddItem(p domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(p.ID); i >= 0 {
		c.items[i].Quantity++
		return
	}
	c.items = append(c.items, LineItem{Product: p, Quantity: 1})
}

func (c *Cart) RemoveItem(productID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(productID); i >= 0 {
		c.items = slices.Delete(c.items, i, i+1)
	}
}

// UpdateQuantity задаёт абсолютное количество; quantity <= 0 удаляет строку.
// Для товара, которого нет в корзине, ничего не делает.
func (c *Cart) UpdateQuantity(productID, quantity int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(productID)
	if i < 0 {
		return
	}
	if quantity <= 0 {
		c.items = slices.Delete(c.items, i, i+1)
		return
	}
	c.items[i].Quantity = quantity
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// RemoveLines вычитает из корзины ранее снятые строки (например, оформленные
// в заказ). Добавленное после снимка остаётся в корзине.
func (c *Cart) RemoveLines(lines []LineItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, li := range lines {
		i := c.index(li.Product.ID)
		if i < 0 {
			continue
		}
		if c.items[i].Quantity <= li.Quantity {
			c.items = slices.Delete(c.items, i, i+1)
			continue
		}
		c.items[i].Quantity -= li.Quantity
	}
}

// Items возвращает копию строк
func (c *Cart) Items() []LineItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) TotalItems() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var n int64
	for _, li := range c.items {
		n += li.Quantity
	}
	return n
}

// TotalAmount сумма в пайсах
func (c *Cart) TotalAmount() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var sum int64
	for _, li := range c.items {
		sum += li.Subtotal()
	}
	return sum
}

func (c *Cart) index(productID int64) int {
	return slices.IndexFunc(c.items, func(li LineItem) bool { return li.Product.ID == productID })
}
