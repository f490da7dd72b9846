package catalog

import (
	"context"
	"log/slog"
	"sync"

	"stationers/internal/domain"
)

// Source чтения и запись, нужные каталогу; реализуется query.Hooks
type Source interface {
	AllProducts(ctx context.Context) ([]domain.Product, error)
	RefetchAllProducts(ctx context.Context) ([]domain.Product, error)
	ProductsByCategory(ctx context.Context, category domain.Category) ([]domain.Product, error)
	SeedProducts(ctx context.Context) error
}

// ProductView товар в том виде, в каком его показывает витрина
type ProductView struct {
	domain.Product
	CategoryLabel string `json:"category_label"`
	PriceLabel    string `json:"price_label"`
	Available     bool   `json:"available"`
	LowStock      bool   `json:"low_stock"`
}

func NewProductView(p domain.Product) ProductView {
	return ProductView{
		Product:       p,
		CategoryLabel: p.Category.Label(),
		PriceLabel:    domain.FormatPrice(p.Price),
		Available:     p.InStock(),
		LowStock:      p.LowStock(),
	}
}

// CategoryView вкладка каталога
type CategoryView struct {
	ID    domain.Category `json:"id"`
	Label string          `json:"label"`
}

// Page страница каталога; пустой Category означает все товары
type Page struct {
	Category domain.Category `json:"category,omitempty"`
	Products []ProductView   `json:"products"`
}

// Catalog seeds the backend once when the first successful read comes back empty.
type Catalog struct {
	src    Source
	logger *slog.Logger

	mu            sync.Mutex
	seedAttempted bool
}

func New(src Source, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{src: src, logger: logger}
}

// Categories lists the tabs in display order.
func Categories() []CategoryView {
	out := make([]CategoryView, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		out = append(out, CategoryView{ID: c, Label: c.Label()})
	}
	return out
}

func (c *Catalog) Page(ctx context.Context, category domain.Category) (*Page, error) {
	all, err := c.src.AllProducts(ctx)
	if err != nil {
		return nil, err
	}
	return c.page(ctx, category, all)
}

// Retry is the manual "try again": it re-arms the seed attempt and refetches
// regardless of freshness.
func (c *Catalog) Retry(ctx context.Context, category domain.Category) (*Page, error) {
	c.mu.Lock()
	c.seedAttempted = false
	c.mu.Unlock()

	all, err := c.src.RefetchAllProducts(ctx)
	if err != nil {
		return nil, err
	}
	return c.page(ctx, category, all)
}

func (c *Catalog) page(ctx context.Context, category domain.Category, all []domain.Product) (*Page, error) {
	if len(all) == 0 && c.seed(ctx) {
		seeded, err := c.src.AllProducts(ctx)
		if err != nil {
			return nil, err
		}
		all = seeded
	}

	list := all
	if category != "" {
		var err error
		if list, err = c.src.ProductsByCategory(ctx, category); err != nil {
			return nil, err
		}
	}
	p := &Page{Category: category, Products: make([]ProductView, 0, len(list))}
	for _, prod := range list {
		p.Products = append(p.Products, NewProductView(prod))
	}
	return p, nil
}

// seed reports whether a seed was issued and succeeded.
func (c *Catalog) seed(ctx context.Context) bool {
	c.mu.Lock()
	if c.seedAttempted {
		c.mu.Unlock()
		return false
	}
	c.seedAttempted = true
	c.mu.Unlock()

	if err := c.src.SeedProducts(ctx); err != nil {
		c.mu.Lock()
		c.seedAttempted = false
		c.mu.Unlock()
		c.logger.Warn("catalog seed failed", "error", err)
		return false
	}
	c.logger.Info("catalog seeded")
	return true
}

// SeedAttempted is exposed for the health endpoint.
func (c *Catalog) SeedAttempted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seedAttempted
}
