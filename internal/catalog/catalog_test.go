package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stationers/internal/domain"
	"stationers/internal/query"
	"stationers/internal/remote"
	"stationers/internal/service"
)

type fakeSource struct {
	products  []domain.Product
	seedErr   error
	seedCalls int
	refetches int
	readErr   error
}

func (f *fakeSource) AllProducts(context.Context) ([]domain.Product, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.products, nil
}

func (f *fakeSource) RefetchAllProducts(ctx context.Context) ([]domain.Product, error) {
	f.refetches++
	return f.AllProducts(ctx)
}

func (f *fakeSource) ProductsByCategory(_ context.Context, c domain.Category) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range f.products {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeSource) SeedProducts(context.Context) error {
	f.seedCalls++
	if f.seedErr != nil {
		return f.seedErr
	}
	for i, p := range service.SeedCatalog() {
		p.ID = int64(i + 1)
		f.products = append(f.products, p)
	}
	return nil
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestPage_SeedsEmptyCatalogOnce(t *testing.T) {
	src := &fakeSource{}
	c := New(src, discard())
	ctx := context.Background()

	p, err := c.Page(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, src.seedCalls)
	assert.Len(t, p.Products, len(service.SeedCatalog()))

	// even if the catalogue is emptied later, the seed is not repeated
	src.products = nil
	p, err = c.Page(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, p.Products)
	assert.NotNil(t, p.Products)
	assert.Equal(t, 1, src.seedCalls)
	assert.True(t, c.SeedAttempted())
}

func TestPage_SeedFailureRearms(t *testing.T) {
	src := &fakeSource{seedErr: errors.New("backend down")}
	c := New(src, discard())
	ctx := context.Background()

	p, err := c.Page(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, p.Products)
	assert.False(t, c.SeedAttempted())

	src.seedErr = nil
	p, err = c.Page(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, src.seedCalls)
	assert.NotEmpty(t, p.Products)
}

func TestPage_NoSeedWhenReadFails(t *testing.T) {
	src := &fakeSource{readErr: errors.New("boom")}
	c := New(src, discard())

	_, err := c.Page(context.Background(), "")
	require.Error(t, err)
	assert.Zero(t, src.seedCalls)
}

func TestPage_NoSeedWhenProductsExist(t *testing.T) {
	src := &fakeSource{products: []domain.Product{{ID: 1, Name: "Pen", Category: domain.CategoryWriting, Price: 500, StockQuantity: 2}}}
	c := New(src, discard())

	p, err := c.Page(context.Background(), "")
	require.NoError(t, err)
	assert.Zero(t, src.seedCalls)
	require.Len(t, p.Products, 1)
	v := p.Products[0]
	assert.Equal(t, "₹5.00", v.PriceLabel)
	assert.Equal(t, "Writing", v.CategoryLabel)
	assert.True(t, v.Available)
	assert.True(t, v.LowStock)
}

func TestPage_FiltersByCategory(t *testing.T) {
	src := &fakeSource{}
	c := New(src, discard())

	p, err := c.Page(context.Background(), domain.CategoryPaper)
	require.NoError(t, err)
	require.NotEmpty(t, p.Products)
	for _, v := range p.Products {
		assert.Equal(t, domain.CategoryPaper, v.Category)
	}
}

func TestRetry_RearmsSeedAndRefetches(t *testing.T) {
	src := &fakeSource{}
	c := New(src, discard())
	ctx := context.Background()

	_, err := c.Page(ctx, "")
	require.NoError(t, err)
	src.products = nil

	p, err := c.Retry(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, src.refetches)
	assert.Equal(t, 2, src.seedCalls)
	assert.NotEmpty(t, p.Products)
}

func TestCategories(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 5)
	assert.Equal(t, CategoryView{ID: domain.CategoryArtSupplies, Label: "Art Supplies"}, cats[2])
}

func TestPage_OutOfStockView(t *testing.T) {
	v := NewProductView(domain.Product{ID: 9, Price: 15000, StockQuantity: 0})
	assert.False(t, v.Available)
	assert.False(t, v.LowStock)
	assert.Equal(t, "₹150.00", v.PriceLabel)
}

func TestPage_ThroughQueryHooks(t *testing.T) {
	ctx := context.Background()
	qc := query.NewClient(query.NewMemoryStore(), remote.AlwaysReady, query.WithLogger(discard()))
	hooks := query.NewHooks(qc, remote.NewInMemory(), query.DefaultPolicies())
	c := New(hooks, discard())

	p, err := c.Page(ctx, "")
	require.NoError(t, err)
	assert.Len(t, p.Products, len(service.SeedCatalog()))

	p, err = c.Page(ctx, domain.CategorySchoolSupplies)
	require.NoError(t, err)
	assert.Len(t, p.Products, 2)

	_, err = c.Page(ctx, "toys")
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)
}
