package remote

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stationers/internal/backend"
	"stationers/internal/domain"
	"stationers/internal/repository"
	"stationers/internal/service"
)

func init() { gin.SetMode(gin.TestMode) }

func newBackendServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := repository.NewMemoryStore()
	tx := repository.NewMemoryTx(store)
	srv := backend.NewServer(
		service.NewProductService(store, tx),
		service.NewOrderService(store, repository.NewMemoryOrders(store), tx),
	)
	ts := httptest.NewServer(srv.Engine())
	t.Cleanup(ts.Close)
	return ts
}

// both implementations must behave the same way
func backends(t *testing.T) map[string]Backend {
	ts := newBackendServer(t)
	return map[string]Backend{
		"local": NewInMemory(),
		"http":  NewClient(ts.URL, 5*time.Second),
	}
}

func TestBackend_SeedAndRead(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			all, err := b.GetAllProducts(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)

			require.NoError(t, b.SeedProducts(ctx))
			all, err = b.GetAllProducts(ctx)
			require.NoError(t, err)
			assert.Len(t, all, len(service.SeedCatalog()))

			paper, err := b.GetProductsByCategory(ctx, domain.CategoryPaper)
			require.NoError(t, err)
			require.NotEmpty(t, paper)
			for _, p := range paper {
				assert.Equal(t, domain.CategoryPaper, p.Category)
			}

			p, err := b.GetProductByID(ctx, all[0].ID)
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, all[0].Name, p.Name)

			missing, err := b.GetProductByID(ctx, 9999)
			require.NoError(t, err)
			assert.Nil(t, missing)
		})
	}
}

func TestBackend_OrderLifecycle(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			a, err := b.AddProduct(ctx, domain.Product{Name: "Pen", Category: domain.CategoryWriting, Price: 500, StockQuantity: 3})
			require.NoError(t, err)
			bb, err := b.AddProduct(ctx, domain.Product{Name: "Ream", Category: domain.CategoryPaper, Price: 1200, StockQuantity: 3})
			require.NoError(t, err)

			o, err := b.PlaceOrder(ctx, PlaceOrderRequest{
				CustomerName: "Asha",
				Phone:        "9876543210",
				Address:      "12 MG Road, Pune",
				Items:        []domain.OrderItem{{ProductID: a.ID, Quantity: 2, Price: 500}, {ProductID: bb.ID, Quantity: 1, Price: 1200}},
				TotalAmount:  2200,
			})
			require.NoError(t, err)
			assert.Equal(t, int64(2200), o.TotalAmount)
			assert.Equal(t, domain.OrderStatusPending, o.Status)
			assert.False(t, o.Timestamp.IsZero())

			require.NoError(t, b.UpdateOrderStatus(ctx, o.ID, domain.OrderStatusDispatched))
			orders, err := b.GetOrders(ctx)
			require.NoError(t, err)
			require.Len(t, orders, 1)
			assert.Equal(t, domain.OrderStatusDispatched, orders[0].Status)

			_, err = b.PlaceOrder(ctx, PlaceOrderRequest{
				CustomerName: "Asha", Phone: "9876543210", Address: "12 MG Road, Pune",
				Items:       []domain.OrderItem{{ProductID: a.ID, Quantity: 5, Price: 500}},
				TotalAmount: 2500,
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRejected)

			err = b.UpdateOrderStatus(ctx, 999, domain.OrderStatusDelivered)
			assert.ErrorIs(t, err, ErrRejected)
		})
	}
}

func TestBackend_ProductManagement(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			p, err := b.AddProduct(ctx, domain.Product{Name: "Eraser", Category: domain.CategorySchoolSupplies, Price: 500, StockQuantity: 9})
			require.NoError(t, err)
			p.Price = 700
			updated, err := b.UpdateProduct(ctx, *p)
			require.NoError(t, err)
			assert.Equal(t, int64(700), updated.Price)

			require.NoError(t, b.DeleteProduct(ctx, p.ID))
			assert.ErrorIs(t, b.DeleteProduct(ctx, p.ID), ErrRejected)

			_, err = b.AddProduct(ctx, domain.Product{Name: "Bad", Category: "toys"})
			assert.ErrorIs(t, err, ErrRejected)
		})
	}
}

func TestClient_ServerFailureIsUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"boom"}`)
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL, time.Second).GetOrders(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, http.StatusInternalServerError, rerr.Status)
	assert.Equal(t, "getOrders: 500 boom", rerr.Error())
}

func TestClient_ConnectionRefused(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := NewClient(url, time.Second).GetAllProducts(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

type flakyProber struct{ calls atomic.Int32 }

func (f *flakyProber) Health(context.Context) error {
	if f.calls.Add(1) == 1 {
		return errors.New("connection refused")
	}
	return nil
}

func TestDial_BecomesReady(t *testing.T) {
	p := &flakyProber{}
	conn := Dial(context.Background(), p, 100*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))

	select {
	case <-conn.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("dial did not finish")
	}
	assert.True(t, conn.Ready())
	assert.Equal(t, int32(2), p.calls.Load())
}

func TestDial_CancelledStaysNotReady(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &alwaysDown{}
	conn := Dial(ctx, p, 50*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
	cancel()

	select {
	case <-conn.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("dial did not stop")
	}
	assert.False(t, conn.Ready())
}

type alwaysDown struct{}

func (alwaysDown) Health(context.Context) error { return errors.New("down") }

func TestAlwaysReady(t *testing.T) {
	assert.True(t, AlwaysReady.Ready())
}
