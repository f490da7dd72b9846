package query

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stationers/internal/domain"
	"stationers/internal/remote"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)} }

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type gate struct {
	mu    sync.Mutex
	ready bool
}

func (g *gate) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ready
}

func (g *gate) set(v bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ready = v
}

// countingBackend wraps the in-memory backend, counts calls and injects failures.
// Reads snapshot the backend before the hook runs, so a blocked read returns
// what the backend held when it was issued.
type countingBackend struct {
	*remote.Local

	mu    sync.Mutex
	calls map[string]int
	fail  map[string]int // remaining failures per operation
	hook  map[string]func(call int)
	nils  bool
}

func newCountingBackend() *countingBackend {
	return &countingBackend{
		Local: remote.NewInMemory(),
		calls: make(map[string]int),
		fail:  make(map[string]int),
		hook:  make(map[string]func(int)),
	}
}

var errBoom = errors.New("boom")

func (b *countingBackend) enter(op string) error {
	b.mu.Lock()
	b.calls[op]++
	call := b.calls[op]
	hook := b.hook[op]
	fail := b.fail[op] > 0
	if fail {
		b.fail[op]--
	}
	b.mu.Unlock()
	if hook != nil {
		hook(call)
	}
	if fail {
		return errBoom
	}
	return nil
}

func (b *countingBackend) count(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

func (b *countingBackend) failNext(op string, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail[op] = n
}

func (b *countingBackend) onCall(op string, fn func(call int)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hook[op] = fn
}

func (b *countingBackend) GetAllProducts(ctx context.Context) ([]domain.Product, error) {
	list, err := b.Local.GetAllProducts(ctx)
	if ferr := b.enter("getAllProducts"); ferr != nil {
		return nil, ferr
	}
	if b.nils {
		return nil, nil
	}
	return list, err
}

func (b *countingBackend) GetProductsByCategory(ctx context.Context, c domain.Category) ([]domain.Product, error) {
	list, err := b.Local.GetProductsByCategory(ctx, c)
	if ferr := b.enter("getProductsByCategory"); ferr != nil {
		return nil, ferr
	}
	return list, err
}

func (b *countingBackend) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := b.Local.GetProductByID(ctx, id)
	if ferr := b.enter("getProductById"); ferr != nil {
		return nil, ferr
	}
	return p, err
}

func (b *countingBackend) GetOrders(ctx context.Context) ([]domain.Order, error) {
	list, err := b.Local.GetOrders(ctx)
	if ferr := b.enter("getOrders"); ferr != nil {
		return nil, ferr
	}
	if b.nils {
		return nil, nil
	}
	return list, err
}

func (b *countingBackend) PlaceOrder(ctx context.Context, req remote.PlaceOrderRequest) (*domain.Order, error) {
	if err := b.enter("placeOrder"); err != nil {
		return nil, err
	}
	return b.Local.PlaceOrder(ctx, req)
}

func (b *countingBackend) UpdateOrderStatus(ctx context.Context, id int64, st domain.OrderStatus) error {
	if err := b.enter("updateOrderStatus"); err != nil {
		return err
	}
	return b.Local.UpdateOrderStatus(ctx, id, st)
}

func (b *countingBackend) SeedProducts(ctx context.Context) error {
	if err := b.enter("seedProducts"); err != nil {
		return err
	}
	return b.Local.SeedProducts(ctx)
}

type fixture struct {
	hooks   *Hooks
	backend *countingBackend
	clock   *fakeClock
	gate    *gate
}

func testPolicies() Policies {
	p := DefaultPolicies()
	p.Products.RetryDelay = time.Millisecond
	p.Orders.RetryDelay = time.Millisecond
	return p
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, NewMemoryStore())
}

func newFixtureWithStore(t *testing.T, store Store) *fixture {
	t.Helper()
	clock := newFakeClock()
	g := &gate{ready: true}
	b := newCountingBackend()
	c := NewClient(store, g,
		WithClock(clock.Now),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return &fixture{hooks: NewHooks(c, b, testPolicies()), backend: b, clock: clock, gate: g}
}

func (f *fixture) placeOrder(t *testing.T) *domain.Order {
	t.Helper()
	ctx := context.Background()
	p, err := f.backend.AddProduct(ctx, domain.Product{Name: "Pen", Category: domain.CategoryWriting, Price: 500, StockQuantity: 10})
	require.NoError(t, err)
	o, err := f.hooks.PlaceOrder(ctx, remote.PlaceOrderRequest{
		CustomerName: "Asha", Phone: "9876543210", Address: "12 MG Road, Pune",
		Items:       []domain.OrderItem{{ProductID: p.ID, Quantity: 2, Price: 500}},
		TotalAmount: 1000,
	})
	require.NoError(t, err)
	return o
}

func TestFetch_FreshWithinStaleWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.hooks.AllProducts(ctx)
	require.NoError(t, err)
	f.clock.Advance(4*time.Minute + 59*time.Second)
	_, err = f.hooks.AllProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.backend.count("getAllProducts"))

	f.clock.Advance(time.Second)
	_, err = f.hooks.AllProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, f.backend.count("getAllProducts"))
}

func TestFetch_OrdersStaleAfterThirtySeconds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _ = f.hooks.Orders(ctx)
	f.clock.Advance(29 * time.Second)
	_, _ = f.hooks.Orders(ctx)
	assert.Equal(t, 1, f.backend.count("getOrders"))

	f.clock.Advance(time.Second)
	_, _ = f.hooks.Orders(ctx)
	assert.Equal(t, 2, f.backend.count("getOrders"))
}

func TestFetch_WithheldUntilReady(t *testing.T) {
	f := newFixture(t)
	f.gate.set(false)
	ctx := context.Background()

	_, err := f.hooks.AllProducts(ctx)
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = f.hooks.Orders(ctx)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorIs(t, f.hooks.SeedProducts(ctx), ErrNotReady)
	assert.Equal(t, 0, f.backend.count("getAllProducts"))
	assert.Equal(t, 0, f.backend.count("getOrders"))
	assert.Equal(t, 0, f.backend.count("seedProducts"))

	f.gate.set(true)
	_, err = f.hooks.AllProducts(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, f.backend.count("getAllProducts"))
}

func TestFetch_RetriesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.backend.failNext("getAllProducts", 1)
	list, err := f.hooks.AllProducts(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Equal(t, 2, f.backend.count("getAllProducts"))
}

func TestFetch_SurfacesErrorAfterRetry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.backend.failNext("getOrders", 5)
	_, err := f.hooks.Orders(ctx)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 2, f.backend.count("getOrders"))

	// failure is not cached
	f.backend.failNext("getOrders", 0)
	_, err = f.hooks.Orders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, f.backend.count("getOrders"))
}

func TestFetch_RetryWaitsForDelay(t *testing.T) {
	f := newFixture(t)
	f.hooks.policies.Orders.RetryDelay = 50 * time.Millisecond
	f.backend.failNext("getOrders", 1)

	start := time.Now()
	_, err := f.hooks.Orders(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestFetch_NilNormalizedToEmpty(t *testing.T) {
	f := newFixture(t)
	f.backend.nils = true
	ctx := context.Background()

	products, err := f.hooks.AllProducts(ctx)
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)

	orders, err := f.hooks.Orders(ctx)
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestFetch_UnknownCategory(t *testing.T) {
	f := newFixture(t)
	_, err := f.hooks.ProductsByCategory(context.Background(), "toys")
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)
	assert.Equal(t, 0, f.backend.count("getProductsByCategory"))
}

func TestProductByID_AbsentIsNil(t *testing.T) {
	f := newFixture(t)
	p, err := f.hooks.ProductByID(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestMutate_NoRetry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.backend.failNext("seedProducts", 1)
	err := f.hooks.SeedProducts(ctx)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, f.backend.count("seedProducts"))

	f.backend.failNext("updateOrderStatus", 1)
	err = f.hooks.UpdateOrderStatus(ctx, 1, domain.OrderStatusDelivered)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, f.backend.count("updateOrderStatus"))
}

func TestUpdateOrderStatus_InvalidatesOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t)
	f.hooks.Client().Wait()

	orders, err := f.hooks.Orders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, domain.OrderStatusPending, orders[0].Status)
	reads := f.backend.count("getOrders")

	require.NoError(t, f.hooks.UpdateOrderStatus(ctx, o.ID, domain.OrderStatusDispatched))
	f.hooks.Client().Wait()
	// background refetch ran for the observed key
	assert.Equal(t, reads+1, f.backend.count("getOrders"))

	orders, err = f.hooks.Orders(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDispatched, orders[0].Status)
	assert.Equal(t, reads+1, f.backend.count("getOrders"), "read after refetch is served from cache")
}

func TestPlaceOrder_InvalidatesOrdersOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _ = f.hooks.AllProducts(ctx)
	_, _ = f.hooks.Orders(ctx)
	f.placeOrder(t)
	f.hooks.Client().Wait()

	orders, err := f.hooks.Orders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, 1, f.backend.count("getAllProducts"))
}

func TestSeedProducts_InvalidatesEveryProductKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	all, _ := f.hooks.AllProducts(ctx)
	paper, _ := f.hooks.ProductsByCategory(ctx, domain.CategoryPaper)
	_, _ = f.hooks.Orders(ctx)
	assert.Empty(t, all)
	assert.Empty(t, paper)

	require.NoError(t, f.hooks.SeedProducts(ctx))
	f.hooks.Client().Wait()

	all, _ = f.hooks.AllProducts(ctx)
	paper, _ = f.hooks.ProductsByCategory(ctx, domain.CategoryPaper)
	assert.NotEmpty(t, all)
	assert.NotEmpty(t, paper)
	assert.Equal(t, 2, f.backend.count("getAllProducts"))
	assert.Equal(t, 2, f.backend.count("getProductsByCategory"))
	assert.Equal(t, 1, f.backend.count("getOrders"))
}

func TestRefetch_IgnoresFreshness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.hooks.AllProducts(ctx)
	_, _ = f.hooks.RefetchAllProducts(ctx)
	assert.Equal(t, 2, f.backend.count("getAllProducts"))
}

func TestInvalidate_OlderFetchDoesNotOverwriteNewer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t)
	f.hooks.Client().Wait()

	release := make(chan struct{})
	started := make(chan struct{})
	f.backend.onCall("getOrders", func(call int) {
		if call == 1 {
			close(started)
			<-release
		}
	})

	var stale []domain.Order
	done := make(chan error, 1)
	go func() {
		var err error
		stale, err = f.hooks.Orders(ctx)
		done <- err
	}()
	<-started

	// the first read is still in flight holding status pending
	require.NoError(t, f.hooks.UpdateOrderStatus(ctx, o.ID, domain.OrderStatusDelivered))
	f.hooks.Client().Wait()

	close(release)
	require.NoError(t, <-done)
	require.Len(t, stale, 1)
	assert.Equal(t, domain.OrderStatusDelivered, stale[0].Status, "late response yields to the newer value")

	orders, err := f.hooks.Orders(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, orders[0].Status)
	assert.Equal(t, 2, f.backend.count("getOrders"))
}

func (c *Client) tracked() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keys)
}

func TestInvalidate_DoesNotRefetchLookupsByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for id := int64(1000); id < 1200; id++ {
		p, err := f.hooks.ProductByID(ctx, id)
		require.NoError(t, err)
		require.Nil(t, p)
	}
	assert.Equal(t, 0, f.hooks.Client().tracked(), "finished lookups keep no bookkeeping")

	require.NoError(t, f.hooks.SeedProducts(ctx))
	f.hooks.Client().Wait()
	assert.Equal(t, 200, f.backend.count("getProductById"))
}

func TestInvalidate_ForgetsKeysNotReadWithinStaleWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.hooks.AllProducts(ctx)
	require.NoError(t, err)
	_, err = f.hooks.Orders(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, f.hooks.Client().tracked())

	f.clock.Advance(6 * time.Minute)
	require.NoError(t, f.hooks.SeedProducts(ctx))
	f.hooks.Client().Wait()
	assert.Equal(t, 1, f.backend.count("getAllProducts"), "no refetch for a page nobody is looking at")
	assert.Equal(t, 1, f.hooks.Client().tracked())

	f.placeOrder(t)
	f.hooks.Client().Wait()
	assert.Equal(t, 1, f.backend.count("getOrders"))
	assert.Equal(t, 0, f.hooks.Client().tracked())

	// the next read starts over
	list, err := f.hooks.AllProducts(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, list)
	assert.Equal(t, 2, f.backend.count("getAllProducts"))
}

func TestFetch_CancelledCallerDoesNotFailJoinedRead(t *testing.T) {
	f := newFixture(t)
	f.placeOrder(t)
	f.hooks.Client().Wait()

	started := make(chan struct{})
	release := make(chan struct{})
	f.backend.onCall("getOrders", func(call int) {
		if call == 1 {
			close(started)
			<-release
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := f.hooks.Orders(ctx)
		first <- err
	}()
	<-started

	type result struct {
		orders []domain.Order
		err    error
	}
	second := make(chan result, 1)
	go func() {
		orders, err := f.hooks.Orders(context.Background())
		second <- result{orders, err}
	}()

	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	time.Sleep(20 * time.Millisecond)
	close(release)
	res := <-second
	require.NoError(t, res.err)
	assert.Len(t, res.orders, 1)
	assert.Equal(t, 1, f.backend.count("getOrders"))

	// the shared read still filled the cache
	_, err := f.hooks.Orders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.backend.count("getOrders"))
}

// slowDeleteStore blocks DeletePrefix until released.
type slowDeleteStore struct {
	*MemoryStore
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (s *slowDeleteStore) DeletePrefix(ctx context.Context, prefix string) error {
	s.once.Do(func() { close(s.entered) })
	<-s.release
	return s.MemoryStore.DeletePrefix(ctx, prefix)
}

func TestInvalidate_SlowStoreDoesNotBlockOtherReads(t *testing.T) {
	store := &slowDeleteStore{
		MemoryStore: NewMemoryStore(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	f := newFixtureWithStore(t, store)
	ctx := context.Background()

	_, err := f.hooks.AllProducts(ctx)
	require.NoError(t, err)

	seeded := make(chan error, 1)
	go func() { seeded <- f.hooks.SeedProducts(ctx) }()
	<-store.entered

	read := make(chan error, 1)
	go func() {
		_, err := f.hooks.Orders(ctx)
		read <- err
	}()
	select {
	case err := <-read:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatalf("orders read blocked behind products invalidation")
	}

	close(store.release)
	require.NoError(t, <-seeded)
	f.hooks.Client().Wait()

	list, err := f.hooks.AllProducts(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, list)
}
