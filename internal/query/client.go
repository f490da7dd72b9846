// Package query mediates every read and write against the remote backend with a
// uniform policy: reads are cached for a staleness window, coalesced per key and
// retried once; writes are sent once and invalidate the reads they affect.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"stationers/internal/remote"
)

// ErrNotReady is returned while the remote connection is not established.
// No remote call is issued in that state.
var ErrNotReady = errors.New("remote connection not ready")

// Policy is the caching policy of one family of reads.
type Policy struct {
	StaleTime  time.Duration
	Retries    int
	RetryDelay time.Duration
	// Passive reads are cached but never refetched after an invalidation.
	Passive bool
}

type fetchFunc func(ctx context.Context) ([]byte, error)

// keyState is the bookkeeping of one cache key. It lives while the key has a
// fetch in flight or an observer that was read within its stale window.
type keyState struct {
	dispatched uint64 // last sequence handed to a fetch
	committed  uint64 // sequence of the entry currently in the store
	floor      uint64 // fetches below this were dispatched before an invalidation
	inflight   int

	refetch func(ctx context.Context) error // nil for passive keys
	readAt  time.Time
	stale   time.Duration

	// commitMu orders store writes of this key against each other and against
	// invalidation.
	commitMu sync.Mutex
}

func (s *keyState) idle() bool { return s.inflight == 0 && s.refetch == nil }

// Client is the request cache shared by all views.
type Client struct {
	store  Store
	gate   remote.Gate
	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
	sf     singleflight.Group

	mu   sync.Mutex
	keys map[string]*keyState

	bg sync.WaitGroup
}

// Option configures a Client.
type Option func(*Client)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(store Store, gate remote.Gate, opts ...Option) *Client {
	c := &Client{
		store:  store,
		gate:   gate,
		logger: slog.Default(),
		tracer: otel.Tracer("stationers/internal/query"),
		now:    time.Now,
		keys:   make(map[string]*keyState),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the cached value under key while it is fresh, otherwise calls fn.
func Fetch[T any](ctx context.Context, c *Client, key Key, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	return fetch(ctx, c, key, p, fn, false)
}

// Refetch calls fn regardless of freshness, like a manual "try again".
func Refetch[T any](ctx context.Context, c *Client, key Key, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	return fetch(ctx, c, key, p, fn, true)
}

func fetch[T any](ctx context.Context, c *Client, key Key, p Policy, fn func(ctx context.Context) (T, error), force bool) (T, error) {
	var zero T
	if !c.gate.Ready() {
		return zero, ErrNotReady
	}
	k := key.String()
	raw := func(ctx context.Context) ([]byte, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("encode %s: %w", k, err))
		}
		return data, nil
	}
	if !p.Passive {
		c.observe(k, p, raw)
	}

	if !force {
		if e, ok := c.lookup(ctx, k); ok && c.now().Sub(e.FetchedAt) < p.StaleTime {
			return decode[T](k, e.Data)
		}
	}
	data, err := c.load(ctx, k, p, raw)
	if err != nil {
		return zero, err
	}
	return decode[T](k, data)
}

func decode[T any](key string, data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, nil
}

// Mutate runs a write once, without retry, and invalidates keys on success.
func Mutate[T any](ctx context.Context, c *Client, invalidates []Key, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if !c.gate.Ready() {
		return zero, ErrNotReady
	}
	v, err := fn(ctx)
	if err != nil {
		return zero, err
	}
	for _, k := range invalidates {
		c.Invalidate(ctx, k)
	}
	return v, nil
}

// Invalidate drops every entry at or under prefix and refetches, in the background,
// each of those keys that was read within its stale window. Keys not read for
// longer are forgotten.
func (c *Client) Invalidate(ctx context.Context, prefix Key) {
	p := prefix.String()
	var (
		refetch []func(ctx context.Context) error
		names   []string
		locked  = make(map[string]*keyState)
	)

	c.mu.Lock()
	now := c.now()
	for k, st := range c.keys {
		if !matches(k, p) {
			continue
		}
		st.floor = st.dispatched + 1
		if st.refetch != nil {
			if now.Sub(st.readAt) < st.stale {
				refetch = append(refetch, st.refetch)
			} else {
				st.refetch = nil
			}
		}
		if st.idle() {
			delete(c.keys, k)
			continue
		}
		names = append(names, k)
		locked[k] = st
	}
	c.mu.Unlock()

	// a commit that passed its floor check lands before the delete
	slices.Sort(names)
	for _, k := range names {
		locked[k].commitMu.Lock()
	}
	if err := c.store.DeletePrefix(ctx, p); err != nil {
		c.logger.Warn("cache invalidate error", "prefix", p, "error", err)
	}
	for _, k := range names {
		locked[k].commitMu.Unlock()
	}

	bgCtx := context.WithoutCancel(ctx)
	for _, obs := range refetch {
		c.bg.Add(1)
		go func() {
			defer c.bg.Done()
			if err := obs(bgCtx); err != nil {
				c.logger.Warn("background refetch failed", "prefix", p, "error", err)
			}
		}()
	}
}

// Wait blocks until background refetches triggered so far have finished.
func (c *Client) Wait() { c.bg.Wait() }

func (c *Client) observe(key string, p Policy, fn fetchFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.stateLocked(key)
	st.readAt = c.now()
	st.stale = p.StaleTime
	st.refetch = func(ctx context.Context) error {
		_, err := c.load(ctx, key, p, fn)
		return err
	}
}

// stateLocked returns the state of key, creating it. c.mu must be held.
func (c *Client) stateLocked(key string) *keyState {
	st, ok := c.keys[key]
	if !ok {
		st = &keyState{}
		c.keys[key] = st
	}
	return st
}

func (c *Client) lookup(ctx context.Context, key string) (Entry, bool) {
	e, ok, err := c.store.Get(ctx, key)
	if err != nil {
		// log cache error but continue as a miss
		c.logger.Warn("cache get error", "key", key, "error", err)
		return Entry{}, false
	}
	return e, ok
}

// load issues the remote read. Concurrent loads of one key share a call unless an
// invalidation happened in between. The shared call does not inherit the
// cancellation of whichever caller started it; a cancelled caller stops waiting.
func (c *Client) load(ctx context.Context, key string, p Policy, fn fetchFunc) ([]byte, error) {
	c.mu.Lock()
	var floor uint64
	if st, ok := c.keys[key]; ok {
		floor = st.floor
	}
	c.mu.Unlock()
	flight := key + "@" + strconv.FormatUint(floor, 10)

	shared := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(flight, func() (any, error) {
		seq, st := c.dispatch(key)
		defer c.release(key, st)

		ctx, span := c.tracer.Start(shared, "query.fetch", trace.WithAttributes(
			attribute.String("query.key", key),
			attribute.Int64("query.seq", int64(seq)),
		))
		defer span.End()

		data, err := c.retry(ctx, key, p, fn)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		return c.commit(ctx, key, st, seq, data), nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) retry(ctx context.Context, key string, p Policy, fn fetchFunc) ([]byte, error) {
	return backoff.Retry(ctx, func() ([]byte, error) { return fn(ctx) },
		backoff.WithBackOff(backoff.NewConstantBackOff(p.RetryDelay)),
		backoff.WithMaxTries(uint(p.Retries+1)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Warn("query failed, retrying", "key", key, "error", err, "retry_in", next)
		}),
	)
}

func (c *Client) dispatch(key string) (uint64, *keyState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.stateLocked(key)
	st.dispatched++
	st.inflight++
	return st.dispatched, st
}

func (c *Client) release(key string, st *keyState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st.inflight--
	if st.idle() && c.keys[key] == st {
		delete(c.keys, key)
	}
}

// commit stores data fetched by dispatch seq unless a newer fetch already resolved
// or the key was invalidated after seq was dispatched. It returns the data that
// should be shown: the newest committed value when seq lost, else data itself.
func (c *Client) commit(ctx context.Context, key string, st *keyState, seq uint64, data []byte) []byte {
	st.commitMu.Lock()
	defer st.commitMu.Unlock()

	c.mu.Lock()
	superseded := seq <= st.committed
	win := !superseded && seq >= st.floor
	c.mu.Unlock()

	if !win {
		if superseded {
			if e, ok, err := c.store.Get(ctx, key); err == nil && ok {
				return e.Data
			}
		}
		return data
	}
	if err := c.store.Set(ctx, key, Entry{Data: data, FetchedAt: c.now()}); err != nil {
		c.logger.Warn("cache set error", "key", key, "error", err)
		return data
	}

	c.mu.Lock()
	st.committed = seq
	c.mu.Unlock()
	return data
}
