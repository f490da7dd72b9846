package query

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// Key identifies a cached read, e.g. {"products", "category", "paper"}.
type Key []string

func (k Key) String() string { return strings.Join(k, ":") }

// matches reports whether key (in String form) equals prefix or lies under it.
func matches(key, prefix string) bool {
	return key == prefix || strings.HasPrefix(key, prefix+":")
}

// Entry is a cached read result.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Store keeps cache entries. Freshness is decided by the Client, not the Store.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, e Entry) error
	// DeletePrefix removes key prefix itself and every key under it.
	DeletePrefix(ctx context.Context, prefix string) error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	return e, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = e
	return nil
}

func (m *MemoryStore) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if matches(k, prefix) {
			delete(m.entries, k)
		}
	}
	return nil
}
