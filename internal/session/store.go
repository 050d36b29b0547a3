package session

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Store persists session values by id.
type Store interface {
	Load(ctx context.Context, id string) (map[string]string, bool, error)
	Save(ctx context.Context, id string, values map[string]string, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	values    map[string]string
	expiresAt time.Time
}

// Default limits of NewMemoryStore.
const (
	DefaultMemorySessions = 10000
	DefaultMemoryTTL      = 14 * 24 * time.Hour
)

// MemoryStore keeps sessions in a bounded in-process LRU. Suitable for development and single instances.
// Entries leave the LRU when their TTL passes or when the size cap pushes out the least recently used one.
type MemoryStore struct {
	entries *expirable.LRU[string, memoryEntry]
	now     func() time.Time
}

// NewMemoryStore returns a store with DefaultMemorySessions and DefaultMemoryTTL.
func NewMemoryStore() *MemoryStore {
	return NewBoundedMemoryStore(DefaultMemorySessions, DefaultMemoryTTL)
}

// NewBoundedMemoryStore caps the store at size sessions, each living at most maxTTL.
// A per-save ttl shorter than maxTTL still applies.
func NewBoundedMemoryStore(size int, maxTTL time.Duration) *MemoryStore {
	if size <= 0 {
		size = DefaultMemorySessions
	}
	if maxTTL <= 0 {
		maxTTL = DefaultMemoryTTL
	}
	return &MemoryStore{
		entries: expirable.NewLRU[string, memoryEntry](size, nil, maxTTL),
		now:     time.Now,
	}
}

func (m *MemoryStore) Load(_ context.Context, id string) (map[string]string, bool, error) {
	entry, ok := m.entries.Get(id)
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		m.entries.Remove(id)
		return nil, false, nil
	}
	return copyValues(entry.values), true, nil
}

func (m *MemoryStore) Save(_ context.Context, id string, values map[string]string, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.now().Add(ttl)
	}
	m.entries.Add(id, memoryEntry{values: copyValues(values), expiresAt: expiresAt})
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.entries.Remove(id)
	return nil
}

// Len returns the number of sessions held, including ones the LRU has not swept yet.
func (m *MemoryStore) Len() int {
	return m.entries.Len()
}

func copyValues(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
