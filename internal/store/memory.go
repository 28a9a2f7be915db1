// ABOUTME: In-memory article store for tests and ephemeral sessions
// ABOUTME: Round-trips payloads through JSON so it behaves like the durable backends

package store

import (
	"context"
	"sync"

	"github.com/harper/stash/internal/models"
)

// MemoryStore implements Store in process memory. Payloads are kept JSON-encoded
// so aliasing bugs (callers mutating articles after Save) surface in tests the
// same way they would against sqlite or charm.
type MemoryStore struct {
	mu       sync.Mutex
	payloads map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{payloads: make(map[string][]byte)}
}

// Load returns the persisted article list for userID.
func (m *MemoryStore) Load(ctx context.Context, userID string) ([]*models.Article, bool, error) {
	m.mu.Lock()
	payload, exists := m.payloads[articleKey(userID)]
	m.mu.Unlock()

	if !exists {
		return nil, false, nil
	}
	articles, ok := decodeArticles(payload)
	return articles, ok, nil
}

// Save replaces userID's entire list.
func (m *MemoryStore) Save(ctx context.Context, userID string, articles []*models.Article) error {
	payload, err := encodeArticles(articles)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.payloads[articleKey(userID)] = payload
	m.mu.Unlock()
	return nil
}

// Clear removes userID's persisted list.
func (m *MemoryStore) Clear(ctx context.Context, userID string) error {
	m.mu.Lock()
	delete(m.payloads, articleKey(userID))
	m.mu.Unlock()
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
