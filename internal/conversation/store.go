// internal/conversation/store.go
package conversation

import "sync"

// Store owns the conversation contexts, keyed by customer id. Contexts are
// created lazily and never deleted. The store guards only the map; the
// caller must serialize messages for the same customer id (single writer
// per key), while distinct customers are fully independent.
type Store interface {
	GetOrCreate(customerID string) *Context
	Get(customerID string) (*Context, bool)
}

type memoryStore struct {
	mu       sync.RWMutex
	contexts map[string]*Context
}

// NewStore returns an in-process store.
func NewStore() Store {
	return &memoryStore{contexts: make(map[string]*Context)}
}

func (s *memoryStore) GetOrCreate(customerID string) *Context {
	s.mu.RLock()
	ctx, ok := s.contexts[customerID]
	s.mu.RUnlock()
	if ok {
		return ctx
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx, ok := s.contexts[customerID]; ok {
		return ctx
	}
	ctx = NewContext(customerID)
	s.contexts[customerID] = ctx
	return ctx
}

func (s *memoryStore) Get(customerID string) (*Context, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctx, ok := s.contexts[customerID]
	return ctx, ok
}
