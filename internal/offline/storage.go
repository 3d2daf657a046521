package offline

import (
	"net/http"
	"sort"
	"sync"
)

// Entry is a stored response.
type Entry struct {
	Status int
	Header http.Header
	Body   []byte
}

// Storage holds named response caches, one per worker version.
type Storage interface {
	Open(name string) *Store
	Names() []string
	Delete(name string) bool
}

// Store is one named cache keyed by request path.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func newStore() *Store {
	return &Store{entries: make(map[string]Entry)}
}

func (s *Store) Put(key string, e Entry) {
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
}

func (s *Store) Match(key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// MemoryStorage keeps every cache in process memory.
type MemoryStorage struct {
	mu     sync.Mutex
	stores map[string]*Store
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{stores: make(map[string]*Store)}
}

// Open returns the named cache, creating it on first use.
func (m *MemoryStorage) Open(name string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stores[name]
	if !ok {
		s = newStore()
		m.stores[name] = s
	}
	return s
}

func (m *MemoryStorage) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.stores))
	for n := range m.stores {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (m *MemoryStorage) Delete(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stores[name]; !ok {
		return false
	}
	delete(m.stores, name)
	return true
}
