package storage

import (
	"sync"
)

// MemoryStore is an in-process BlobStore. SetErr makes subsequent writes
// fail, which tests use to exercise retry paths.
type MemoryStore struct {
	mu     sync.Mutex
	blobs  map[string][]byte
	setErr error
	writes int
}

// NewMemoryStore creates an empty memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Get returns a copy of the blob for key
func (s *MemoryStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Set stores a copy of data under key
func (s *MemoryStore) Set(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.blobs[key] = append([]byte(nil), data...)
	s.writes++
	return nil
}

// SetErr makes every following Set return err (nil restores writes)
func (s *MemoryStore) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErr = err
}

// Writes returns how many Set calls succeeded
func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
