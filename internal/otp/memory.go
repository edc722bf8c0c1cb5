package otp

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"
)

// MemoryStore is the fallback when Redis is not configured. Entries expire
// lazily on read.
type MemoryStore struct {
	mu  sync.Mutex
	now func() time.Time
	m   map[string]entry
}

type entry struct {
	code string
	exp  time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now: time.Now,
		m:   make(map[string]entry),
	}
}

func (s *MemoryStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	s.mu.Lock()
	s.m[email] = entry{code: code, exp: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Consume(ctx context.Context, email, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[email]
	if !ok {
		return false, nil
	}

	if s.now().After(e.exp) {
		delete(s.m, email)
		return false, nil
	}

	if subtle.ConstantTimeCompare([]byte(e.code), []byte(code)) != 1 {
		return false, nil
	}

	delete(s.m, email)
	return true, nil
}
