package mem

import (
	"strings"
	"sync"
	"time"

	"dishdash/pkg/vectormath"
)

type VectorStore interface {
	Set(key string, v vectormath.Vector, ttl time.Duration)

	// Peek returns the vector for key if present and not expired.
	Peek(key string) (vectormath.Vector, bool)

	// DeletePrefix drops every entry whose key starts with prefix.
	DeletePrefix(prefix string)
}

type entry struct {
	vector    vectormath.Vector
	expiresAt time.Time
}

type VectorCache struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

func NewVectorCache() *VectorCache {
	return &VectorCache{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

func (s *VectorCache) Set(key string, v vectormath.Vector, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = entry{
		vector:    append(vectormath.Vector(nil), v...),
		expiresAt: s.now().Add(ttl),
	}
}

func (s *VectorCache) Peek(key string) (vectormath.Vector, bool) {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.data, key) // cleanup expired
		s.mu.Unlock()
		return nil, false
	}
	return append(vectormath.Vector(nil), e.vector...), true
}

func (s *VectorCache) DeletePrefix(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			delete(s.data, k)
		}
	}
}
