package repositories

import (
	"errors"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// memoryStore is a ttlcache backed map shared by the in-process stores. A
// non-positive maxAge keeps entries for the life of the process; otherwise an
// entry expires maxAge after it was last written. Reads never extend it.
type memoryStore[V any] struct {
	// mu serialises writers so update sees and replaces the same value.
	mu    sync.Mutex
	cache *ttlcache.Cache[string, V]
}

func newMemoryStore[V any](maxAge time.Duration) *memoryStore[V] {
	if maxAge <= 0 {
		return &memoryStore[V]{cache: ttlcache.New[string, V]()}
	}
	return &memoryStore[V]{
		cache: ttlcache.New(
			ttlcache.WithTTL[string, V](maxAge),
			ttlcache.WithDisableTouchOnHit[string, V](),
		),
	}
}

func (s *memoryStore[V]) get(key string) (V, bool) {
	item := s.cache.Get(key)
	if item == nil || item.IsExpired() {
		var zero V
		return zero, false
	}
	return item.Value(), true
}

func (s *memoryStore[V]) put(key string, v V) {
	s.mu.Lock()
	s.cache.Set(key, v, ttlcache.DefaultTTL)
	s.mu.Unlock()
}

// update runs fn with the write lock held, so the read and the write are one
// step for every other writer.
func (s *memoryStore[V]) update(key string, fn func(cur V, ok bool) (V, bool, error)) (V, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.get(key)
	next, keep, err := fn(cur, ok)
	if err != nil {
		return cur, err
	}
	if keep {
		s.cache.Set(key, next, ttlcache.DefaultTTL)
	}
	return next, nil
}

func (s *memoryStore[V]) len() int {
	s.cache.DeleteExpired()
	return s.cache.Len()
}

func (s *memoryStore[V]) start() { s.cache.Start() }
func (s *memoryStore[V]) stop()  { s.cache.Stop() }
