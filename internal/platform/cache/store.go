package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/fantasy-draft/internal/platform/resilience"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Store is a process-local TTL map. A zero ttl keeps entries forever and a
// zero maxEntries leaves the map unbounded.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]entry
	ttl        time.Duration
	maxEntries int
	flight     resilience.SingleFlight
	now        func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return NewBoundedStore(ttl, 0)
}

func NewBoundedStore(ttl time.Duration, maxEntries int) *Store {
	return &Store{
		entries:    make(map[string]entry),
		ttl:        ttl,
		maxEntries: max(maxEntries, 0),
		now:        time.Now,
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	now := s.now()
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.expired(e, now) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false
	}

	return e.value, true
}

// GetString is Get for stores holding plain string values.
func (s *Store) GetString(ctx context.Context, key string) (string, bool) {
	v, ok := s.Get(ctx, key)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	now := s.now()
	expiresAt := time.Time{}
	if s.ttl > 0 {
		expiresAt = now.Add(s.ttl)
	}

	s.mu.Lock()
	if _, exists := s.entries[key]; !exists && s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		s.evictLocked(now)
	}
	s.entries[key] = entry{
		value:     value,
		expiresAt: expiresAt,
	}
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

func (s *Store) DeletePrefix(_ context.Context, prefix string) {
	if prefix == "" {
		return
	}

	s.mu.Lock()
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.DoContext(ctx, key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

func (s *Store) expired(e entry, now time.Time) bool {
	return s.ttl > 0 && !e.expiresAt.After(now)
}

// evictLocked drops expired entries first and, if the map is still full,
// the entry closest to expiry.
func (s *Store) evictLocked(now time.Time) {
	for key, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, key)
		}
	}
	if len(s.entries) < s.maxEntries {
		return
	}

	oldestKey := ""
	var oldest time.Time
	for key, e := range s.entries {
		if oldestKey == "" || e.expiresAt.Before(oldest) {
			oldestKey = key
			oldest = e.expiresAt
		}
	}
	delete(s.entries, oldestKey)
}
