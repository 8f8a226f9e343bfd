package resilience

import "sync"

// KeyedGuard admits at most one holder per key. Callers that lose the race
// are turned away instead of queued.
type KeyedGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func (g *KeyedGuard) TryAcquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.held == nil {
		g.held = make(map[string]struct{})
	}
	if _, busy := g.held[key]; busy {
		return false
	}
	g.held[key] = struct{}{}
	return true
}

func (g *KeyedGuard) Release(key string) {
	g.mu.Lock()
	delete(g.held, key)
	g.mu.Unlock()
}

func (g *KeyedGuard) Held(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, busy := g.held[key]
	return busy
}
