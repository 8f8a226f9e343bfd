package resilience

import (
	"context"
	"sync"
)

// SingleFlight deduplicates concurrent calls for the same key.
type SingleFlight struct {
	mu    sync.Mutex
	calls map[string]*call
}

type call struct {
	done chan struct{}
	val  any
	err  error
}

func (g *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*call)
	}

	if c, ok := g.calls[key]; ok {
		g.mu.Unlock()
		<-c.done
		return c.val, c.err, true
	}

	c := &call{done: make(chan struct{})}
	g.calls[key] = c
	g.mu.Unlock()

	c.val, c.err = fn()
	close(c.done)

	g.mu.Lock()
	delete(g.calls, key)
	g.mu.Unlock()

	return c.val, c.err, false
}

// DoContext behaves like Do but lets a waiting caller give up when ctx is
// done. The shared call keeps running for the other waiters.
func (g *SingleFlight) DoContext(ctx context.Context, key string, fn func() (any, error)) (any, error, bool) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*call)
	}
	c, shared := g.calls[key]
	g.mu.Unlock()
	if !shared {
		return g.Do(key, fn)
	}

	select {
	case <-c.done:
		return c.val, c.err, true
	case <-ctx.Done():
		return nil, ctx.Err(), true
	}
}
