package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreakerConfig is the env-facing shape shared by every remote client.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
	// OnStateChange is called after each transition, outside the lock.
	OnStateChange func(from, to CircuitState)
}

func (c CircuitBreakerConfig) normalized() CircuitBreakerConfig {
	if c.FailureThreshold < 1 {
		c.FailureThreshold = 5
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 15 * time.Second
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = 1
	}
	return c
}

// CircuitBreaker trips after consecutive dependency failures and lets a few
// probes through once the open period has passed.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig
	now func() time.Time

	mu       sync.Mutex
	state    CircuitState
	failures int
	openedAt time.Time
	probes   int
	passed   int
}

// NewCircuitBreakerFromConfig returns nil when the breaker is disabled; a nil
// breaker runs every call unguarded.
func NewCircuitBreakerFromConfig(cfg CircuitBreakerConfig) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	return &CircuitBreaker{cfg: cfg.normalized(), now: time.Now, state: CircuitStateClosed}
}

// Execute runs fn when the breaker admits it. Only errors accepted by
// isFailure count against the dependency; a nil isFailure counts all errors.
func (b *CircuitBreaker) Execute(fn func() error, isFailure func(error) bool) error {
	if b == nil {
		return fn()
	}
	if err := b.admit(); err != nil {
		return err
	}

	err := fn()
	b.record(err != nil && (isFailure == nil || isFailure(err)))
	return err
}

func (b *CircuitBreaker) State() CircuitState {
	if b == nil {
		return CircuitStateClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.openElapsed() {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) admit() error {
	b.mu.Lock()
	from := b.state

	if b.state == CircuitStateOpen {
		if !b.openElapsed() {
			b.mu.Unlock()
			return ErrCircuitOpen
		}
		b.enter(CircuitStateHalfOpen)
	}
	if b.state == CircuitStateHalfOpen {
		if b.probes >= b.cfg.HalfOpenMaxReq {
			b.mu.Unlock()
			return ErrCircuitOpen
		}
		b.probes++
	}

	to := b.state
	b.mu.Unlock()
	b.notify(from, to)
	return nil
}

func (b *CircuitBreaker) record(failed bool) {
	b.mu.Lock()
	from := b.state

	switch b.state {
	case CircuitStateClosed:
		if !failed {
			b.failures = 0
			break
		}
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.enter(CircuitStateOpen)
		}
	case CircuitStateHalfOpen:
		if b.probes > 0 {
			b.probes--
		}
		if failed {
			b.enter(CircuitStateOpen)
			break
		}
		b.passed++
		if b.passed >= b.cfg.HalfOpenMaxReq && b.probes == 0 {
			b.enter(CircuitStateClosed)
		}
	case CircuitStateOpen:
		if failed {
			b.openedAt = b.now()
		}
	}

	to := b.state
	b.mu.Unlock()
	b.notify(from, to)
}

// enter resets the counters of the new state. Callers hold mu.
func (b *CircuitBreaker) enter(state CircuitState) {
	b.state = state
	b.failures = 0
	b.probes = 0
	b.passed = 0
	b.openedAt = time.Time{}
	if state == CircuitStateOpen {
		b.openedAt = b.now()
	}
}

func (b *CircuitBreaker) openElapsed() bool {
	return b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout
}

func (b *CircuitBreaker) notify(from, to CircuitState) {
	if from != to && b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(from, to)
	}
}
