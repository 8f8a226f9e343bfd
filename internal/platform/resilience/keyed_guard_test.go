package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestKeyedGuard_TryAcquire(t *testing.T) {
	var g KeyedGuard

	if !g.TryAcquire("league-1") {
		t.Fatalf("expected first acquire to succeed")
	}
	if g.TryAcquire("league-1") {
		t.Fatalf("expected second acquire on same key to fail")
	}
	if !g.TryAcquire("league-2") {
		t.Fatalf("expected acquire on other key to succeed")
	}

	g.Release("league-1")
	if g.Held("league-1") {
		t.Fatalf("expected key released")
	}
	if !g.TryAcquire("league-1") {
		t.Fatalf("expected acquire after release to succeed")
	}
}

func TestKeyedGuard_ConcurrentSingleWinner(t *testing.T) {
	var g KeyedGuard
	var winners int32

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			if g.TryAcquire("league-1") {
				atomic.AddInt32(&winners, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&winners); got != 1 {
		t.Fatalf("expected exactly one winner, got %d", got)
	}
}
