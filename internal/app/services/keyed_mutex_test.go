package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	t.Parallel()
	locks := newKeyedMutex()
	var inFlight, peak atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locks.Lock(context.Background(), "job-1")
			if err != nil {
				t.Errorf("lock: %v", err)
				return
			}
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inFlight.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	if peak.Load() != 1 {
		t.Fatalf("got=%d want=1 concurrent holders", peak.Load())
	}
	if locks.size() != 0 {
		t.Fatalf("expected idle keys to be dropped, got %d", locks.size())
	}
}

func TestKeyedMutexHonoursContext(t *testing.T) {
	t.Parallel()
	locks := newKeyedMutex()
	unlock, err := locks.Lock(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := locks.Lock(ctx, "job-1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	other, err := locks.Lock(context.Background(), "job-2")
	if err != nil {
		t.Fatalf("independent key should not block: %v", err)
	}
	other()
}
