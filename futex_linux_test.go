//go:build linux

package fastonce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// exercises the raw futex wrappers under contention - one wake-all must
// release every blocked waiter, and a waiter arriving after the value
// changed must not block at all
func TestFutex_wakeAllReleasesManyWaiters(t *testing.T) {
	defer checkNumGoroutines(time.Second * 3)(t)

	var cell int32
	var wg sync.WaitGroup
	done := make(chan struct{})
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for atomic.LoadInt32(&cell) == 0 {
				wait(&cell, 0)
			}
		}()
	}
	go func() {
		defer close(done)
		wg.Wait()
	}()

	time.Sleep(time.Millisecond * 20)
	atomic.StoreInt32(&cell, 1)
	wakeAll(&cell)
	recvTimeout(t, done, time.Second*3)

	// the kernel-side compare makes a stale expected value a no-op
	wait(&cell, 0)
}
