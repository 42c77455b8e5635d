//go:build !linux

package fastonce

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

// Platforms without a usable futex share a process-wide table of wait
// queues, hashed by the cell's address, the same shape as the runtime's
// semaphore table. Distinct cells may collide on a bucket; the resulting
// extra broadcasts surface to the cells' waiters as spurious wakes, which
// the protocol tolerates already.

type waitBucket struct {
	mu   sync.Mutex
	wake sync.Cond
}

var waitTable [64]waitBucket

func init() {
	for i := range waitTable {
		waitTable[i].wake.L = &waitTable[i].mu
	}
}

func bucketFor(addr *int32) *waitBucket {
	// cells are 4-byte aligned; shift the dead bits out of the hash
	i := (uintptr(unsafe.Pointer(addr)) >> 2) % uintptr(len(waitTable))
	return &waitTable[i]
}

// wait blocks until a wake is issued on addr's bucket, unless the value at
// addr no longer equals val. The re-check under the bucket lock closes the
// window between the caller's load and the sleep: a waker must store the new
// value before taking the same lock to broadcast.
func wait(addr *int32, val int32) {
	b := bucketFor(addr)
	b.mu.Lock()
	if atomic.LoadInt32(addr) == val {
		b.wake.Wait()
	}
	b.mu.Unlock()
}

// wakeAll releases every waiter blocked on addr, with a single broadcast.
func wakeAll(addr *int32) {
	b := bucketFor(addr)
	b.mu.Lock()
	b.wake.Broadcast()
	b.mu.Unlock()
}
