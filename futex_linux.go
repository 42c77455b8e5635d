//go:build linux

package fastonce

import (
	"math"
	"unsafe"

	"golang.org/x/sys/unix"
)

// x/sys/unix exports the futex syscall number, but not the operation
// constants, so they live here. Both carry FUTEX_PRIVATE_FLAG (0x80) - the
// cell is never shared across processes.
const (
	futexWaitPrivate = 0x80 // FUTEX_WAIT | FUTEX_PRIVATE_FLAG
	futexWakePrivate = 0x81 // FUTEX_WAKE | FUTEX_PRIVATE_FLAG
)

// wait blocks the calling thread until a wake is issued on addr, unless the
// value at addr no longer equals val (the kernel performs that comparison
// atomically with respect to wakers, so a wake between the caller's load and
// the sleep cannot be lost). Wakes may be spurious, e.g. EINTR; callers must
// re-read the value and decide for themselves, so every error is safely
// ignored here.
func wait(addr *int32, val int32) {
	_, _, _ = unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		uintptr(futexWaitPrivate),
		uintptr(val),
		0, // no timeout
		0,
		0,
	)
}

// wakeAll releases every waiter blocked on addr, with a single syscall
// regardless of how many there are.
func wakeAll(addr *int32) {
	_, _, _ = unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		uintptr(futexWakePrivate),
		uintptr(math.MaxInt32),
		0,
		0,
		0,
	)
}
