// Package fastonce implements a one-time-initialization primitive in the
// shape of [sync.Once], extended with poisoning on initializer panic, and an
// explicit retry-after-failure escape hatch, see Once.DoForce.
//
// The entire primitive is a single word-sized state cell. On Linux, blocked
// callers wait directly on that word via the futex syscall, and the winning
// caller releases every waiter with a single wake-all, regardless of how many
// are blocked. On other platforms the same state machine runs against a small
// process-wide table of wait queues, keyed by the cell's address. Behavior is
// identical on every platform.
//
// The zero Once value is ready to use, e.g. as a package-level variable for
// lazy one-time global setup. A Once must not be copied after first use.
package fastonce
