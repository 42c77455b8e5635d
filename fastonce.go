package fastonce

import (
	"sync/atomic"
)

type (
	// Once is a synchronization primitive which can be used to run a one-time
	// initialization routine, e.g. for lazy global setup, or one-time
	// initialization for FFI or related functionality. The zero value is
	// ready to use, with no initialization having been performed.
	//
	// Unlike [sync.Once], a panic within the routine poisons the instance:
	// subsequent Once.Do calls panic with [*PoisonError], rather than
	// attempting initialization again, or proceeding as if it succeeded. The
	// Once.DoForce method is provided as an escape hatch, to retry after a
	// poison.
	//
	// A Once must not be copied after first use.
	Once struct {
		_ noCopy

		// state is the sole field of the state machine, and, on Linux, the
		// futex word that blocked callers wait on.
		state int32
	}

	// State is passed to Once.DoForce routines, reporting whether the attempt
	// is a retry after a previous failure, and allowing the routine to mark
	// its own attempt as failed without panicking.
	//
	// A State value must not be retained beyond the routine it was passed to.
	State struct {
		poisoned bool // this attempt follows a failed one
		poison   bool // set via Poison, fails this attempt
	}

	// PoisonError is the panic value used by Once.Do, when the instance's
	// initialization routine previously terminated abnormally, and no
	// Once.DoForce retry has succeeded since.
	PoisonError struct{}

	// see https://github.com/golang/go/issues/8005#issuecomment-190753527
	noCopy struct{}
)

const (
	// stateIncomplete means the routine has not run
	stateIncomplete int32 = iota
	// stateComplete means the routine completed, and is terminal
	stateComplete
	// statePoisoned means the routine terminated abnormally
	statePoisoned
	// stateRunningNoWait means the routine is running, with no blocked
	// callers yet, making the wake syscall on completion unnecessary
	stateRunningNoWait
	// stateRunningWaiting means the routine is running, with at least one
	// blocked caller
	stateRunningWaiting
)

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// New initializes a new Once, equivalent to the (ready to use) zero value.
func New() *Once { return new(Once) }

// Error implements the error interface.
func (*PoisonError) Error() string {
	return `fastonce: once instance has previously been poisoned`
}

// Poisoned returns true if this Once.DoForce attempt is a retry, following a
// previous attempt that terminated abnormally, or was marked failed via
// State.Poison.
func (x *State) Poisoned() bool { return x.poisoned }

// Poison marks the current Once.DoForce attempt as failed, without the
// routine needing to panic. The instance will be left poisoned, exactly as if
// the routine had panicked, though Once.DoForce itself returns normally.
func (x *State) Poison() { x.poison = true }

// Do calls the function f if and only if Do or Once.DoForce has never been
// called successfully on this instance. Concurrent callers block until the
// single call to f completes, after which all of them (and any later callers)
// return without calling their own f. On return, it is guaranteed that an f
// has run to completion, and that its memory effects are visible to the
// caller.
//
// If f panics, the panic propagates to Do's caller, and the instance is
// poisoned: every blocked caller, and every subsequent Do call, panics with
// [*PoisonError]. Use Once.DoForce to retry after a poison.
//
// If f calls Do on the same instance, directly or not, the call deadlocks.
func (x *Once) Do(f func()) {
	if state := atomic.LoadInt32(&x.state); state != stateComplete {
		x.doSlow(state, func(*State) { f() }, false)
	}
}

// DoForce is like Once.Do, except that a poisoned instance does not cause it
// to panic, instead allowing f to run, as a new initialization attempt. The
// provided [State] reports whether the attempt is such a retry, and allows f
// to deliberately fail the attempt, see State.Poison.
//
// A panic within f poisons the instance again, exactly as under Once.Do,
// releasing any callers that blocked during the retry.
func (x *Once) DoForce(f func(*State)) {
	if state := atomic.LoadInt32(&x.state); state != stateComplete {
		x.doSlow(state, f, true)
	}
}

// Completed returns true if some Once.Do or Once.DoForce call has completed
// successfully, without blocking. Specifically, it returns false if
// initialization was never attempted, is currently in flight, or has only
// ever failed (the instance is poisoned).
//
// A false result may be stale by the time it is observed. A true result is
// permanent, and guarantees the memory effects of the completed routine are
// visible to the caller.
func (x *Once) Completed() bool {
	return atomic.LoadInt32(&x.state) == stateComplete
}

func (x *Once) doSlow(state int32, f func(*State), force bool) {
	for {
		switch state {
		case stateComplete:
			return

		case statePoisoned:
			if !force {
				panic(new(PoisonError))
			}
			fallthrough

		case stateIncomplete:
			if !atomic.CompareAndSwapInt32(&x.state, state, stateRunningNoWait) {
				// lost the claim - the winner may already have finished
				state = atomic.LoadInt32(&x.state)
				continue
			}
			x.run(f, state == statePoisoned)
			return

		default:
			// a routine is in flight; flag that a caller is blocked, so the
			// winner knows to issue the wake, then sleep on the cell
			for state >= stateRunningNoWait {
				if state == stateRunningNoWait && !atomic.CompareAndSwapInt32(&x.state, stateRunningNoWait, stateRunningWaiting) {
					state = atomic.LoadInt32(&x.state)
					continue
				}
				wait(&x.state, stateRunningWaiting)
				// a wake may be spurious - the re-read decides
				state = atomic.LoadInt32(&x.state)
			}
		}
	}
}

// run executes f as the winner of the claim. The outcome is published via the
// deferred swap, which also runs when f panics, so blocked callers are always
// released, and the panic itself propagates unhindered.
func (x *Once) run(f func(*State), poisoned bool) {
	s := State{poisoned: poisoned}
	outcome := statePoisoned
	defer func() {
		if atomic.SwapInt32(&x.state, outcome) == stateRunningWaiting {
			wakeAll(&x.state)
		}
	}()
	f(&s)
	if !s.poison {
		outcome = stateComplete
	}
}
