package fastonce

// Func returns a function that invokes f only once, sharing one [Once] across
// every returned-function call. The semantics are those of Once.Do: callers
// block until the single invocation completes, a panic in f poisons, and
// subsequent calls panic with [*PoisonError].
func Func(f func()) func() {
	var once Once
	return func() { once.Do(f) }
}

// Value returns a function that invokes f only once, and returns the value it
// produced to every caller. The happens-before edge established by the
// completed initialization makes the value safe to use without further
// synchronization. Poison semantics are those of Once.Do.
func Value[T any](f func() T) func() T {
	var (
		once   Once
		result T
	)
	return func() T {
		once.Do(func() { result = f() })
		return result
	}
}
