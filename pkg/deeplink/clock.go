package deeplink

import "time"

// Clock abstracts time so the dedup window, debounce window and settle delay
// can be driven deterministically in tests.
type Clock interface {
	Now() time.Time

	// AfterFunc calls f in its own goroutine (or, for fake clocks, when time
	// is advanced) once d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a scheduled call returned by Clock.AfterFunc.
type Timer interface {
	// Stop prevents the call from firing. It reports whether the call was
	// stopped before it fired.
	Stop() bool
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// AfterFunc wraps time.AfterFunc.
func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
