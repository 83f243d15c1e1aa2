package linktest

import "sync/atomic"

// StaticAuth is an AuthProvider whose answer is set by the test.
type StaticAuth struct {
	authenticated atomic.Bool
}

// NewStaticAuth returns a provider with the given initial state.
func NewStaticAuth(authenticated bool) *StaticAuth {
	a := &StaticAuth{}
	a.authenticated.Store(authenticated)
	return a
}

// IsAuthenticated reports the current state.
func (a *StaticAuth) IsAuthenticated() bool {
	return a.authenticated.Load()
}

// Set changes the state.
func (a *StaticAuth) Set(authenticated bool) {
	a.authenticated.Store(authenticated)
}
