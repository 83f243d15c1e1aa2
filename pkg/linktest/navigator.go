package linktest

import (
	"errors"
	"sync"

	"github.com/vango-dev/deeplink/pkg/deeplink"
)

// ErrNavigation is the error returned by a failing RecordingNavigator.
var ErrNavigation = errors.New("linktest: navigation failed")

// Call is one recorded Navigator call.
type Call struct {
	Method deeplink.Method
	Path   string
}

// RecordingNavigator records every call. Calls are recorded even when they
// fail or panic.
type RecordingNavigator struct {
	mu    sync.Mutex
	calls []Call

	// FailPush makes Push return ErrNavigation.
	FailPush bool

	// FailReplace makes Replace return ErrNavigation.
	FailReplace bool

	// PanicPush makes Push panic.
	PanicPush bool
}

// Push records a push.
func (n *RecordingNavigator) Push(path string) error {
	n.record(deeplink.MethodPush, path)
	n.mu.Lock()
	fail, panicking := n.FailPush, n.PanicPush
	n.mu.Unlock()
	if panicking {
		panic("linktest: push panicked")
	}
	if fail {
		return ErrNavigation
	}
	return nil
}

// Replace records a replace.
func (n *RecordingNavigator) Replace(path string) error {
	n.record(deeplink.MethodReplace, path)
	n.mu.Lock()
	fail := n.FailReplace
	n.mu.Unlock()
	if fail {
		return ErrNavigation
	}
	return nil
}

func (n *RecordingNavigator) record(m deeplink.Method, path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, Call{Method: m, Path: path})
}

// Calls returns a copy of the recorded calls.
func (n *RecordingNavigator) Calls() []Call {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Call(nil), n.calls...)
}

// Count returns the number of recorded calls.
func (n *RecordingNavigator) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

// Reset clears the recorded calls.
func (n *RecordingNavigator) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = nil
}
