// Package navstack is an in-memory navigation history implementing
// deeplink.Navigator. The CLI simulator and the dev server use it in place
// of a real mobile navigation stack.
package navstack

import (
	"errors"
	"strings"
	"sync"

	"github.com/vango-dev/deeplink/pkg/deeplink"
)

// ErrInvalidPath is returned for a path that is empty or not absolute.
var ErrInvalidPath = errors.New("navstack: path must start with /")

// DefaultRoot is the initial history entry.
const DefaultRoot = "/"

// Change describes one history update.
type Change struct {
	Method deeplink.Method `json:"method"`
	Path   string          `json:"path"`
	Depth  int             `json:"depth"`
}

// Option configures a Stack.
type Option func(*Stack)

// WithRoot sets the initial history entry.
func WithRoot(path string) Option {
	return func(s *Stack) {
		s.entries = []string{path}
	}
}

// WithMaxDepth caps the history; the oldest entries are dropped first.
func WithMaxDepth(n int) Option {
	return func(s *Stack) {
		s.maxDepth = n
	}
}

// WithObserver registers a function called after every change.
// It runs on the navigating goroutine, outside the stack's lock.
func WithObserver(fn func(Change)) Option {
	return func(s *Stack) {
		s.observers = append(s.observers, fn)
	}
}

// Stack is a navigation history. It is safe for concurrent use.
type Stack struct {
	mu        sync.Mutex
	entries   []string
	maxDepth  int
	observers []func(Change)
}

var _ deeplink.Navigator = (*Stack)(nil)

// New creates a stack holding only the root entry.
func New(opts ...Option) *Stack {
	s := &Stack{entries: []string{DefaultRoot}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Push adds path on top of the history.
func (s *Stack) Push(path string) error {
	return s.apply(deeplink.MethodPush, path)
}

// Replace swaps the top entry for path.
func (s *Stack) Replace(path string) error {
	return s.apply(deeplink.MethodReplace, path)
}

func (s *Stack) apply(method deeplink.Method, path string) error {
	if !strings.HasPrefix(path, "/") {
		return ErrInvalidPath
	}

	s.mu.Lock()
	if method == deeplink.MethodReplace && len(s.entries) > 0 {
		s.entries[len(s.entries)-1] = path
	} else {
		s.entries = append(s.entries, path)
	}
	if s.maxDepth > 0 && len(s.entries) > s.maxDepth {
		s.entries = append([]string(nil), s.entries[len(s.entries)-s.maxDepth:]...)
	}
	c := Change{Method: method, Path: path, Depth: len(s.entries)}
	observers := s.observers
	s.mu.Unlock()

	for _, fn := range observers {
		fn(c)
	}
	return nil
}

// Back pops the top entry. It reports false when only one entry is left.
func (s *Stack) Back() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) <= 1 {
		return false
	}
	s.entries = s.entries[:len(s.entries)-1]
	return true
}

// Current returns the top entry.
func (s *Stack) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return ""
	}
	return s.entries[len(s.entries)-1]
}

// History returns a copy of all entries, oldest first.
func (s *Stack) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.entries...)
}

// Depth returns the number of entries.
func (s *Stack) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Reset returns the stack to a single root entry.
func (s *Stack) Reset(root string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = []string{root}
}
