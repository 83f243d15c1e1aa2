package deeplink

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Defaults for StateConfig.
const (
	DefaultDedupWindow    = 2 * time.Second
	DefaultDedupCapacity  = 256
	DefaultDebounceWindow = 500 * time.Millisecond
)

// StateConfig sizes the router state.
type StateConfig struct {
	// DedupWindow is how long a raw URL counts as already handled.
	DedupWindow time.Duration

	// DedupCapacity bounds the replay log. The oldest entries are evicted
	// first once it is full.
	DedupCapacity int

	// DebounceWindow suppresses a second navigation to the same path.
	DebounceWindow time.Duration
}

// DefaultStateConfig returns the default windows and capacity.
func DefaultStateConfig() StateConfig {
	return StateConfig{
		DedupWindow:    DefaultDedupWindow,
		DedupCapacity:  DefaultDedupCapacity,
		DebounceWindow: DefaultDebounceWindow,
	}
}

// State is the router's shared mutable state: the replay protection log,
// the pending link slot and the navigation debounce record.
//
// Create one per process (or per test) and hand it to the engine with
// WithState. All methods are safe for concurrent use. Time is always passed
// in so that the caller's clock decides freshness.
type State struct {
	config StateConfig

	// replay maps xxhash64(raw URL) to the time it was recorded. The LRU
	// only bounds memory; entries never age out on their own.
	replay *lru.Cache[uint64, time.Time]

	mu       sync.Mutex
	pending  *ParsedLink
	lastPath string
	lastNav  time.Time
}

// NewState creates router state. Zero fields in cfg take their defaults.
func NewState(cfg StateConfig) *State {
	if cfg.DedupWindow <= 0 {
		cfg.DedupWindow = DefaultDedupWindow
	}
	if cfg.DedupCapacity <= 0 {
		cfg.DedupCapacity = DefaultDedupCapacity
	}
	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = DefaultDebounceWindow
	}
	replay, err := lru.New[uint64, time.Time](cfg.DedupCapacity)
	if err != nil {
		// Only a non-positive size fails, and capacity is defaulted above.
		panic(err)
	}
	return &State{config: cfg, replay: replay}
}

// Config returns the effective configuration.
func (s *State) Config() StateConfig {
	return s.config
}

// =============================================================================
// Replay Protection Log
// =============================================================================

// SeenRecently reports whether raw was recorded less than DedupWindow
// before now.
func (s *State) SeenRecently(raw string, now time.Time) bool {
	at, ok := s.replay.Peek(replayKey(raw))
	return ok && now.Sub(at) < s.config.DedupWindow
}

// Record marks raw as handled at now.
func (s *State) Record(raw string, now time.Time) {
	s.replay.Add(replayKey(raw), now)
}

// ReplayLogLen returns the number of entries in the replay log.
func (s *State) ReplayLogLen() int {
	return s.replay.Len()
}

func replayKey(raw string) uint64 {
	return xxhash.Sum64String(raw)
}

// =============================================================================
// Pending Link Store
// =============================================================================

// SetPending stores link in the pending slot and returns the link it
// displaced, if any.
func (s *State) SetPending(link *ParsedLink) (displaced *ParsedLink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	displaced = s.pending
	s.pending = link
	return displaced
}

// TakePending returns the pending link and clears the slot.
func (s *State) TakePending() *ParsedLink {
	s.mu.Lock()
	defer s.mu.Unlock()
	link := s.pending
	s.pending = nil
	return link
}

// PeekPending returns the pending link without clearing the slot.
func (s *State) PeekPending() *ParsedLink {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// RestorePending puts link back into the slot only if the slot is empty,
// so a link deferred after link was taken keeps priority.
func (s *State) RestorePending(link *ParsedLink) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		return false
	}
	s.pending = link
	return true
}

// =============================================================================
// Navigation Debounce State
// =============================================================================

// ShouldNavigate reports whether a navigation to path may proceed at now.
// A repeat of the last path inside DebounceWindow is refused; otherwise
// the debounce record is updated.
func (s *State) ShouldNavigate(path string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if path == s.lastPath && now.Sub(s.lastNav) < s.config.DebounceWindow {
		return false
	}
	s.lastPath = path
	s.lastNav = now
	return true
}

// LastNavigation returns the debounce record.
func (s *State) LastNavigation() (path string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPath, s.lastNav
}
