package linktest

import (
	"context"
	"errors"
	"sync"

	"github.com/vango-dev/deeplink/pkg/share"
)

// ErrShareCancelled is returned by a failing RecordingShareSheet.
var ErrShareCancelled = errors.New("linktest: share cancelled")

// RecordingShareSheet records shared content.
type RecordingShareSheet struct {
	mu     sync.Mutex
	shared []share.Content

	// Fail makes Share return ErrShareCancelled after recording.
	Fail bool
}

// Share records c.
func (s *RecordingShareSheet) Share(_ context.Context, c share.Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shared = append(s.shared, c)
	if s.Fail {
		return ErrShareCancelled
	}
	return nil
}

// Shared returns a copy of everything shared so far.
func (s *RecordingShareSheet) Shared() []share.Content {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]share.Content(nil), s.shared...)
}

// Last returns the most recent content, or the zero value.
func (s *RecordingShareSheet) Last() share.Content {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.shared) == 0 {
		return share.Content{}
	}
	return s.shared[len(s.shared)-1]
}
