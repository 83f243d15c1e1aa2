package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Option configures a Session.
type Option func(*Session)

// WithNow sets the time source used for expiry checks.
func WithNow(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithLogger sets the session's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// Session holds the current principal. It is safe for concurrent use.
type Session struct {
	mu        sync.RWMutex
	principal *Principal
	replayer  Replayer

	now    func() time.Time
	logger *slog.Logger
}

// NewSession creates a signed-out session.
func NewSession(opts ...Option) *Session {
	s := &Session{
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetReplayer attaches the deep link engine.
func (s *Session) SetReplayer(r Replayer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replayer = r
}

// Login signs p in and replays any deferred deep link.
func (s *Session) Login(ctx context.Context, p Principal) error {
	return s.establish(ctx, p, "login")
}

// Restore resumes a persisted session and replays any deferred deep link.
// An expired principal is refused.
func (s *Session) Restore(ctx context.Context, p Principal) error {
	return s.establish(ctx, p, "restore")
}

func (s *Session) establish(ctx context.Context, p Principal, how string) error {
	if p.ID == "" {
		return ErrUnauthorized
	}
	if p.Expired(s.now()) {
		return ErrSessionExpired
	}

	s.mu.Lock()
	s.principal = &p
	r := s.replayer
	s.mu.Unlock()

	s.logger.Info("session established", "how", how, "user_id", p.ID)
	if r != nil {
		r.ReplayPendingLink(ctx)
	}
	return nil
}

// Logout clears the principal. It does not touch the pending deep link.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.principal != nil {
		s.logger.Info("session cleared", "user_id", s.principal.ID)
	}
	s.principal = nil
}

// IsAuthenticated reports whether an unexpired principal is signed in.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.principal != nil && !s.principal.Expired(s.now())
}

// Principal returns the signed-in principal.
func (s *Session) Principal() (Principal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.principal == nil {
		return Principal{}, false
	}
	return *s.principal, true
}
