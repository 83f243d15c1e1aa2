package auth

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnauthorized is returned when a principal has no identity.
	ErrUnauthorized = errors.New("unauthorized: authentication required")

	// ErrSessionExpired indicates the session is no longer valid due to expiry.
	ErrSessionExpired = errors.New("session expired")
)

// Principal represents the signed-in identity.
type Principal struct {
	ID       string `json:"id"`
	Username string `json:"username"`

	// ExpiresAtUnixMs is the hard expiry; zero means no expiry.
	ExpiresAtUnixMs int64 `json:"expires_at_unix_ms"`
}

// Expired reports whether the principal has expired at now.
func (p Principal) Expired(now time.Time) bool {
	return p.ExpiresAtUnixMs != 0 && now.UnixMilli() >= p.ExpiresAtUnixMs
}

// Replayer resumes a deep link deferred while signed out.
// *deeplink.Engine implements it.
type Replayer interface {
	ReplayPendingLink(ctx context.Context) bool
}
