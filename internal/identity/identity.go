package identity

import (
	"context"
	"errors"
	"time"
)

// Claims is the decoded payload the provider returns for a verified ID
// token or session cookie. It is never persisted or cached; every
// authorization decision re-verifies with the provider.
type Claims struct {
	UserID        string
	Email         string
	EmailVerified bool
	AuthTime      time.Time
	ExpiresAt     time.Time
	Roles         []string
}

// HasAnyRole reports whether the claims carry at least one of the
// required roles. An empty requirement never matches.
func (c *Claims) HasAnyRole(required ...string) bool {
	if c == nil {
		return false
	}
	for _, want := range required {
		for _, have := range c.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Verification failures, distinguishable with errors.Is. ErrTransport
// marks a network problem talking to the provider, not a bad
// credential, so callers can tell the user to retry.
var (
	ErrTokenMalformed = errors.New("identity: malformed token")
	ErrTokenExpired   = errors.New("identity: token expired")
	ErrTokenRevoked   = errors.New("identity: token revoked")
	ErrTokenInvalid   = errors.New("identity: token invalid")
	ErrTransport      = errors.New("identity: provider unreachable")
)

// Client is the surface of the external identity provider this service
// trusts for authentication truth. Implementations do not mint or
// inspect credentials themselves beyond checking provider signatures.
type Client interface {
	// VerifyIDToken checks a short-lived bearer token issued at login.
	VerifyIDToken(ctx context.Context, idToken string) (*Claims, error)
	// VerifySessionCookie checks a long-lived session cookie previously
	// minted by CreateSessionCookie.
	VerifySessionCookie(ctx context.Context, cookie string) (*Claims, error)
	// CreateSessionCookie exchanges a freshly verified ID token for a
	// session cookie valid for expiresIn.
	CreateSessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error)
	// SetUserRoles replaces the custom Roles claim on a provider account.
	SetUserRoles(ctx context.Context, userID string, roles []string) error
}
