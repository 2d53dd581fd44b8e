package services

import (
	"context"
	"errors"
	"time"

	"github.com/yungbote/neurobridge-auth/internal/identity"
	"github.com/yungbote/neurobridge-auth/internal/platform/apierr"
	"github.com/yungbote/neurobridge-auth/internal/platform/logger"
)

// SessionCookieName is the single place the cookie name lives.
const SessionCookieName = "_session_nb"

const (
	// SessionValidity is how long a minted session cookie is good for.
	SessionValidity = 5 * 24 * time.Hour
	// RecentSignInWindow bounds how old a token's auth_time may be
	// before session minting is refused, to blunt stolen-token replay.
	RecentSignInWindow = 5 * time.Minute
)

type SessionService interface {
	// Mint exchanges a freshly verified ID token for a session cookie.
	// Refused unless the token's auth_time is within RecentSignInWindow.
	Mint(ctx context.Context, claims *identity.Claims, idToken string) (string, time.Time, error)
	// Validate re-verifies a session cookie with the identity provider
	// and returns its claims. There is no local session cache.
	Validate(ctx context.Context, cookie string) (*identity.Claims, error)
}

type sessionService struct {
	log      *logger.Logger
	idClient identity.Client
	now      func() time.Time
}

func NewSessionService(log *logger.Logger, idClient identity.Client) SessionService {
	serviceLog := log.With("service", "SessionService")
	return &sessionService{
		log:      serviceLog,
		idClient: idClient,
		now:      time.Now,
	}
}

func (ss *sessionService) Mint(ctx context.Context, claims *identity.Claims, idToken string) (string, time.Time, error) {
	if claims == nil {
		return "", time.Time{}, apierr.Unauthorized("Invalid ID token")
	}
	if ss.now().Sub(claims.AuthTime) >= RecentSignInWindow {
		return "", time.Time{}, apierr.Unauthorized("Recent sign in required")
	}

	cookie, err := ss.idClient.CreateSessionCookie(ctx, idToken, SessionValidity)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrTransport):
			ss.log.Error("Identity provider unreachable during session mint", "error", err)
			return "", time.Time{}, apierr.OracleUnreachable("Failed to reach identity provider, try again later")
		case errors.Is(err, identity.ErrTokenInvalid), errors.Is(err, identity.ErrTokenMalformed):
			return "", time.Time{}, apierr.Unauthorized("Invalid ID token")
		default:
			ss.log.Error("Failed to create session cookie", "error", err)
			return "", time.Time{}, apierr.Unauthorized("Failed to create a session cookie")
		}
	}

	expires := ss.now().Add(SessionValidity)
	return cookie, expires, nil
}

func (ss *sessionService) Validate(ctx context.Context, cookie string) (*identity.Claims, error) {
	claims, err := ss.idClient.VerifySessionCookie(ctx, cookie)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrTokenExpired):
			return nil, apierr.Unauthorized("Session cookie expired. Please login again.")
		case errors.Is(err, identity.ErrTokenRevoked):
			return nil, apierr.Unauthorized("Session cookie revoked. Please login again.")
		case errors.Is(err, identity.ErrTransport):
			ss.log.Error("Identity provider unreachable during session validation", "error", err)
			return nil, apierr.OracleUnreachable("Failed to reach identity provider, try again later")
		default:
			return nil, apierr.Unauthorized("Invalid session cookie. Please login again.")
		}
	}
	return claims, nil
}
