package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-auth/internal/data/repos/user"
	types "github.com/yungbote/neurobridge-auth/internal/domain"
	"github.com/yungbote/neurobridge-auth/internal/identity"
	"github.com/yungbote/neurobridge-auth/internal/platform/apierr"
	"github.com/yungbote/neurobridge-auth/internal/platform/logger"
)

type AuthService interface {
	// ValidateToken verifies a short-lived bearer token with the
	// identity provider and returns its claims.
	ValidateToken(ctx context.Context, token string) (*identity.Claims, error)
	// GetOrCreateUser resolves the local user row for a verified
	// subject, creating it on first login.
	GetOrCreateUser(ctx context.Context, claims *identity.Claims) (*types.User, error)
	// Login validates a token, resolves the user and mints a session
	// cookie. The recency check happens inside session minting.
	Login(ctx context.Context, token string) (*types.User, string, time.Time, error)
	// Register is Login with the recency requirement checked up front,
	// before any user row is touched.
	Register(ctx context.Context, token string) (*types.User, string, time.Time, error)
}

type authService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo user.UserRepo
	idClient identity.Client
	sessions SessionService
	now      func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo user.UserRepo,
	idClient identity.Client,
	sessions SessionService,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:       db,
		log:      serviceLog,
		userRepo: userRepo,
		idClient: idClient,
		sessions: sessions,
		now:      time.Now,
	}
}

func (as *authService) ValidateToken(ctx context.Context, token string) (*identity.Claims, error) {
	claims, err := as.idClient.VerifyIDToken(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrTokenExpired):
			return nil, apierr.Unauthorized("Token expired. Please login again.")
		case errors.Is(err, identity.ErrTokenRevoked):
			return nil, apierr.Unauthorized("Token revoked. Please login again.")
		case errors.Is(err, identity.ErrTransport):
			as.log.Error("Identity provider unreachable during token validation", "error", err)
			return nil, apierr.OracleUnreachable("Failed to reach identity provider, try again later")
		default:
			return nil, apierr.Unauthorized("Invalid Token. Please login again.")
		}
	}
	return claims, nil
}

func (as *authService) GetOrCreateUser(ctx context.Context, claims *identity.Claims) (*types.User, error) {
	existing, err := as.userRepo.GetByID(ctx, nil, claims.UserID)
	if err != nil {
		as.log.Error("Failed to get user", "user_id", claims.UserID, "error", err)
		return nil, apierr.BadRequest("Failed to get user")
	}
	if existing != nil {
		return existing, nil
	}

	newUser := &types.User{
		UserID:        claims.UserID,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
	}
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, cErr := as.userRepo.Create(ctx, tx, []*types.User{newUser})
		return cErr
	}); err != nil {
		as.log.Error("Failed to create user", "user_id", claims.UserID, "error", err)
		return nil, apierr.BadRequest("Failed to create user")
	}
	return newUser, nil
}

func (as *authService) Login(ctx context.Context, token string) (*types.User, string, time.Time, error) {
	claims, err := as.ValidateToken(ctx, token)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	u, err := as.GetOrCreateUser(ctx, claims)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	cookie, expires, err := as.sessions.Mint(ctx, claims, token)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return u, cookie, expires, nil
}

func (as *authService) Register(ctx context.Context, token string) (*types.User, string, time.Time, error) {
	claims, err := as.ValidateToken(ctx, token)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	// Stricter than login: refuse before creating the user rather than
	// deferring the recency check to session minting.
	if as.now().Sub(claims.AuthTime) >= RecentSignInWindow {
		return nil, "", time.Time{}, apierr.Unauthorized("Recent sign in required")
	}

	u, err := as.GetOrCreateUser(ctx, claims)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	cookie, expires, err := as.sessions.Mint(ctx, claims, token)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return u, cookie, expires, nil
}
