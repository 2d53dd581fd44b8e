package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/yungbote/neurobridge-auth/internal/data/repos/testutil"
	"github.com/yungbote/neurobridge-auth/internal/data/repos/user"
	types "github.com/yungbote/neurobridge-auth/internal/domain"
	"github.com/yungbote/neurobridge-auth/internal/identity"
)

func newTestAuthService(
	t *testing.T,
	repo user.UserRepo,
	idClient identity.Client,
	sessions SessionService,
	now time.Time,
) *authService {
	t.Helper()
	as := NewAuthService(nil, testLogger(t), repo, idClient, sessions).(*authService)
	as.now = func() time.Time { return now }
	return as
}

func TestValidateTokenMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantCode   string
		wantErrMsg string
	}{
		{"expired", identity.ErrTokenExpired, "unauthorized", "Token expired. Please login again."},
		{"revoked", identity.ErrTokenRevoked, "unauthorized", "Token revoked. Please login again."},
		{"transport", identity.ErrTransport, "oracle_unreachable", "Failed to reach identity provider, try again later"},
		{"invalid", identity.ErrTokenInvalid, "unauthorized", "Invalid Token. Please login again."},
		{"malformed", identity.ErrTokenMalformed, "unauthorized", "Invalid Token. Please login again."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeIdentity{
				verifyIDTokenFn: func(ctx context.Context, token string) (*identity.Claims, error) {
					return nil, fmt.Errorf("%w: details", tc.err)
				},
			}
			as := newTestAuthService(t, newFakeUserRepo(), fake, &fakeSessions{}, time.Now())
			_, err := as.ValidateToken(context.Background(), "some-token")
			expectAPIError(t, err, 401, tc.wantCode, tc.wantErrMsg)
		})
	}
}

func TestLoginExistingUser(t *testing.T) {
	now := time.Now()
	existing := &types.User{UserID: "uid-1", Email: "alice@example.com", EmailVerified: true}
	repo := newFakeUserRepo(existing)
	fake := &fakeIdentity{
		verifyIDTokenFn: func(ctx context.Context, token string) (*identity.Claims, error) {
			return &identity.Claims{
				UserID:        "uid-1",
				Email:         "alice@example.com",
				EmailVerified: true,
				AuthTime:      now.Add(-time.Minute),
			}, nil
		},
	}
	sessions := &fakeSessions{}
	as := newTestAuthService(t, repo, fake, sessions, now)

	u, cookie, expires, err := as.Login(context.Background(), "token")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u != existing {
		t.Fatalf("expected the existing user row back")
	}
	if repo.createCalls != 0 {
		t.Fatalf("login of a known user must not insert, got %d creates", repo.createCalls)
	}
	if cookie == "" || expires.IsZero() {
		t.Fatalf("missing session cookie: %q %v", cookie, expires)
	}
	if sessions.mintCalls != 1 {
		t.Fatalf("mint calls: got %d, want 1", sessions.mintCalls)
	}
}

func TestLoginBadToken(t *testing.T) {
	repo := newFakeUserRepo()
	fake := &fakeIdentity{
		verifyIDTokenFn: func(ctx context.Context, token string) (*identity.Claims, error) {
			return nil, fmt.Errorf("%w: bad signature", identity.ErrTokenInvalid)
		},
	}
	sessions := &fakeSessions{}
	as := newTestAuthService(t, repo, fake, sessions, time.Now())

	_, _, _, err := as.Login(context.Background(), "garbage")
	expectAPIError(t, err, 401, "unauthorized", "Invalid Token. Please login again.")
	if repo.getCalls != 0 || repo.createCalls != 0 {
		t.Fatalf("rejected login must not touch the user table")
	}
	if sessions.mintCalls != 0 {
		t.Fatalf("rejected login must not mint a session")
	}
}

func TestRegisterRefusesStaleSignIn(t *testing.T) {
	now := time.Now()
	repo := newFakeUserRepo()
	fake := &fakeIdentity{
		verifyIDTokenFn: func(ctx context.Context, token string) (*identity.Claims, error) {
			return &identity.Claims{UserID: "uid-1", AuthTime: now.Add(-10 * time.Minute)}, nil
		},
	}
	sessions := &fakeSessions{}
	as := newTestAuthService(t, repo, fake, sessions, now)

	_, _, _, err := as.Register(context.Background(), "token")
	expectAPIError(t, err, 401, "unauthorized", "Recent sign in required")
	if repo.getCalls != 0 || repo.createCalls != 0 {
		t.Fatalf("stale registration must not touch the user table")
	}
	if sessions.mintCalls != 0 {
		t.Fatalf("stale registration must not mint a session")
	}
}

func TestRegisterRecentSignIn(t *testing.T) {
	now := time.Now()
	existing := &types.User{UserID: "uid-1", Email: "alice@example.com"}
	repo := newFakeUserRepo(existing)
	fake := &fakeIdentity{
		verifyIDTokenFn: func(ctx context.Context, token string) (*identity.Claims, error) {
			return &identity.Claims{UserID: "uid-1", AuthTime: now.Add(-time.Minute)}, nil
		},
	}
	sessions := &fakeSessions{}
	as := newTestAuthService(t, repo, fake, sessions, now)

	u, cookie, _, err := as.Register(context.Background(), "token")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u != existing || cookie == "" {
		t.Fatalf("unexpected result: %+v %q", u, cookie)
	}
	if repo.createCalls != 0 {
		t.Fatalf("re-registration must not insert a duplicate row")
	}
}

// Creation goes through a real transaction, so this one needs postgres.
func TestGetOrCreateUserCreatesOnce(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	repo := user.NewUserRepo(tx, log)
	as := NewAuthService(tx, log, repo, &fakeIdentity{}, &fakeSessions{}).(*authService)

	claims := &identity.Claims{
		UserID:        "svc-uid-1",
		Email:         "svc1@example.com",
		EmailVerified: true,
	}

	first, err := as.GetOrCreateUser(context.Background(), claims)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if first.UserID != claims.UserID || first.Email != claims.Email {
		t.Fatalf("created row mismatch: %+v", first)
	}

	second, err := as.GetOrCreateUser(context.Background(), claims)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if second.UserID != claims.UserID {
		t.Fatalf("lookup mismatch: %+v", second)
	}

	var count int64
	if err := tx.Model(&types.User{}).Where("user_id = ?", claims.UserID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one row, got %d", count)
	}
}
