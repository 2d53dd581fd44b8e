package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-auth/internal/domain"
	"github.com/yungbote/neurobridge-auth/internal/identity"
	"github.com/yungbote/neurobridge-auth/internal/platform/apierr"
	"github.com/yungbote/neurobridge-auth/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func expectAPIError(t *testing.T, err error, status int, code, message string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *apierr.Error, got %T: %v", err, err)
	}
	if apiErr.Status != status {
		t.Fatalf("status: got %d, want %d (%v)", apiErr.Status, status, err)
	}
	if apiErr.Code != code {
		t.Fatalf("code: got %q, want %q (%v)", apiErr.Code, code, err)
	}
	if apiErr.Err.Error() != message {
		t.Fatalf("message: got %q, want %q", apiErr.Err.Error(), message)
	}
}

type fakeIdentity struct {
	verifyIDTokenFn       func(ctx context.Context, token string) (*identity.Claims, error)
	verifySessionCookieFn func(ctx context.Context, cookie string) (*identity.Claims, error)
	createSessionCookieFn func(ctx context.Context, idToken string, expiresIn time.Duration) (string, error)
	setUserRolesFn        func(ctx context.Context, userID string, roles []string) error

	createSessionCalls int
	setUserRolesCalls  int
}

func (f *fakeIdentity) VerifyIDToken(ctx context.Context, token string) (*identity.Claims, error) {
	return f.verifyIDTokenFn(ctx, token)
}

func (f *fakeIdentity) VerifySessionCookie(ctx context.Context, cookie string) (*identity.Claims, error) {
	return f.verifySessionCookieFn(ctx, cookie)
}

func (f *fakeIdentity) CreateSessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error) {
	f.createSessionCalls++
	if f.createSessionCookieFn == nil {
		return "session-cookie", nil
	}
	return f.createSessionCookieFn(ctx, idToken, expiresIn)
}

func (f *fakeIdentity) SetUserRoles(ctx context.Context, userID string, roles []string) error {
	f.setUserRolesCalls++
	if f.setUserRolesFn == nil {
		return nil
	}
	return f.setUserRolesFn(ctx, userID, roles)
}

type fakeUserRepo struct {
	users map[string]*types.User

	createCalls int
	getCalls    int
}

func newFakeUserRepo(users ...*types.User) *fakeUserRepo {
	f := &fakeUserRepo{users: map[string]*types.User{}}
	for _, u := range users {
		f.users[u.UserID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
	f.createCalls++
	for _, u := range users {
		f.users[u.UserID] = u
	}
	return users, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, userID string) (*types.User, error) {
	f.getCalls++
	return f.users[userID], nil
}

func (f *fakeUserRepo) GetByEmails(ctx context.Context, tx *gorm.DB, userEmails []string) ([]*types.User, error) {
	var out []*types.User
	for _, u := range f.users {
		for _, email := range userEmails {
			if u.Email == email {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetRoleIDs(ctx context.Context, tx *gorm.DB, userID string) ([]int, error) {
	return nil, nil
}

func (f *fakeUserRepo) UpdateUsername(ctx context.Context, tx *gorm.DB, userID string, username string) error {
	if u := f.users[userID]; u != nil {
		u.Username = username
	}
	return nil
}

type fakeRoleRepo struct {
	roles []*types.Role

	deleteCalls int
}

func (f *fakeRoleRepo) Create(ctx context.Context, tx *gorm.DB, roles []*types.Role) ([]*types.Role, error) {
	for i, r := range roles {
		r.RoleID = len(f.roles) + i + 1
		if r.Description == "" {
			r.Description = types.DefaultRoleDescription
		}
	}
	f.roles = append(f.roles, roles...)
	return roles, nil
}

func (f *fakeRoleRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Role, error) {
	return f.roles, nil
}

func (f *fakeRoleRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Role, error) {
	for _, r := range f.roles {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRoleRepo) GetByNameFold(ctx context.Context, tx *gorm.DB, name string) (*types.Role, error) {
	for _, r := range f.roles {
		if strings.EqualFold(r.Name, name) {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRoleRepo) DeleteByName(ctx context.Context, tx *gorm.DB, name string) (int64, error) {
	f.deleteCalls++
	kept := f.roles[:0]
	var deleted int64
	for _, r := range f.roles {
		if r.Name == name {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	f.roles = kept
	return deleted, nil
}

func (f *fakeRoleRepo) GetMemberIDs(ctx context.Context, tx *gorm.DB, roleID int) ([]string, error) {
	return nil, nil
}

type fakeSessions struct {
	mintFn     func(ctx context.Context, claims *identity.Claims, idToken string) (string, time.Time, error)
	validateFn func(ctx context.Context, cookie string) (*identity.Claims, error)

	mintCalls int
}

func (f *fakeSessions) Mint(ctx context.Context, claims *identity.Claims, idToken string) (string, time.Time, error) {
	f.mintCalls++
	if f.mintFn == nil {
		return "session-cookie", time.Now().Add(SessionValidity), nil
	}
	return f.mintFn(ctx, claims, idToken)
}

func (f *fakeSessions) Validate(ctx context.Context, cookie string) (*identity.Claims, error) {
	return f.validateFn(ctx, cookie)
}
