package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/neurobridge-auth/internal/domain"
	"github.com/yungbote/neurobridge-auth/internal/http/response"
	"github.com/yungbote/neurobridge-auth/internal/identity"
	"github.com/yungbote/neurobridge-auth/internal/services"
)

type fakeAuthService struct {
	loginFn    func(ctx context.Context, token string) (*types.User, string, time.Time, error)
	registerFn func(ctx context.Context, token string) (*types.User, string, time.Time, error)

	calls int
}

func (f *fakeAuthService) ValidateToken(ctx context.Context, token string) (*identity.Claims, error) {
	f.calls++
	return nil, nil
}

func (f *fakeAuthService) GetOrCreateUser(ctx context.Context, claims *identity.Claims) (*types.User, error) {
	f.calls++
	return nil, nil
}

func (f *fakeAuthService) Login(ctx context.Context, token string) (*types.User, string, time.Time, error) {
	f.calls++
	return f.loginFn(ctx, token)
}

func (f *fakeAuthService) Register(ctx context.Context, token string) (*types.User, string, time.Time, error) {
	f.calls++
	return f.registerFn(ctx, token)
}

type fakeSessionService struct {
	validateFn func(ctx context.Context, cookie string) (*identity.Claims, error)

	calls int
}

func (f *fakeSessionService) Mint(ctx context.Context, claims *identity.Claims, idToken string) (string, time.Time, error) {
	f.calls++
	return "", time.Time{}, nil
}

func (f *fakeSessionService) Validate(ctx context.Context, cookie string) (*identity.Claims, error) {
	f.calls++
	return f.validateFn(ctx, cookie)
}

type fakeIDClient struct {
	verifyIDTokenFn func(ctx context.Context, token string) (*identity.Claims, error)

	calls int
}

func (f *fakeIDClient) VerifyIDToken(ctx context.Context, token string) (*identity.Claims, error) {
	f.calls++
	return f.verifyIDTokenFn(ctx, token)
}

func (f *fakeIDClient) VerifySessionCookie(ctx context.Context, cookie string) (*identity.Claims, error) {
	f.calls++
	return nil, identity.ErrTokenInvalid
}

func (f *fakeIDClient) CreateSessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error) {
	f.calls++
	return "", identity.ErrTokenInvalid
}

func (f *fakeIDClient) SetUserRoles(ctx context.Context, userID string, roles []string) error {
	f.calls++
	return nil
}

type fakeRoleService struct {
	listFn   func(ctx context.Context) ([]*types.Role, error)
	createFn func(ctx context.Context, name, description string) (*types.Role, error)
	deleteFn func(ctx context.Context, name string) (bool, error)
	grantFn  func(ctx context.Context) error
}

func (f *fakeRoleService) List(ctx context.Context) ([]*types.Role, error) {
	return f.listFn(ctx)
}

func (f *fakeRoleService) Create(ctx context.Context, name, description string) (*types.Role, error) {
	return f.createFn(ctx, name, description)
}

func (f *fakeRoleService) Delete(ctx context.Context, name string) (bool, error) {
	return f.deleteFn(ctx, name)
}

func (f *fakeRoleService) GrantDemoRoles(ctx context.Context) error {
	return f.grantFn(ctx)
}

func do(r *gin.Engine, method, path, body, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: services.SessionCookieName, Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body: %v (%s)", err, w.Body.String())
	}
	return out
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.ErrorEnvelope {
	t.Helper()
	var env response.ErrorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, w.Body.String())
	}
	return env
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	res := http.Response{Header: w.Header()}
	for _, c := range res.Cookies() {
		if c.Name == services.SessionCookieName {
			return c
		}
	}
	return nil
}
