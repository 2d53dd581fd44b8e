package identity

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/neurobridge-auth/internal/platform/logger"
)

// Config points the client at one identity provider project. ID tokens
// and session cookies are both provider-signed JWTs but use separate
// issuers and key sets.
type Config struct {
	ProjectID string

	TokenIssuer    string
	TokenJWKSURL   string
	SessionIssuer  string
	SessionJWKSURL string

	// AdminBaseURL is the provider's REST admin surface, used for
	// session cookie minting, custom-claims updates and revocation
	// lookups.
	AdminBaseURL string
	APIKey       string

	HTTPClient *http.Client
}

type providerClient struct {
	cfg  Config
	log  *logger.Logger
	http *http.Client

	tokenKeys   *jwksCache
	sessionKeys *jwksCache
}

func NewClient(cfg Config, log *logger.Logger) (Client, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, fmt.Errorf("identity: ProjectID is required")
	}
	if strings.TrimSpace(cfg.AdminBaseURL) == "" {
		return nil, fmt.Errorf("identity: AdminBaseURL is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	clientLog := log.With("client", "IdentityClient")
	return &providerClient{
		cfg:         cfg,
		log:         clientLog,
		http:        httpClient,
		tokenKeys:   newJWKSCache(httpClient, cfg.TokenJWKSURL),
		sessionKeys: newJWKSCache(httpClient, cfg.SessionJWKSURL),
	}, nil
}

func (pc *providerClient) VerifyIDToken(ctx context.Context, idToken string) (*Claims, error) {
	return pc.verify(ctx, idToken, pc.tokenKeys, pc.cfg.TokenIssuer)
}

func (pc *providerClient) VerifySessionCookie(ctx context.Context, cookie string) (*Claims, error) {
	return pc.verify(ctx, cookie, pc.sessionKeys, pc.cfg.SessionIssuer)
}

func (pc *providerClient) verify(ctx context.Context, raw string, keys *jwksCache, issuer string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.Count(raw, ".") != 2 {
		return nil, fmt.Errorf("%w: not a JWT", ErrTokenMalformed)
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))
	mapClaims := jwt.MapClaims{}
	tok, err := parser.ParseWithClaims(raw, mapClaims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if strings.TrimSpace(kid) == "" {
			return nil, fmt.Errorf("%w: missing kid", ErrTokenInvalid)
		}
		return keys.getKey(ctx, kid)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrTransport):
			pc.log.Error("Failed to fetch provider keys", "error", err)
			return nil, err
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}
	}
	if tok == nil || !tok.Valid {
		return nil, ErrTokenInvalid
	}

	if iss, _ := mapClaims["iss"].(string); iss != issuer {
		return nil, fmt.Errorf("%w: issuer mismatch %q", ErrTokenInvalid, iss)
	}
	if !audContains(mapClaims["aud"], pc.cfg.ProjectID) {
		return nil, fmt.Errorf("%w: audience mismatch", ErrTokenInvalid)
	}

	claims, err := claimsFromMap(mapClaims)
	if err != nil {
		return nil, err
	}

	// Revocation is the provider's call, so it costs a round trip on
	// every verification. A credential whose auth_time predates the
	// account's validSince has been revoked.
	validSince, err := pc.lookupValidSince(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !validSince.IsZero() && claims.AuthTime.Before(validSince) {
		return nil, fmt.Errorf("%w: credential predates validSince", ErrTokenRevoked)
	}

	return claims, nil
}

func (pc *providerClient) CreateSessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error) {
	body := map[string]any{
		"idToken":       idToken,
		"validDuration": int64(expiresIn.Seconds()),
	}
	var out struct {
		SessionCookie string `json:"sessionCookie"`
	}
	path := fmt.Sprintf("/v1/projects/%s:createSessionCookie", pc.cfg.ProjectID)
	if err := pc.post(ctx, path, body, &out); err != nil {
		return "", err
	}
	if out.SessionCookie == "" {
		return "", fmt.Errorf("%w: provider returned empty session cookie", ErrTokenInvalid)
	}
	return out.SessionCookie, nil
}

func (pc *providerClient) SetUserRoles(ctx context.Context, userID string, roles []string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: empty user id", ErrTokenInvalid)
	}
	attrs, err := json.Marshal(map[string]any{"Roles": roles})
	if err != nil {
		return err
	}
	body := map[string]any{
		"localId":          userID,
		"customAttributes": string(attrs),
	}
	path := fmt.Sprintf("/v1/projects/%s/accounts:update", pc.cfg.ProjectID)
	return pc.post(ctx, path, body, &struct{}{})
}

func (pc *providerClient) lookupValidSince(ctx context.Context, userID string) (time.Time, error) {
	body := map[string]any{"localId": []string{userID}}
	var out struct {
		Users []struct {
			LocalID    string `json:"localId"`
			ValidSince string `json:"validSince"`
		} `json:"users"`
	}
	path := fmt.Sprintf("/v1/projects/%s/accounts:lookup", pc.cfg.ProjectID)
	if err := pc.post(ctx, path, body, &out); err != nil {
		return time.Time{}, err
	}
	if len(out.Users) == 0 {
		return time.Time{}, fmt.Errorf("%w: unknown account", ErrTokenInvalid)
	}
	if out.Users[0].ValidSince == "" {
		return time.Time{}, nil
	}
	sec, err := strconv.ParseInt(out.Users[0].ValidSince, 10, 64)
	if err != nil {
		return time.Time{}, nil
	}
	return time.Unix(sec, 0).UTC(), nil
}

func (pc *providerClient) post(ctx context.Context, path string, body, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	url := strings.TrimRight(pc.cfg.AdminBaseURL, "/") + path
	if pc.cfg.APIKey != "" {
		url += "?key=" + pc.cfg.APIKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := pc.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		var apiRes struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(res.Body).Decode(&apiRes)
		if res.StatusCode >= 500 {
			return fmt.Errorf("%w: %s", ErrTransport, res.Status)
		}
		return fmt.Errorf("%w: %s %s", ErrTokenInvalid, res.Status, apiRes.Error.Message)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func claimsFromMap(c jwt.MapClaims) (*Claims, error) {
	out := &Claims{}

	if s, _ := c["user_id"].(string); s != "" {
		out.UserID = s
	} else if s, _ := c["sub"].(string); s != "" {
		out.UserID = s
	}
	if out.UserID == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	out.Email, _ = c["email"].(string)
	out.EmailVerified = parseBool(c["email_verified"])

	authTime, err := parseNumericTime(c["auth_time"])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid auth_time: %v", ErrTokenInvalid, err)
	}
	out.AuthTime = authTime

	if exp, err := parseNumericTime(c["exp"]); err == nil {
		out.ExpiresAt = exp
	}

	if rs, ok := c["Roles"].([]any); ok {
		for _, r := range rs {
			if s, ok := r.(string); ok {
				out.Roles = append(out.Roles, s)
			}
		}
	}

	return out, nil
}

func parseBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return strings.EqualFold(x, "true") || x == "1"
	case float64:
		return x != 0
	default:
		return false
	}
}

func parseNumericTime(v any) (time.Time, error) {
	var sec int64
	switch x := v.(type) {
	case float64:
		sec = int64(x)
	case int64:
		sec = x
	case int:
		sec = int64(x)
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return time.Time{}, err
		}
		sec = n
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		sec = n
	default:
		return time.Time{}, fmt.Errorf("unexpected type %T", v)
	}
	if sec <= 0 {
		return time.Time{}, fmt.Errorf("non-positive numeric date")
	}
	return time.Unix(sec, 0).UTC(), nil
}

func audContains(aud any, required string) bool {
	switch v := aud.(type) {
	case string:
		return v == required
	case []any:
		for _, it := range v {
			if s, ok := it.(string); ok && s == required {
				return true
			}
		}
	}
	return false
}

// ----- JWKS cache -----

type jwksCache struct {
	httpClient *http.Client
	jwksURL    string

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
	ttl       time.Duration
}

func newJWKSCache(httpClient *http.Client, url string) *jwksCache {
	return &jwksCache{
		httpClient: httpClient,
		jwksURL:    url,
		keys:       map[string]*rsa.PublicKey{},
		ttl:        6 * time.Hour,
	}
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (j *jwksCache) getKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	j.mu.RLock()
	key := j.keys[kid]
	stale := time.Since(j.fetchedAt) > j.ttl
	j.mu.RUnlock()

	if key != nil && !stale {
		return key, nil
	}
	if strings.TrimSpace(j.jwksURL) == "" {
		return nil, fmt.Errorf("%w: jwks url not set", ErrTransport)
	}

	if err := j.refresh(ctx); err != nil {
		// fall back to a cached key if we have one
		j.mu.RLock()
		key = j.keys[kid]
		j.mu.RUnlock()
		if key != nil {
			return key, nil
		}
		return nil, err
	}

	j.mu.RLock()
	defer j.mu.RUnlock()
	key = j.keys[kid]
	if key == nil {
		return nil, fmt.Errorf("%w: kid not found in jwks: %s", ErrTokenInvalid, kid)
	}
	return key, nil
}

func (j *jwksCache) refresh(ctx context.Context) error {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, j.jwksURL, nil)
	res, err := j.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("%w: jwks fetch failed: %s", ErrTransport, res.Status)
	}

	var set jwkSet
	if err := json.NewDecoder(res.Body).Decode(&set); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	next := map[string]*rsa.PublicKey{}
	for _, k := range set.Keys {
		if strings.TrimSpace(k.Kid) == "" || k.Kty != "RSA" {
			continue
		}
		pub, err := rsaFromModExp(k.N, k.E)
		if err == nil {
			next[k.Kid] = pub
		}
	}
	if len(next) == 0 {
		return fmt.Errorf("%w: jwks contained no usable keys", ErrTransport)
	}

	j.mu.Lock()
	j.keys = next
	j.fetchedAt = time.Now()
	j.mu.Unlock()
	return nil
}

func rsaFromModExp(nB64, eB64 string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(nB64)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(eB64)
	if err != nil {
		return nil, err
	}
	n := new(big.Int).SetBytes(nb)
	e := 0
	for _, b := range eb {
		e = e<<8 + int(b)
	}
	if e == 0 {
		return nil, fmt.Errorf("invalid exponent")
	}
	return &rsa.PublicKey{N: n, E: e}, nil
}
