package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-auth/internal/http/response"
	"github.com/yungbote/neurobridge-auth/internal/identity"
	"github.com/yungbote/neurobridge-auth/internal/platform/apierr"
	"github.com/yungbote/neurobridge-auth/internal/platform/logger"
	"github.com/yungbote/neurobridge-auth/internal/services"
)

const claimsContextKey = "session_claims"

type AuthMiddleware struct {
	log      *logger.Logger
	sessions services.SessionService
}

func NewAuthMiddleware(log *logger.Logger, sessions services.SessionService) *AuthMiddleware {
	middlewareLog := log.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLog, sessions: sessions}
}

// RequireAuth admits only requests carrying a session cookie the
// identity provider still vouches for. No role check.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := am.validateCookie(c)
		if err != nil {
			response.AbortError(c, err)
			return
		}
		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// RequireRoles additionally demands a non-empty intersection between
// the session's Roles claim and the required set. A missing or bad
// cookie is still 401; only a valid session short on roles gets 403.
func (am *AuthMiddleware) RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := am.validateCookie(c)
		if err != nil {
			response.AbortError(c, err)
			return
		}
		if !claims.HasAnyRole(roles...) {
			response.AbortError(c, apierr.Forbidden("You are not authorized to perform this action."))
			return
		}
		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

func (am *AuthMiddleware) validateCookie(c *gin.Context) (*identity.Claims, error) {
	cookie, err := c.Cookie(services.SessionCookieName)
	if err != nil || cookie == "" {
		return nil, apierr.Unauthorized("Session cookie unavailable. Please login.")
	}
	return am.sessions.Validate(c.Request.Context(), cookie)
}

// SessionClaims returns the claims a guard stored for this request, or
// nil on unguarded routes.
func SessionClaims(c *gin.Context) *identity.Claims {
	v, ok := c.Get(claimsContextKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*identity.Claims)
	return claims
}
