package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-auth/internal/http/response"
	"github.com/yungbote/neurobridge-auth/internal/identity"
	"github.com/yungbote/neurobridge-auth/internal/platform/apierr"
	"github.com/yungbote/neurobridge-auth/internal/services"
)

type AuthHandler struct {
	authService    services.AuthService
	sessionService services.SessionService
	idClient       identity.Client
}

func NewAuthHandler(authService services.AuthService, sessionService services.SessionService, idClient identity.Client) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		sessionService: sessionService,
		idClient:       idClient,
	}
}

// VerifySession re-verifies the session cookie with the identity
// provider and echoes its claims.
func (ah *AuthHandler) VerifySession(c *gin.Context) {
	cookie, err := c.Cookie(services.SessionCookieName)
	if err != nil || cookie == "" {
		response.RespondError(c, apierr.Unauthorized("Session cookie unavailable. Please login."))
		return
	}
	claims, vErr := ah.sessionService.Validate(c.Request.Context(), cookie)
	if vErr != nil {
		response.RespondError(c, vErr)
		return
	}
	response.RespondOK(c, gin.H{
		"user_id":        claims.UserID,
		"email":          claims.Email,
		"email_verified": claims.EmailVerified,
		"auth_time":      claims.AuthTime.Unix(),
		"Roles":          claims.Roles,
	})
}

func (ah *AuthHandler) SessionLogin(c *gin.Context) {
	var req struct {
		Token     string `json:"token"`
		IsNewUser bool   `json:"is_new_user"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		response.RespondError(c, apierr.BadRequest("No token provided"))
		return
	}

	_, cookie, expires, err := ah.authService.Login(c.Request.Context(), req.Token)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	setSessionCookie(c, cookie, expires)
	response.RespondOK(c, gin.H{"status": "success"})
}

// SessionLogout clears the cookie unconditionally; it never validates
// it and never contacts the identity provider.
func (ah *AuthHandler) SessionLogout(c *gin.Context) {
	cookie, err := c.Cookie(services.SessionCookieName)
	if err != nil || cookie == "" {
		response.RespondOK(c, gin.H{"message": "No session_cookie provided"})
		return
	}
	clearSessionCookie(c)
	response.RespondOK(c, gin.H{"status": "Logged Out"})
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		response.RespondError(c, apierr.BadRequest("No token provided"))
		return
	}

	u, cookie, expires, err := ah.authService.Register(c.Request.Context(), req.Token)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	setSessionCookie(c, cookie, expires)
	response.RespondOK(c, gin.H{"status": "success", "user": u})
}

// VerifyToken reports token validity without minting anything. The
// outcome is always a 200 with a message, except when the provider
// itself cannot be reached.
func (ah *AuthHandler) VerifyToken(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		response.RespondError(c, apierr.BadRequest("No token provided"))
		return
	}

	_, err := ah.idClient.VerifyIDToken(c.Request.Context(), req.Token)
	switch {
	case err == nil:
		response.RespondOK(c, gin.H{"message": "token is valid"})
	case errors.Is(err, identity.ErrTokenExpired):
		response.RespondOK(c, gin.H{"message": "Expired Token"})
	case errors.Is(err, identity.ErrTokenRevoked):
		response.RespondOK(c, gin.H{"message": "Revoked Token"})
	case errors.Is(err, identity.ErrTransport):
		response.RespondError(c, apierr.OracleUnreachable("Failed to reach identity provider, try again later"))
	default:
		response.RespondOK(c, gin.H{"message": "Invalid Token"})
	}
}

// Profile is the example role-guarded resource.
func (ah *AuthHandler) Profile(c *gin.Context) {
	response.RespondOK(c, gin.H{"message": "You have access to this content"})
}

// setSessionCookie carries both Max-Age and the absolute Expires
// timestamp, so clients without Max-Age support expire the session at
// the same moment the provider does.
func setSessionCookie(c *gin.Context, value string, expires time.Time) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     services.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(time.Until(expires).Seconds()),
		Expires:  expires,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}

func clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     services.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}
