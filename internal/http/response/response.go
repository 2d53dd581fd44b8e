package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-auth/internal/platform/apierr"
)

// ErrorEnvelope is the uniform error body; Code mirrors the HTTP status.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RespondError renders any error as the envelope. Typed apierr values
// keep their status, label and message; anything else is surfaced as a
// generic 400 so internals never leak to the caller. The raw error is
// attached to the gin context so the request logger records it with
// full request context.
func RespondError(c *gin.Context, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		c.JSON(ae.Status, ErrorEnvelope{
			Success: false,
			Code:    ae.Status,
			Error:   ae.Code,
			Message: ae.Error(),
		})
		return
	}
	if err != nil {
		_ = c.Error(err)
	}
	c.JSON(http.StatusBadRequest, ErrorEnvelope{
		Success: false,
		Code:    http.StatusBadRequest,
		Error:   "bad request",
		Message: "Unable to process your request.",
	})
}

// AbortError is RespondError for middleware, stopping the chain.
func AbortError(c *gin.Context, err error) {
	RespondError(c, err)
	c.Abort()
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
