package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/neurobridge-auth/internal/http/handlers"
	httpMW "github.com/yungbote/neurobridge-auth/internal/http/middleware"
	"github.com/yungbote/neurobridge-auth/internal/http/response"
	"github.com/yungbote/neurobridge-auth/internal/observability"
	"github.com/yungbote/neurobridge-auth/internal/platform/apierr"
	"github.com/yungbote/neurobridge-auth/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	CORSOrigins    []string
	AuthHandler    *httpH.AuthHandler
	RoleHandler    *httpH.RoleHandler
	HealthHandler  *httpH.HealthHandler
	AuthMiddleware *httpMW.AuthMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestID())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	r.HandleMethodNotAllowed = true
	r.NoRoute(func(c *gin.Context) {
		response.RespondError(c, apierr.NotFound("Resource not Found"))
	})
	r.NoMethod(func(c *gin.Context) {
		response.RespondError(c, apierr.MethodNotAllowed("Method not allowed"))
	})

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")

	// Auth (session cookie lifecycle; these validate credentials
	// themselves rather than sit behind a guard)
	if cfg.AuthHandler != nil {
		auth := api.Group("/auth")
		auth.GET("/verify_session", cfg.AuthHandler.VerifySession)
		auth.POST("/sessionLogin", cfg.AuthHandler.SessionLogin)
		auth.POST("/sessionLogout", cfg.AuthHandler.SessionLogout)
		auth.POST("/register", cfg.AuthHandler.Register)
		auth.POST("/verify_token", cfg.AuthHandler.VerifyToken)

		if cfg.AuthMiddleware != nil {
			auth.GET("/profile", cfg.AuthMiddleware.RequireRoles("Admin"), cfg.AuthHandler.Profile)
			auth.POST("/profile", cfg.AuthMiddleware.RequireRoles("Admin"), cfg.AuthHandler.Profile)
		}
	}

	// Role administration
	if cfg.RoleHandler != nil {
		role := api.Group("/role")
		role.GET("", cfg.RoleHandler.List)
		role.POST("", cfg.RoleHandler.Create)
		role.GET("/add_role", cfg.RoleHandler.AddRole)
		role.DELETE("/:role_name", cfg.RoleHandler.Delete)
	}

	return r
}
