package app

import (
	"gorm.io/gorm"

	roleRepoPkg "github.com/yungbote/neurobridge-auth/internal/data/repos/role"
	userRepoPkg "github.com/yungbote/neurobridge-auth/internal/data/repos/user"
	apphttp "github.com/yungbote/neurobridge-auth/internal/http"
	httpH "github.com/yungbote/neurobridge-auth/internal/http/handlers"
	httpMW "github.com/yungbote/neurobridge-auth/internal/http/middleware"
	"github.com/yungbote/neurobridge-auth/internal/identity"
	"github.com/yungbote/neurobridge-auth/internal/observability"
	"github.com/yungbote/neurobridge-auth/internal/platform/logger"
	"github.com/yungbote/neurobridge-auth/internal/services"
)

type Repos struct {
	User userRepoPkg.UserRepo
	Role roleRepoPkg.RoleRepo
}

type Services struct {
	Session services.SessionService
	Auth    services.AuthService
	Role    services.RoleService
}

type Handlers struct {
	Health *httpH.HealthHandler
	Auth   *httpH.AuthHandler
	Role   *httpH.RoleHandler
}

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User: userRepoPkg.NewUserRepo(db, log),
		Role: roleRepoPkg.NewRoleRepo(db, log),
	}
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, idClient identity.Client) Services {
	log.Info("Wiring services...")
	sessionService := services.NewSessionService(log, idClient)
	return Services{
		Session: sessionService,
		Auth:    services.NewAuthService(db, log, repos.User, idClient, sessionService),
		Role:    services.NewRoleService(db, log, repos.Role, idClient, cfg.DemoUserID),
	}
}

func wireHandlers(svcs Services, idClient identity.Client) Handlers {
	return Handlers{
		Health: httpH.NewHealthHandler(),
		Auth:   httpH.NewAuthHandler(svcs.Auth, svcs.Session, idClient),
		Role:   httpH.NewRoleHandler(svcs.Role),
	}
}

func wireMiddleware(log *logger.Logger, svcs Services) Middleware {
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, svcs.Session),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *apphttp.Server {
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		CORSOrigins:    cfg.CORSOrigins,
		AuthHandler:    handlers.Auth,
		RoleHandler:    handlers.Role,
		HealthHandler:  handlers.Health,
		AuthMiddleware: middleware.Auth,
	})
}
