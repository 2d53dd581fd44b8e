package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-auth/internal/data/db"
	apphttp "github.com/yungbote/neurobridge-auth/internal/http"
	"github.com/yungbote/neurobridge-auth/internal/identity"
	"github.com/yungbote/neurobridge-auth/internal/observability"
	"github.com/yungbote/neurobridge-auth/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *apphttp.Server
	Cfg      Config
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	idClient, err := identity.NewClient(identity.Config{
		ProjectID:      cfg.IdentityProjectID,
		TokenIssuer:    cfg.IdentityTokenIssuer,
		TokenJWKSURL:   cfg.IdentityTokenJWKSURL,
		SessionIssuer:  cfg.IdentitySessionIssuer,
		SessionJWKSURL: cfg.IdentitySessionJWKSURL,
		AdminBaseURL:   cfg.IdentityAdminBaseURL,
		APIKey:         cfg.IdentityAPIKey,
	}, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init identity client: %w", err)
	}

	metrics := observability.NewMetrics()

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, idClient)
	handlerset := wireHandlers(serviceset, idClient)
	middlewareset := wireMiddleware(log, serviceset)
	server := wireServer(log, cfg, metrics, handlerset, middlewareset)

	return &App{
		Log:      log,
		DB:       theDB,
		Server:   server,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		Metrics:  metrics,
	}, nil
}

func (a *App) Run(addr string) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = a.Server.Shutdown(ctx)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
