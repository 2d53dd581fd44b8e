package app

import (
	"fmt"

	"github.com/yungbote/neurobridge-auth/internal/platform/envutil"
	"github.com/yungbote/neurobridge-auth/internal/platform/logger"
)

type Config struct {
	Port        string
	CORSOrigins []string

	IdentityProjectID      string
	IdentityTokenIssuer    string
	IdentityTokenJWKSURL   string
	IdentitySessionIssuer  string
	IdentitySessionJWKSURL string
	IdentityAdminBaseURL   string
	IdentityAPIKey         string

	DemoUserID string
}

func LoadConfig(log *logger.Logger) Config {
	projectID := envutil.GetEnv("IDENTITY_PROJECT_ID", "", log)
	return Config{
		Port:        envutil.GetEnv("PORT", "8080", log),
		CORSOrigins: envutil.GetEnvAsList("CORS_ORIGINS_LIST", nil, log),

		IdentityProjectID: projectID,
		IdentityTokenIssuer: envutil.GetEnv("IDENTITY_TOKEN_ISSUER",
			fmt.Sprintf("https://securetoken.google.com/%s", projectID), log),
		IdentityTokenJWKSURL: envutil.GetEnv("IDENTITY_TOKEN_JWKS_URL",
			"https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com", log),
		IdentitySessionIssuer: envutil.GetEnv("IDENTITY_SESSION_ISSUER",
			fmt.Sprintf("https://session.firebase.google.com/%s", projectID), log),
		IdentitySessionJWKSURL: envutil.GetEnv("IDENTITY_SESSION_JWKS_URL",
			"https://www.googleapis.com/identitytoolkit/v3/relyingparty/publicKeys", log),
		IdentityAdminBaseURL: envutil.GetEnv("IDENTITY_ADMIN_BASE_URL",
			"https://identitytoolkit.googleapis.com", log),
		IdentityAPIKey: envutil.GetEnv("IDENTITY_API_KEY", "", log),

		DemoUserID: envutil.GetEnv("DEMO_USER_ID", "", log),
	}
}
