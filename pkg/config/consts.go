package config

// EnvPrefix scopes all environment variables consumed by the app.
const EnvPrefix = "TAPSHOP"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names shared between Load and tests.
const (
	EnvAppEnv   = "TAPSHOP_APP_ENV"
	EnvPort     = "TAPSHOP_APP_PORT"
	EnvDBDSN    = "TAPSHOP_DB_DSN"
	EnvDBHost   = "TAPSHOP_DB_HOST"
	EnvDBUser   = "TAPSHOP_DB_USER"
	EnvDBName   = "TAPSHOP_DB_NAME"
	EnvRedisURL = "TAPSHOP_REDIS_URL"

	EnvJWTSecret  = "TAPSHOP_JWT_SECRET"
	EnvJWTIssuer  = "TAPSHOP_JWT_ISSUER"
	EnvJWTExpMins = "TAPSHOP_JWT_EXPIRATION_MINUTES"

	EnvLalamoveAPIKey    = "TAPSHOP_LALAMOVE_API_KEY"
	EnvLalamoveAPISecret = "TAPSHOP_LALAMOVE_API_SECRET"
	EnvLineChannelToken  = "TAPSHOP_LINE_CHANNEL_ACCESS_TOKEN"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
