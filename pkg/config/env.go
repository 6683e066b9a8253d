package config

// EnvPrefix is handed to envconfig; every field carries its full variable name.
const EnvPrefix = "LEADFUNNEL"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv     = "LEADFUNNEL_APP_ENV"
	EnvPort       = "LEADFUNNEL_APP_PORT"
	EnvLogLevel   = "LEADFUNNEL_LOG_LEVEL"
	EnvLeadAPIKey = "LEADFUNNEL_LEAD_API_KEY"

	EnvDBDSN    = "LEADFUNNEL_DB_DSN"
	EnvDBDriver = "LEADFUNNEL_DB_DRIVER"
	EnvDBHost   = "LEADFUNNEL_DB_HOST"
	EnvDBPort   = "LEADFUNNEL_DB_PORT"
	EnvDBUser   = "LEADFUNNEL_DB_USER"
	EnvDBPass   = "LEADFUNNEL_DB_PASSWORD"
	EnvDBName   = "LEADFUNNEL_DB_NAME"

	EnvRedisURL = "LEADFUNNEL_REDIS_URL"

	EnvJWTSecret  = "LEADFUNNEL_JWT_SECRET"
	EnvJWTIssuer  = "LEADFUNNEL_JWT_ISSUER"
	EnvJWTExpMins = "LEADFUNNEL_JWT_EXPIRATION_MINUTES"

	EnvProofMaxUploadMB = "LEADFUNNEL_PROOF_MAX_UPLOAD_MB"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
