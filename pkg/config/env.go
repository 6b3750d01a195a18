package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "TIREDEPOT"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "TIREDEPOT_APP_ENV"
	EnvPort     = "TIREDEPOT_APP_PORT"
	EnvDBDSN    = "TIREDEPOT_DB_DSN"
	EnvDBHost   = "TIREDEPOT_DB_HOST"
	EnvDBUser   = "TIREDEPOT_DB_USER"
	EnvDBName   = "TIREDEPOT_DB_NAME"
	EnvRedisURL = "TIREDEPOT_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
