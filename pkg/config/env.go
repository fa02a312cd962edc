package config

const (
	EnvPrefix = "ARTISAN"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv    = "ARTISAN_APP_ENV"
	EnvPort      = "ARTISAN_APP_PORT"
	EnvLogLevel  = "ARTISAN_LOG_LEVEL"
	EnvLogFormat = "ARTISAN_LOG_FORMAT"

	EnvDBDriver   = "ARTISAN_DB_DRIVER"
	EnvDBDSN      = "ARTISAN_DB_DSN"
	EnvDBHost     = "ARTISAN_DB_HOST"
	EnvDBPort     = "ARTISAN_DB_PORT"
	EnvDBUser     = "ARTISAN_DB_USER"
	EnvDBPassword = "ARTISAN_DB_PASSWORD"
	EnvDBName     = "ARTISAN_DB_NAME"

	EnvRedisURL = "ARTISAN_REDIS_URL"

	EnvSessionSecret = "ARTISAN_SESSION_SECRET"
	EnvSessionIssuer = "ARTISAN_SESSION_ISSUER"
	EnvSessionTTL    = "ARTISAN_SESSION_TTL"

	EnvRecordsBackend = "ARTISAN_RECORDS_BACKEND"
	EnvRecordsBaseURL = "ARTISAN_RECORDS_BASE_URL"
	EnvRecordsAPIKey  = "ARTISAN_RECORDS_API_KEY"

	EnvEmailFunctionURL = "ARTISAN_EMAIL_FUNCTION_URL"
	EnvResendAPIKey     = "ARTISAN_RESEND_API_KEY"

	EnvFreeShippingThreshold = "ARTISAN_PRICING_FREE_SHIPPING_THRESHOLD"
	EnvShippingFee           = "ARTISAN_PRICING_SHIPPING_FEE"
	EnvTaxRate               = "ARTISAN_PRICING_TAX_RATE"

	EnvAdminAPIKey = "ARTISAN_ADMIN_API_KEY"
)

// legacyDBEnvVars are the discrete connection settings accepted when no DSN is set.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
