package config

const EnvPrefix = "CARTSYNC"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultSQLiteDSN = "file:cartsync.db?cache=shared&_foreign_keys=on"
)

const (
	EnvAppEnv        = "CARTSYNC_APP_ENV"
	EnvPort          = "CARTSYNC_APP_PORT"
	EnvMaxQuantity   = "CARTSYNC_MAX_QUANTITY"
	EnvSyncDebounce  = "CARTSYNC_SYNC_DEBOUNCE"
	EnvPricingDelay  = "CARTSYNC_PRICING_DEBOUNCE"
	EnvRemoteTimeout = "CARTSYNC_REMOTE_TIMEOUT"
	EnvAPIURL        = "CARTSYNC_API_URL"
	EnvSessionID     = "CARTSYNC_SESSION_ID"
	EnvDBDSN         = "CARTSYNC_DB_DSN"
	EnvDBDriver      = "CARTSYNC_DB_DRIVER"
	EnvRedisURL      = "CARTSYNC_REDIS_URL"
	EnvJWTSecret     = "CARTSYNC_JWT_SECRET"
	EnvTelegramToken = "CARTSYNC_TELEGRAM_BOT_TOKEN"
)
