package config

const (
	EnvPrefix = "HEDGEROW"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv       = "HEDGEROW_APP_ENV"
	EnvPort         = "HEDGEROW_APP_PORT"
	EnvLogLevel     = "HEDGEROW_LOG_LEVEL"
	EnvLogFormat    = "HEDGEROW_LOG_FORMAT"
	EnvLogWarnStack = "HEDGEROW_LOG_WARN_STACK"

	EnvDBDSN      = "HEDGEROW_DB_DSN"
	EnvDBDriver   = "HEDGEROW_DB_DRIVER"
	EnvDBHost     = "HEDGEROW_DB_HOST"
	EnvDBPort     = "HEDGEROW_DB_PORT"
	EnvDBUser     = "HEDGEROW_DB_USER"
	EnvDBPassword = "HEDGEROW_DB_PASSWORD"
	EnvDBName     = "HEDGEROW_DB_NAME"
	EnvDBSSLMode  = "HEDGEROW_DB_SSLMODE"

	EnvRedisURL  = "HEDGEROW_REDIS_URL"
	EnvRedisAddr = "HEDGEROW_REDIS_ADDR"

	EnvCartStorageDriver = "HEDGEROW_CART_STORAGE_DRIVER"
	EnvCartBlobTTL       = "HEDGEROW_CART_BLOB_TTL"
	EnvCartCookieName    = "HEDGEROW_CART_COOKIE_NAME"

	EnvDeliveryFlatFee        = "HEDGEROW_DELIVERY_FLAT_FEE"
	EnvDeliveryFreeThreshold  = "HEDGEROW_DELIVERY_FREE_THRESHOLD"
	EnvDeliveryWaivedPrefixes = "HEDGEROW_DELIVERY_WAIVED_POSTCODE_PREFIXES"
	EnvDeliverySlots          = "HEDGEROW_DELIVERY_SLOTS"
	EnvDeliveryTimeZone       = "HEDGEROW_DELIVERY_TIMEZONE"

	EnvCORSAllowedOrigins = "HEDGEROW_CORS_ALLOWED_ORIGINS"

	EnvGCPProjectID       = "HEDGEROW_GCP_PROJECT_ID"
	EnvPubSubOrdersTopic  = "HEDGEROW_PUBSUB_ORDERS_TOPIC"
	EnvFeatureAutoMigrate = "HEDGEROW_AUTO_MIGRATE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
