package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/hedgerow/hedgerow-backend/pkg/enums"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Cart         CartConfig
	Delivery     DeliveryConfig
	CORS         CORSConfig
	PubSub       PubSubConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
	}
	if cfg.Cart.Driver() == enums.CartStorageDB || cfg.FeatureFlags.AutoMigrate {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if cfg.Cart.Driver() == enums.CartStorageRedis && !cfg.Redis.Configured() {
		return nil, fmt.Errorf("%s or %s is required for the redis cart storage driver", EnvRedisURL, EnvRedisAddr)
	}
	if err := cfg.Delivery.parse(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDB loads only what database tooling needs; cmd/migrate uses it.
func LoadDB() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"HEDGEROW_APP_ENV" required:"true"`
	Port         string `envconfig:"HEDGEROW_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"HEDGEROW_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"HEDGEROW_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"HEDGEROW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"HEDGEROW_DB_DSN"`
	Driver string `envconfig:"HEDGEROW_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HEDGEROW_DB_HOST"`
	LegacyPort     int    `envconfig:"HEDGEROW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HEDGEROW_DB_USER"`
	LegacyPassword string `envconfig:"HEDGEROW_DB_PASSWORD"`
	LegacyName     string `envconfig:"HEDGEROW_DB_NAME"`
	LegacySSLMode  string `envconfig:"HEDGEROW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HEDGEROW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HEDGEROW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HEDGEROW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HEDGEROW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite dialector should be used.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), "sqlite")
}

type RedisConfig struct {
	URL          string        `envconfig:"HEDGEROW_REDIS_URL"`
	Address      string        `envconfig:"HEDGEROW_REDIS_ADDR"`
	Password     string        `envconfig:"HEDGEROW_REDIS_PASSWORD"`
	DB           int           `envconfig:"HEDGEROW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HEDGEROW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HEDGEROW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HEDGEROW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HEDGEROW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HEDGEROW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Configured reports whether enough settings exist to dial redis.
func (r RedisConfig) Configured() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type CartConfig struct {
	StorageDriver      string        `envconfig:"HEDGEROW_CART_STORAGE_DRIVER" default:"memory"`
	BlobTTL            time.Duration `envconfig:"HEDGEROW_CART_BLOB_TTL" default:"720h"`
	ClientCookieName   string        `envconfig:"HEDGEROW_CART_COOKIE_NAME" default:"hedgerow_cart_client"`
	ClientCookieMaxAge time.Duration `envconfig:"HEDGEROW_CART_COOKIE_MAX_AGE" default:"8760h"`
}

// Driver returns the parsed storage driver; call after Load.
func (c CartConfig) Driver() enums.CartStorageDriver {
	return enums.CartStorageDriver(strings.ToLower(strings.TrimSpace(c.StorageDriver)))
}

func (c *CartConfig) validate() error {
	if _, err := enums.ParseCartStorageDriver(string(c.Driver())); err != nil {
		return fmt.Errorf("%s: %w", EnvCartStorageDriver, err)
	}
	if c.BlobTTL < 0 {
		return fmt.Errorf("%s must be non-negative", EnvCartBlobTTL)
	}
	if strings.TrimSpace(c.ClientCookieName) == "" {
		return fmt.Errorf("%s must not be empty", EnvCartCookieName)
	}
	return nil
}

type DeliveryConfig struct {
	FlatFee                string   `envconfig:"HEDGEROW_DELIVERY_FLAT_FEE" default:"4.99"`
	FreeThreshold          string   `envconfig:"HEDGEROW_DELIVERY_FREE_THRESHOLD" default:"50.00"`
	WaivedPostcodePrefixes []string `envconfig:"HEDGEROW_DELIVERY_WAIVED_POSTCODE_PREFIXES"`
	Slots                  []string `envconfig:"HEDGEROW_DELIVERY_SLOTS"`
	TimeZone               string   `envconfig:"HEDGEROW_DELIVERY_TIMEZONE" default:"Europe/London"`

	FlatFeeAmount       decimal.Decimal `ignored:"true"`
	FreeThresholdAmount decimal.Decimal `ignored:"true"`
	Location            *time.Location  `ignored:"true"`
}

func (d *DeliveryConfig) parse() error {
	fee, err := decimal.NewFromString(strings.TrimSpace(d.FlatFee))
	if err != nil {
		return fmt.Errorf("%s: %w", EnvDeliveryFlatFee, err)
	}
	threshold, err := decimal.NewFromString(strings.TrimSpace(d.FreeThreshold))
	if err != nil {
		return fmt.Errorf("%s: %w", EnvDeliveryFreeThreshold, err)
	}
	if fee.IsNegative() || threshold.IsNegative() {
		return fmt.Errorf("delivery fee and threshold must be non-negative")
	}
	for _, slot := range d.Slots {
		if strings.TrimSpace(slot) == "" {
			return fmt.Errorf("%s contains an empty slot", EnvDeliverySlots)
		}
	}
	loc, err := time.LoadLocation(strings.TrimSpace(d.TimeZone))
	if err != nil {
		return fmt.Errorf("%s: %w", EnvDeliveryTimeZone, err)
	}
	d.FlatFeeAmount = fee
	d.FreeThresholdAmount = threshold
	d.Location = loc
	return nil
}

// SlotLabels returns the configured slot override or the default slot set.
func (d DeliveryConfig) SlotLabels() []string {
	if len(d.Slots) > 0 {
		out := make([]string, 0, len(d.Slots))
		for _, slot := range d.Slots {
			out = append(out, strings.TrimSpace(slot))
		}
		return out
	}
	defaults := enums.DeliverySlots()
	out := make([]string, 0, len(defaults))
	for _, slot := range defaults {
		out = append(out, slot.String())
	}
	return out
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"HEDGEROW_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type PubSubConfig struct {
	ProjectID   string `envconfig:"HEDGEROW_GCP_PROJECT_ID"`
	OrdersTopic string `envconfig:"HEDGEROW_PUBSUB_ORDERS_TOPIC"`
}

// Enabled reports whether submitted orders should be published.
func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.ProjectID) != "" && strings.TrimSpace(p.OrdersTopic) != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"HEDGEROW_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
