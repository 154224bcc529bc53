package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Engine   EngineConfig
	Client   ClientConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Telegram TelegramConfig
	Cart     CartConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Engine.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Client.validate(); err != nil {
		return nil, err
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CARTSYNC_APP_ENV" required:"true"`
	Port         string `envconfig:"CARTSYNC_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CARTSYNC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARTSYNC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// EngineConfig tunes the client-side cart synchronization engine.
type EngineConfig struct {
	MaxQuantity  int           `envconfig:"CARTSYNC_MAX_QUANTITY" default:"10"`
	SyncDelay    time.Duration `envconfig:"CARTSYNC_SYNC_DEBOUNCE" default:"300ms"`
	PricingDelay time.Duration `envconfig:"CARTSYNC_PRICING_DEBOUNCE" default:"500ms"`
	Timeout      time.Duration `envconfig:"CARTSYNC_REMOTE_TIMEOUT" default:"10s"`
}

func (e EngineConfig) validate() error {
	if e.MaxQuantity < 1 {
		return fmt.Errorf("%s must be at least 1", EnvMaxQuantity)
	}
	if e.SyncDelay < 0 || e.PricingDelay < 0 {
		return fmt.Errorf("debounce intervals must not be negative")
	}
	if e.Timeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvRemoteTimeout)
	}
	return nil
}

// ClientConfig describes how the engine reaches the remote Cart API.
type ClientConfig struct {
	BaseURL      string `envconfig:"CARTSYNC_API_URL" default:"http://localhost:8080/api"`
	SessionID    string `envconfig:"CARTSYNC_SESSION_ID"`
	BearerToken  string `envconfig:"CARTSYNC_BEARER_TOKEN"`
	TelegramInit string `envconfig:"CARTSYNC_TELEGRAM_INIT_DATA"`
}

func (c ClientConfig) validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvAPIURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url", EnvAPIURL)
	}
	return nil
}

type DBConfig struct {
	DSN    string `envconfig:"CARTSYNC_DB_DSN"`
	Driver string `envconfig:"CARTSYNC_DB_DRIVER" default:"sqlite"`

	MaxOpenConns    int           `envconfig:"CARTSYNC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARTSYNC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARTSYNC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARTSYNC_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"CARTSYNC_AUTO_MIGRATE" default:"true"`
	Seed        bool `envconfig:"CARTSYNC_SEED_CATALOG" default:"false"`
}

func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"CARTSYNC_REDIS_URL"`
	Address      string        `envconfig:"CARTSYNC_REDIS_ADDR"`
	Password     string        `envconfig:"CARTSYNC_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARTSYNC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARTSYNC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARTSYNC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARTSYNC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARTSYNC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARTSYNC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret string `envconfig:"CARTSYNC_JWT_SECRET"`
	Issuer string `envconfig:"CARTSYNC_JWT_ISSUER" default:"cartsync"`
	// ExpirationMinutes applies to tokens minted by the dev tooling.
	ExpirationMinutes int `envconfig:"CARTSYNC_JWT_EXPIRATION_MINUTES" default:"60"`
}

type TelegramConfig struct {
	BotToken string        `envconfig:"CARTSYNC_TELEGRAM_BOT_TOKEN"`
	MaxAge   time.Duration `envconfig:"CARTSYNC_TELEGRAM_INIT_MAX_AGE" default:"24h"`
}

// CartConfig holds reference-server cart policy.
type CartConfig struct {
	TTL         time.Duration `envconfig:"CARTSYNC_CART_TTL" default:"720h"`
	MaxQuantity int           `envconfig:"CARTSYNC_SERVER_MAX_QUANTITY" default:"10"`
	// RateLimit caps cart requests per actor per RateWindow when Redis is enabled. Zero disables it.
	RateLimit   int64         `envconfig:"CARTSYNC_CART_RATE_LIMIT" default:"120"`
	RateWindow  time.Duration `envconfig:"CARTSYNC_CART_RATE_WINDOW" default:"1m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = DefaultSQLiteDSN
		return nil
	}
	return fmt.Errorf("%s is required for driver %q", EnvDBDSN, db.Driver)
}
