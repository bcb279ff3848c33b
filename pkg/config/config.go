package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	FeatureFlags  FeatureFlagsConfig
	Lalamove      LalamoveConfig
	Line          LineConfig
	Cart          CartConfig
	Orders        OrdersConfig
	Notifications NotificationsConfig
	RateLimit     RateLimitConfig
}

func Load() (*Config, error) {
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
	Env          string `envconfig:"TAPSHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"TAPSHOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TAPSHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TAPSHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TAPSHOP_DB_DSN"`
	Driver string `envconfig:"TAPSHOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TAPSHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"TAPSHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TAPSHOP_DB_USER"`
	LegacyPassword string `envconfig:"TAPSHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"TAPSHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"TAPSHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TAPSHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TAPSHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TAPSHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TAPSHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TAPSHOP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TAPSHOP_REDIS_ADDR"`
	Password     string        `envconfig:"TAPSHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"TAPSHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TAPSHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TAPSHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TAPSHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TAPSHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TAPSHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TAPSHOP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TAPSHOP_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TAPSHOP_JWT_EXPIRATION_MINUTES" required:"true"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TAPSHOP_AUTO_MIGRATE" default:"false"`
}

// LalamoveConfig covers the delivery carrier integration. Leaving the key and
// secret empty puts quoting and booking in mock mode.
type LalamoveConfig struct {
	APIKey    string        `envconfig:"TAPSHOP_LALAMOVE_API_KEY"`
	APISecret string        `envconfig:"TAPSHOP_LALAMOVE_API_SECRET"`
	BaseURL   string        `envconfig:"TAPSHOP_LALAMOVE_BASE_URL" default:"https://rest.sandbox.lalamove.com"`
	Market    string        `envconfig:"TAPSHOP_LALAMOVE_MARKET" default:"TH"`
	Timeout   time.Duration `envconfig:"TAPSHOP_LALAMOVE_TIMEOUT" default:"10s"`
}

// IsConfigured reports whether real carrier calls can be made.
func (l LalamoveConfig) IsConfigured() bool {
	return l.APIKey != "" && l.APISecret != ""
}

// LineConfig covers the outbound messaging provider.
type LineConfig struct {
	ChannelAccessToken string        `envconfig:"TAPSHOP_LINE_CHANNEL_ACCESS_TOKEN"`
	BaseURL            string        `envconfig:"TAPSHOP_LINE_BASE_URL" default:"https://api.line.me"`
	Timeout            time.Duration `envconfig:"TAPSHOP_LINE_TIMEOUT" default:"10s"`
}

// IsConfigured reports whether push messages can be sent.
func (l LineConfig) IsConfigured() bool {
	return l.ChannelAccessToken != ""
}

type CartConfig struct {
	TTL time.Duration `envconfig:"TAPSHOP_CART_TTL" default:"168h"`
}

type OrdersConfig struct {
	NumberPrefix      string `envconfig:"TAPSHOP_ORDER_NUMBER_PREFIX" default:"TS"`
	NumberMaxAttempts int    `envconfig:"TAPSHOP_ORDER_NUMBER_MAX_ATTEMPTS" default:"5"`
}

type NotificationsConfig struct {
	QueueSize int `envconfig:"TAPSHOP_NOTIFICATIONS_QUEUE_SIZE" default:"64"`
}

// RateLimitConfig throttles the unauthenticated storefront surfaces. A zero
// window or limit disables the corresponding limiter.
type RateLimitConfig struct {
	QuoteWindow    time.Duration `envconfig:"TAPSHOP_RATE_LIMIT_QUOTE_WINDOW" default:"1m"`
	QuoteLimit     int64         `envconfig:"TAPSHOP_RATE_LIMIT_QUOTE_LIMIT" default:"30"`
	CheckoutWindow time.Duration `envconfig:"TAPSHOP_RATE_LIMIT_CHECKOUT_WINDOW" default:"1m"`
	CheckoutLimit  int64         `envconfig:"TAPSHOP_RATE_LIMIT_CHECKOUT_LIMIT" default:"10"`
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
