package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable read by the service.
	EnvPrefix = "MERIDIAN"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	Sanity        SanityConfig
	Stripe        StripeConfig
	HubSpot       HubSpotConfig
	Checkout      CheckoutConfig
	QuoteRate     QuoteRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	WebhookEvents WebhookEventConfig
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
	Env          string `envconfig:"MERIDIAN_APP_ENV" required:"true"`
	Port         string `envconfig:"MERIDIAN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MERIDIAN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MERIDIAN_LOG_WARN_STACK" default:"false"`

	// PublicBaseURL is the storefront origin used to absolutize relative
	// image paths and build checkout redirect URLs.
	PublicBaseURL string `envconfig:"MERIDIAN_PUBLIC_BASE_URL" required:"true"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MERIDIAN_DB_DSN"`
	Driver string `envconfig:"MERIDIAN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MERIDIAN_DB_HOST"`
	LegacyPort     int    `envconfig:"MERIDIAN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MERIDIAN_DB_USER"`
	LegacyPassword string `envconfig:"MERIDIAN_DB_PASSWORD"`
	LegacyName     string `envconfig:"MERIDIAN_DB_NAME"`
	LegacySSLMode  string `envconfig:"MERIDIAN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MERIDIAN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MERIDIAN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MERIDIAN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MERIDIAN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MERIDIAN_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MERIDIAN_REDIS_ADDR"`
	Password     string        `envconfig:"MERIDIAN_REDIS_PASSWORD"`
	DB           int           `envconfig:"MERIDIAN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MERIDIAN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MERIDIAN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MERIDIAN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MERIDIAN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MERIDIAN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type SanityConfig struct {
	ProjectID  string `envconfig:"MERIDIAN_SANITY_PROJECT_ID" required:"true"`
	Dataset    string `envconfig:"MERIDIAN_SANITY_DATASET" default:"production"`
	APIVersion string `envconfig:"MERIDIAN_SANITY_API_VERSION" default:"2024-08-07"`
	Token      string `envconfig:"MERIDIAN_SANITY_TOKEN"`
	UseCDN     bool   `envconfig:"MERIDIAN_SANITY_USE_CDN" default:"true"`
}

type StripeConfig struct {
	APIKey string `envconfig:"MERIDIAN_STRIPE_API_KEY"`
	Secret string `envconfig:"MERIDIAN_STRIPE_WEBHOOK_SECRET"`
	Env    string `envconfig:"MERIDIAN_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type HubSpotConfig struct {
	PortalID string `envconfig:"MERIDIAN_HUBSPOT_PORTAL_ID"`
	FormID   string `envconfig:"MERIDIAN_HUBSPOT_FORM_ID"`
	// Token is the private-app token used for the CRM contacts API. When
	// empty, leads go to the Forms API only.
	Token string `envconfig:"MERIDIAN_HUBSPOT_PRIVATE_TOKEN"`
}

type CheckoutConfig struct {
	SuccessPath string `envconfig:"MERIDIAN_CHECKOUT_SUCCESS_PATH" default:"/checkout/success"`
	CancelPath  string `envconfig:"MERIDIAN_CHECKOUT_CANCEL_PATH" default:"/buy-now"`
}

type QuoteRateLimitConfig struct {
	Window  time.Duration `envconfig:"MERIDIAN_QUOTE_RATE_LIMIT_WINDOW" default:"1m"`
	IPLimit int           `envconfig:"MERIDIAN_QUOTE_RATE_LIMIT_IP_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MERIDIAN_AUTO_MIGRATE" default:"false"`
}

type WebhookEventConfig struct {
	IdempotencyTTL time.Duration `envconfig:"MERIDIAN_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		"MERIDIAN_DB_HOST": db.LegacyHost,
		"MERIDIAN_DB_USER": db.LegacyUser,
		"MERIDIAN_DB_NAME": db.LegacyName,
	}
	for _, env := range []string{"MERIDIAN_DB_HOST", "MERIDIAN_DB_USER", "MERIDIAN_DB_NAME"} {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either MERIDIAN_DB_DSN or %s are required", strings.Join(missing, ", "))
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
