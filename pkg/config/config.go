package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	PayPal  PayPalConfig
	Express ExpressConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.PayPal.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"EXPRESS_APP_ENV" default:"dev"`
	Port         string `envconfig:"EXPRESS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"EXPRESS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"EXPRESS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

type DBConfig struct {
	DSN             string        `envconfig:"EXPRESS_DB_DSN" required:"true"`
	MaxOpenConns    int           `envconfig:"EXPRESS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EXPRESS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EXPRESS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EXPRESS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"EXPRESS_REDIS_URL"`
	Address      string        `envconfig:"EXPRESS_REDIS_ADDR"`
	Password     string        `envconfig:"EXPRESS_REDIS_PASSWORD"`
	DB           int           `envconfig:"EXPRESS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EXPRESS_REDIS_POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"EXPRESS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EXPRESS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EXPRESS_REDIS_WRITE_TIMEOUT" default:"5s"`
	SessionTTL   time.Duration `envconfig:"EXPRESS_SESSION_TTL" default:"30m"`
}

// PayPalConfig carries the express-checkout endpoints of the external provider.
type PayPalConfig struct {
	APIBaseURL     string        `envconfig:"EXPRESS_PAYPAL_API_URL" default:"https://api.paypal.example"`
	CheckoutURL    string        `envconfig:"EXPRESS_PAYPAL_CHECKOUT_URL" default:"https://checkout.paypal.example/express"`
	RequestTimeout time.Duration `envconfig:"EXPRESS_PAYPAL_TIMEOUT" default:"15s"`
}

func (p PayPalConfig) validate() error {
	if _, err := url.Parse(p.CheckoutURL); err != nil {
		return fmt.Errorf("invalid paypal checkout url: %w", err)
	}
	return nil
}

// ExpressCompleteURL builds the buyer-facing URL for finishing a payment
// the provider flagged as requiring an extra redirect.
func (p PayPalConfig) ExpressCompleteURL(token string) string {
	return fmt.Sprintf("%s?cmd=_complete-express-checkout&token=%s", p.CheckoutURL, url.QueryEscape(token))
}

// ExpressConfig toggles the customized checkout behavior.
type ExpressConfig struct {
	CreateOrderBeforePay  bool `envconfig:"EXPRESS_CREATE_ORDER_BEFORE_PAY" default:"false"`
	SkipOrderReviewStep   bool `envconfig:"EXPRESS_SKIP_ORDER_REVIEW_STEP" default:"true"`
	RequireBillingAddress bool `envconfig:"EXPRESS_REQUIRE_BILLING_ADDRESS" default:"false"`
}
