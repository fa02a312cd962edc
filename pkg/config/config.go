package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Session   SessionConfig
	Records   RecordsConfig
	Email     EmailConfig
	Resend    ResendConfig
	Pricing   PricingConfig
	Checkout  CheckoutConfig
	Admin     AdminConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Records.UsesLocalStore() {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ARTISAN_APP_ENV" required:"true"`
	Port         string `envconfig:"ARTISAN_APP_PORT" default:"8080"`
	ServiceName  string `envconfig:"ARTISAN_SERVICE_NAME" default:"artisan-storefront"`
	LogLevel     string `envconfig:"ARTISAN_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"ARTISAN_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"ARTISAN_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"ARTISAN_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	// Driver is postgres or sqlite.
	Driver string `envconfig:"ARTISAN_DB_DRIVER" default:"postgres"`
	DSN    string `envconfig:"ARTISAN_DB_DSN"`

	Host     string `envconfig:"ARTISAN_DB_HOST"`
	Port     int    `envconfig:"ARTISAN_DB_PORT" default:"5432"`
	User     string `envconfig:"ARTISAN_DB_USER"`
	Password string `envconfig:"ARTISAN_DB_PASSWORD"`
	Name     string `envconfig:"ARTISAN_DB_NAME"`
	SSLMode  string `envconfig:"ARTISAN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ARTISAN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ARTISAN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ARTISAN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ARTISAN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, "sqlite")
}

type RedisConfig struct {
	URL          string        `envconfig:"ARTISAN_REDIS_URL" required:"true"`
	Password     string        `envconfig:"ARTISAN_REDIS_PASSWORD"`
	PoolSize     int           `envconfig:"ARTISAN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ARTISAN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ARTISAN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ARTISAN_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"ARTISAN_REDIS_WRITE_TIMEOUT" default:"3s"`
	KeyPrefix    string        `envconfig:"ARTISAN_REDIS_KEY_PREFIX" default:"artisan"`
}

type SessionConfig struct {
	Secret string        `envconfig:"ARTISAN_SESSION_SECRET" required:"true"`
	Issuer string        `envconfig:"ARTISAN_SESSION_ISSUER" default:"artisan-market"`
	TTL    time.Duration `envconfig:"ARTISAN_SESSION_TTL" default:"720h"`
}

const (
	RecordsBackendRemote = "remote"
	RecordsBackendLocal  = "local"
)

type RecordsConfig struct {
	// Backend selects the record CRUD service (remote) or local tables (local).
	Backend string        `envconfig:"ARTISAN_RECORDS_BACKEND" default:"local"`
	BaseURL string        `envconfig:"ARTISAN_RECORDS_BASE_URL"`
	APIKey  string        `envconfig:"ARTISAN_RECORDS_API_KEY"`
	Timeout time.Duration `envconfig:"ARTISAN_RECORDS_TIMEOUT" default:"10s"`
}

func (r RecordsConfig) UsesLocalStore() bool {
	return !strings.EqualFold(r.Backend, RecordsBackendRemote)
}

type EmailConfig struct {
	// FunctionURL points at the order status email function. Empty means the
	// in-process function is invoked directly.
	FunctionURL string        `envconfig:"ARTISAN_EMAIL_FUNCTION_URL"`
	Timeout     time.Duration `envconfig:"ARTISAN_EMAIL_TIMEOUT" default:"10s"`
}

type ResendConfig struct {
	APIKey  string `envconfig:"ARTISAN_RESEND_API_KEY"`
	BaseURL string `envconfig:"ARTISAN_RESEND_BASE_URL" default:"https://api.resend.com"`
	From    string `envconfig:"ARTISAN_RESEND_FROM" default:"Artisan Market <orders@artisanmarket.com>"`
}

type PricingConfig struct {
	FreeShippingThreshold string `envconfig:"ARTISAN_PRICING_FREE_SHIPPING_THRESHOLD" default:"75"`
	ShippingFee           string `envconfig:"ARTISAN_PRICING_SHIPPING_FEE" default:"9.99"`
	TaxRate               string `envconfig:"ARTISAN_PRICING_TAX_RATE" default:"0.08"`
}

// Decimals parses the pricing settings. Load has already validated them.
func (p PricingConfig) Decimals() (threshold, fee, rate decimal.Decimal) {
	threshold, _ = decimal.NewFromString(p.FreeShippingThreshold)
	fee, _ = decimal.NewFromString(p.ShippingFee)
	rate, _ = decimal.NewFromString(p.TaxRate)
	return threshold, fee, rate
}

func (p PricingConfig) validate() error {
	values := map[string]string{
		EnvFreeShippingThreshold: p.FreeShippingThreshold,
		EnvShippingFee:           p.ShippingFee,
		EnvTaxRate:               p.TaxRate,
	}
	for key, raw := range values {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if v.IsNegative() {
			return fmt.Errorf("%s must not be negative", key)
		}
	}
	return nil
}

type CheckoutConfig struct {
	DraftTTL       time.Duration `envconfig:"ARTISAN_CHECKOUT_DRAFT_TTL" default:"24h"`
	SubmissionTTL  time.Duration `envconfig:"ARTISAN_CHECKOUT_SUBMISSION_TTL" default:"30s"`
	IdempotencyTTL time.Duration `envconfig:"ARTISAN_CHECKOUT_IDEMPOTENCY_TTL" default:"24h"`
	DeliveryDays   int           `envconfig:"ARTISAN_CHECKOUT_DELIVERY_DAYS" default:"7"`
	CartTTL        time.Duration `envconfig:"ARTISAN_CART_TTL" default:"720h"`
}

type AdminConfig struct {
	APIKey string `envconfig:"ARTISAN_ADMIN_API_KEY"`
}

type RateLimitConfig struct {
	Window           time.Duration `envconfig:"ARTISAN_RATE_LIMIT_WINDOW" default:"1m"`
	SessionIPLimit   int           `envconfig:"ARTISAN_RATE_LIMIT_SESSION_IP" default:"30"`
	ReviewIPLimit    int           `envconfig:"ARTISAN_RATE_LIMIT_REVIEW_IP" default:"20"`
	ReviewEmailLimit int           `envconfig:"ARTISAN_RATE_LIMIT_REVIEW_EMAIL" default:"5"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ARTISAN_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:artisan.db?_foreign_keys=on"
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range legacyDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
