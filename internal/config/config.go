package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/aaravmahajanofficial/storefront-checkout/pkg/money"
	"github.com/ilyakaznacheev/cleanenv"
)

type HTTPServer struct {
	Addr string `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
}

type Database struct {
	Host            string        `yaml:"PG_HOST" env:"PG_HOST" env-default:"localhost"`
	Port            string        `yaml:"PG_PORT" env:"PG_PORT" env-default:"5432"`
	User            string        `yaml:"PG_USER" env:"PG_USER" env-required:"true"`
	Password        string        `yaml:"PG_PASSWORD" env:"PG_PASSWORD" env-required:"true"`
	Name            string        `yaml:"PG_DBNAME" env:"PG_DBNAME" env-required:"true"`
	SSLMode         string        `yaml:"PG_SSLMODE" env:"PG_SSLMODE" env-default:"require"`
	MaxOpenConns    int           `yaml:"MAX_OPEN_CONNS" env:"PG_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns    int           `yaml:"MAX_IDLE_CONNS" env:"PG_MAX_IDLE_CONNS" env-default:"25"`
	ConnMaxLifetime time.Duration `yaml:"CONN_MAX_LIFETIME" env:"PG_CONN_MAX_LIFETIME" env-default:"5m"`
	ConnMaxIdleTime time.Duration `yaml:"CONN_MAX_IDLE_TIME" env:"PG_CONN_MAX_IDLE_TIME" env-default:"1m"`
}

type RedisConnect struct {
	Host     string `yaml:"REDIS_HOST" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"REDIS_PORT" env:"REDIS_PORT" env-default:"6379"`
	Username string `yaml:"REDIS_USER" env:"REDIS_USER"`
	Password string `yaml:"REDIS_PASSWORD" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"REDIS_DB" env:"REDIS_DB" env-default:"0"`
}

// RateConfig bounds how many checkouts a user may start per window.
type RateConfig struct {
	MaxAttempts int64         `yaml:"MAX_ATTEMPTS" env:"MAX_ATTEMPTS" env-default:"5"`
	WindowSize  time.Duration `yaml:"WINDOW_SIZE" env:"WINDOW_SIZE" env-default:"1m"`
}

type Security struct {
	JWTKey string `yaml:"JWT_KEY" env:"JWT_KEY" env-required:"true"`
}

type CacheConfig struct {
	DefaultTTL time.Duration `yaml:"default_ttl" env:"CACHE_DEFAULT_TTL" env-default:"5m"`
}

// Wallet holds the credentials of the wallet (redirect) gateway.
type Wallet struct {
	Endpoint    string `yaml:"WALLET_ENDPOINT" env:"WALLET_ENDPOINT" env-required:"true"`
	PartnerCode string `yaml:"WALLET_PARTNER_CODE" env:"WALLET_PARTNER_CODE" env-required:"true"`
	AccessKey   string `yaml:"WALLET_ACCESS_KEY" env:"WALLET_ACCESS_KEY" env-required:"true"`
	SecretKey   string `yaml:"WALLET_SECRET_KEY" env:"WALLET_SECRET_KEY" env-required:"true"`
	RedirectURL string `yaml:"WALLET_REDIRECT_URL" env:"WALLET_REDIRECT_URL" env-required:"true"`
	NotifyURL   string `yaml:"WALLET_NOTIFY_URL" env:"WALLET_NOTIFY_URL" env-required:"true"`
	OrderInfo   string `yaml:"WALLET_ORDER_INFO" env:"WALLET_ORDER_INFO" env-default:"Storefront order"`
	Lang        string `yaml:"WALLET_LANG" env:"WALLET_LANG" env-default:"en"`
	Currency    string `yaml:"WALLET_CURRENCY" env:"WALLET_CURRENCY"`
}

// PayPal holds the OAuth intent gateway settings.
type PayPal struct {
	BaseURL      string `yaml:"PAYPAL_BASE_URL" env:"PAYPAL_BASE_URL" env-default:"https://api-m.sandbox.paypal.com"`
	ClientID     string `yaml:"PAYPAL_CLIENT_ID" env:"PAYPAL_CLIENT_ID" env-required:"true"`
	ClientSecret string `yaml:"PAYPAL_CLIENT_SECRET" env:"PAYPAL_CLIENT_SECRET" env-required:"true"`
	ReturnURL    string `yaml:"PAYPAL_RETURN_URL" env:"PAYPAL_RETURN_URL" env-required:"true"`
	CancelURL    string `yaml:"PAYPAL_CANCEL_URL" env:"PAYPAL_CANCEL_URL" env-required:"true"`
	Currency     string `yaml:"PAYPAL_CURRENCY" env:"PAYPAL_CURRENCY"`
}

type Stripe struct {
	APIKey        string `yaml:"STRIPE_API_KEY" env:"STRIPE_API_KEY" env-default:""`
	WebhookSecret string `yaml:"STRIPE_WEBHOOK_SECRET" env:"STRIPE_WEBHOOK_SECRET" env-default:""`
	Currency      string `yaml:"STRIPE_CURRENCY" env:"STRIPE_CURRENCY"`
}

type SendGrid struct {
	APIKey    string `yaml:"API_KEY" env:"SENDGRID_API_KEY" env-default:""`
	FromEmail string `yaml:"FROM_EMAIL" env:"SENDGRID_FROM_EMAIL" env-default:"orders@example.com"`
	FromName  string `yaml:"FROM_NAME" env:"SENDGRID_FROM_NAME" env-default:"Storefront"`
}

type RabbitMQ struct {
	URL string `yaml:"RABBITMQ_URL" env:"RABBITMQ_URL" env-default:""`
}

type Otel struct {
	ServiceName      string  `yaml:"SERVICE_NAME" env:"OTEL_SERVICE_NAME" env-default:"storefront-checkout"`
	ExporterEndpoint string  `yaml:"EXPORTER_ENDPOINT" env:"OTEL_EXPORTER_ENDPOINT" env-default:""`
	SamplerRatio     float64 `yaml:"SAMPLER_RATIO" env:"OTEL_SAMPLER_RATIO" env-default:"1.0"`
}

type Checkout struct {
	RequestTimeout time.Duration `yaml:"request_timeout" env:"CHECKOUT_REQUEST_TIMEOUT" env-default:"10s"`
	PendingTTL     time.Duration `yaml:"pending_ttl" env:"CHECKOUT_PENDING_TTL" env-default:"30m"`
	CouponTimeZone string        `yaml:"coupon_time_zone" env:"CHECKOUT_COUPON_TIME_ZONE" env-default:"UTC"`
	// Currency every cart is priced and charged in. Provider currencies left
	// empty inherit it.
	Currency string `yaml:"currency" env:"CHECKOUT_CURRENCY" env-default:"VND"`
}

// walletCurrency is the only currency the wallet gateway settles in.
const walletCurrency = "VND"

type Config struct {
	Env          string `yaml:"env" env:"ENV" env-required:"true"`
	HTTPServer   `yaml:"http_server"`
	Database     Database     `yaml:"database"`
	RedisConnect RedisConnect `yaml:"redis"`
	RateConfig   RateConfig   `yaml:"rateConfig"`
	Security     Security     `yaml:"security"`
	Cache        CacheConfig  `yaml:"cache"`
	Wallet       Wallet       `yaml:"wallet"`
	PayPal       PayPal       `yaml:"paypal"`
	Stripe       Stripe       `yaml:"stripe"`
	SendGrid     SendGrid     `yaml:"sendgrid"`
	RabbitMQ     RabbitMQ     `yaml:"rabbitmq"`
	Otel         Otel         `yaml:"otel"`
	Checkout     Checkout     `yaml:"checkout"`
}

func MustLoad() *Config {

	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {

		flags := flag.String("config", "", "path to the YAML config file")

		flag.Parse()

		configPath = *flags

		if configPath == "" {
			log.Fatal("Config path is not set")
		}

	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	cfg, err := LoadConfigFromPath(configPath)
	if err != nil {
		log.Fatalf("can not read config file: %s", err.Error())
	}

	return cfg
}

// LoadConfigFromPath reads the YAML file and applies environment overrides.
func LoadConfigFromPath(configPath string) (*Config, error) {
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	if _, err := time.LoadLocation(cfg.Checkout.CouponTimeZone); err != nil {
		return nil, fmt.Errorf("invalid coupon time zone %q: %w", cfg.Checkout.CouponTimeZone, err)
	}

	if err := cfg.pinCurrencies(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// pinCurrencies makes every enabled provider charge in the store currency.
func (c *Config) pinCurrencies() error {
	store, err := money.Parse(c.Checkout.Currency)
	if err != nil {
		return fmt.Errorf("invalid checkout currency: %w", err)
	}

	c.Checkout.Currency = store.Code

	if !store.Same(walletCurrency) {
		return fmt.Errorf("wallet gateway only settles %s, checkout currency is %s", walletCurrency, store)
	}

	providers := []struct {
		name     string
		enabled  bool
		currency *string
	}{
		{"wallet", true, &c.Wallet.Currency},
		{"paypal", true, &c.PayPal.Currency},
		{"stripe", c.Stripe.APIKey != "", &c.Stripe.Currency},
	}

	for _, p := range providers {
		if !p.enabled {
			continue
		}

		if *p.currency != "" && !store.Same(*p.currency) {
			return fmt.Errorf("%s currency %s differs from checkout currency %s", p.name, *p.currency, store)
		}

		*p.currency = store.Code
	}

	return nil
}

func (d *Database) GetDSN() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

func (r *RedisConnect) GetDSN() string {
	return fmt.Sprintf("redis://%s:%s@%s:%s", r.Username, r.Password, r.Host, r.Port)
}

// StoreCurrency is the pinned checkout currency. LoadConfigFromPath has
// already validated it.
func (c *Checkout) StoreCurrency() money.Currency {
	cur, err := money.Parse(c.Currency)
	if err != nil {
		return money.MustParse(walletCurrency)
	}

	return cur
}

// Location returns the zone coupon validity dates are evaluated in.
func (c *Checkout) Location() *time.Location {
	loc, err := time.LoadLocation(c.CouponTimeZone)
	if err != nil {
		return time.UTC
	}

	return loc
}
