// Package config loads storefront settings from defaults, an optional
// config file and OJA_ prefixed environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/nikolayk812/oja-market/internal/checkout"
	"github.com/nikolayk812/oja-market/internal/domain"
	"github.com/nikolayk812/oja-market/internal/orderclient"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

const EnvPrefix = "OJA"

const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

type Config struct {
	Pricing      Pricing      `mapstructure:"pricing"`
	Currency     Currency     `mapstructure:"currency"`
	Storage      Storage      `mapstructure:"storage"`
	Redis        Redis        `mapstructure:"redis"`
	Postgres     Postgres     `mapstructure:"postgres"`
	OrderService OrderService `mapstructure:"order_service"`
	Checkout     Checkout     `mapstructure:"checkout"`
	HTTP         HTTP         `mapstructure:"http"`
	Log          Log          `mapstructure:"log"`
}

type Pricing struct {
	FreeShippingThreshold float64 `mapstructure:"free_shipping_threshold"`
	FlatShippingFee       float64 `mapstructure:"flat_shipping_fee"`
	TaxRate               float64 `mapstructure:"tax_rate"`
}

type Currency struct {
	Code   string `mapstructure:"code"`
	Symbol string `mapstructure:"symbol"`
	Locale string `mapstructure:"locale"`
}

type Storage struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
	Key     string `mapstructure:"key"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// Postgres backs the document store. An empty DSN keeps documents in memory.
type Postgres struct {
	DSN     string `mapstructure:"dsn"`
	Migrate bool   `mapstructure:"migrate"`
}

type OrderService struct {
	Addr     string `mapstructure:"addr"`
	Embedded bool   `mapstructure:"embedded"`
	// BreakerFailures is the number of consecutive transport failures that
	// opens the breaker; 0 disables it.
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
}

type Checkout struct {
	LoginPath          string        `mapstructure:"login_path"`
	CartPath           string        `mapstructure:"cart_path"`
	ConfirmationPath   string        `mapstructure:"confirmation_path"`
	LoginRedirectDelay time.Duration `mapstructure:"login_redirect_delay"`
	ConfirmationDelay  time.Duration `mapstructure:"confirmation_delay"`
	RequireTerms       bool          `mapstructure:"require_terms"`
}

type HTTP struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads path when it is not empty. Environment variables override the
// file, e.g. OJA_PRICING_TAX_RATE for pricing.tax_rate.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("v.ReadInConfig: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("v.Unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("cfg.Validate: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	pricing := domain.DefaultTotalsConfig()
	v.SetDefault("pricing.free_shipping_threshold", pricing.FreeShippingThreshold.InexactFloat64())
	v.SetDefault("pricing.flat_shipping_fee", pricing.FlatShippingFee.InexactFloat64())
	v.SetDefault("pricing.tax_rate", pricing.TaxRate.InexactFloat64())

	v.SetDefault("currency.code", "NGN")
	v.SetDefault("currency.symbol", "₦")
	v.SetDefault("currency.locale", "en-NG")

	v.SetDefault("storage.backend", StorageFile)
	v.SetDefault("storage.path", "data/profile")
	v.SetDefault("storage.key", "cart")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "oja")

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.migrate", true)

	v.SetDefault("order_service.addr", "localhost:9090")
	v.SetDefault("order_service.embedded", true)
	v.SetDefault("order_service.breaker_failures", 5)
	v.SetDefault("order_service.breaker_timeout", 30*time.Second)

	co := checkout.DefaultConfig()
	v.SetDefault("checkout.login_path", co.LoginPath)
	v.SetDefault("checkout.cart_path", co.CartPath)
	v.SetDefault("checkout.confirmation_path", co.ConfirmationPath)
	v.SetDefault("checkout.login_redirect_delay", co.LoginRedirectDelay)
	v.SetDefault("checkout.confirmation_delay", co.ConfirmationDelay)
	v.SetDefault("checkout.require_terms", co.RequireTerms)

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func (c Config) Validate() error {
	if c.Pricing.FreeShippingThreshold < 0 {
		return fmt.Errorf("pricing.free_shipping_threshold[%v] must not be negative", c.Pricing.FreeShippingThreshold)
	}
	if c.Pricing.FlatShippingFee < 0 {
		return fmt.Errorf("pricing.flat_shipping_fee[%v] must not be negative", c.Pricing.FlatShippingFee)
	}
	if c.Pricing.TaxRate < 0 || c.Pricing.TaxRate >= 1 {
		return fmt.Errorf("pricing.tax_rate[%v] must be in [0, 1)", c.Pricing.TaxRate)
	}

	if _, err := currency.ParseISO(c.Currency.Code); err != nil {
		return fmt.Errorf("currency.code[%s] is not valid: %w", c.Currency.Code, err)
	}
	if _, err := language.Parse(c.Currency.Locale); err != nil {
		return fmt.Errorf("currency.locale[%s] is not valid: %w", c.Currency.Locale, err)
	}

	switch c.Storage.Backend {
	case StorageFile:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is empty")
		}
	case StorageRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is empty")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("storage.backend[%s] is not supported", c.Storage.Backend)
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("storage.key is empty")
	}

	if c.OrderService.Addr == "" {
		return fmt.Errorf("order_service.addr is empty")
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is empty")
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level[%s] is not valid: %w", c.Log.Level, err)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("log.format[%s] is not supported", c.Log.Format)
	}

	return nil
}

func (p Pricing) TotalsConfig() domain.TotalsConfig {
	return domain.TotalsConfig{
		FreeShippingThreshold: decimal.NewFromFloat(p.FreeShippingThreshold),
		FlatShippingFee:       decimal.NewFromFloat(p.FlatShippingFee),
		TaxRate:               decimal.NewFromFloat(p.TaxRate),
	}
}

func (c Checkout) OrchestratorConfig() checkout.Config {
	return checkout.Config{
		LoginPath:          c.LoginPath,
		CartPath:           c.CartPath,
		ConfirmationPath:   c.ConfirmationPath,
		LoginRedirectDelay: c.LoginRedirectDelay,
		ConfirmationDelay:  c.ConfirmationDelay,
		RequireTerms:       c.RequireTerms,
	}
}

func (o OrderService) BreakerConfig() orderclient.BreakerConfig {
	return orderclient.BreakerConfig{
		ConsecutiveFailures: o.BreakerFailures,
		OpenTimeout:         o.BreakerTimeout,
	}
}
