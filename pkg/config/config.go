// Package config loads TOML configuration with APP_ environment overrides and validates it.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration of the pricing service.
type Config struct {
	// service name, used for metrics namespacing and logs
	ServiceName string `mapstructure:"service_name"`
	Version     string `mapstructure:"version"`
	// dev, staging, prod
	Environment string `mapstructure:"environment"`

	HTTP      HTTPConfig      `mapstructure:"http"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	Catalog CatalogConfig `mapstructure:"catalog"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Pricing PricingConfig `mapstructure:"pricing"`
	Reindex ReindexConfig `mapstructure:"reindex"`
}

// HTTPConfig HTTP server settings
type HTTPConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// DatabaseConfig host product storage settings
type DatabaseConfig struct {
	// mysql is the only supported driver
	Driver             string `mapstructure:"driver"`
	DSN                string `mapstructure:"dsn"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime    int    `mapstructure:"conn_max_lifetime"`
	LogEnabled         bool   `mapstructure:"log_enabled"`
	SlowQueryThreshold int    `mapstructure:"slow_query_threshold"`
	AutoMigrate        bool   `mapstructure:"auto_migrate"`
}

// RedisConfig Redis connection settings
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	MaxPoolSize  int    `mapstructure:"max_pool_size"`
	ConnTimeout  int    `mapstructure:"conn_timeout"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// KafkaConfig event publishing settings. An empty broker list disables publishing.
type KafkaConfig struct {
	Brokers      []string `mapstructure:"brokers"`
	Topic        string   `mapstructure:"topic"`
	MaxRetries   int      `mapstructure:"max_retries"`
	RetryBackoff int      `mapstructure:"retry_backoff"`
}

// LoggerConfig logging settings. An empty File logs JSON to stdout.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// MetricsConfig Prometheus settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// RateLimitConfig limits applied to the admin routes
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`
	QPS     int  `mapstructure:"qps"`
	Burst   int  `mapstructure:"burst"`
}

// CatalogConfig remote pricing catalog settings
type CatalogConfig struct {
	TenantAlias    string `mapstructure:"tenant_alias"`
	APIToken       string `mapstructure:"api_token"`
	SalesChannel   string `mapstructure:"sales_channel"`
	ProviderDomain string `mapstructure:"provider_domain"`
	// BaseURL overrides https://{tenant_alias}.{provider_domain}
	BaseURL          string `mapstructure:"base_url"`
	Currency         string `mapstructure:"currency"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
	UserAgentVersion string `mapstructure:"user_agent_version"`
	// consecutive failures before the breaker opens
	BreakerFailures         int `mapstructure:"breaker_failures"`
	BreakerOpenSeconds      int `mapstructure:"breaker_open_seconds"`
	BreakerHalfOpenRequests int `mapstructure:"breaker_half_open_requests"`
}

// CacheConfig two-tier snapshot cache settings
type CacheConfig struct {
	// redis or memory
	Driver              string `mapstructure:"driver"`
	PrimaryTTLSeconds   int    `mapstructure:"primary_ttl_seconds"`
	SecondaryTTLSeconds int    `mapstructure:"secondary_ttl_seconds"`
	MemorySize          int    `mapstructure:"memory_size"`
}

// PricingConfig storefront display and surcharge settings
type PricingConfig struct {
	LowPriceLabel        string   `mapstructure:"low_price_label"`
	ShowBuyPrice         bool     `mapstructure:"show_buy_price"`
	BuyPriceLabel        string   `mapstructure:"buy_price_label"`
	ShowTieredPricing    bool     `mapstructure:"show_tiered_pricing"`
	CheckLabel           string   `mapstructure:"check_label"`
	ShowCardPrice        bool     `mapstructure:"show_card_price"`
	CardLabel            string   `mapstructure:"card_label"`
	CardSurchargePercent string   `mapstructure:"card_surcharge_percent"`
	FeeExemptMethods     []string `mapstructure:"fee_exempt_methods"`
	FeeLabel             string   `mapstructure:"fee_label"`
}

// ReindexConfig periodic price reindex settings
type ReindexConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	IntervalMinutes int      `mapstructure:"interval_minutes"`
	PageSize        int      `mapstructure:"page_size"`
	Statuses        []string `mapstructure:"statuses"`
}

// DefaultFeeExemptMethods payment methods that never carry the card surcharge.
var DefaultFeeExemptMethods = []string{
	"cod", "cheque", "bacs",
	"stripe_ach", "stripe_bacs_debit", "stripe_acss_debit",
	"stripe_au_becs_debit", "stripe_us_bank_account", "stripe_oxxo",
	"stripe_konbini", "stripe_customer_balance", "coinbase_commerce_gateway",
}

const minPrimaryTTLSeconds = 10

// Load reads the TOML file at configPath, applies defaults and APP_* environment overrides.
// A missing file is not an error; defaults and the environment still apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			if _, statErr := os.Stat(configPath); statErr == nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration and normalises values that have a floor.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if c.Environment == "" {
		c.Environment = "dev"
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTP.Port)
	}
	switch c.Cache.Driver {
	case "redis", "memory":
	default:
		return fmt.Errorf("unsupported cache driver: %s", c.Cache.Driver)
	}
	if c.Catalog.BaseURL == "" && c.Catalog.TenantAlias == "" {
		return fmt.Errorf("catalog.tenant_alias is required when catalog.base_url is not set")
	}
	if c.Catalog.Currency == "" {
		return fmt.Errorf("catalog.currency is required")
	}
	if c.Catalog.TimeoutSeconds <= 0 {
		return fmt.Errorf("invalid catalog timeout: %d", c.Catalog.TimeoutSeconds)
	}
	if c.Cache.PrimaryTTLSeconds < minPrimaryTTLSeconds {
		c.Cache.PrimaryTTLSeconds = minPrimaryTTLSeconds
	}
	if c.Cache.SecondaryTTLSeconds < c.Cache.PrimaryTTLSeconds {
		return fmt.Errorf("cache.secondary_ttl_seconds (%d) must not be shorter than the primary ttl (%d)",
			c.Cache.SecondaryTTLSeconds, c.Cache.PrimaryTTLSeconds)
	}
	if c.Reindex.IntervalMinutes <= 0 {
		c.Reindex.IntervalMinutes = 10
	}
	if c.Reindex.PageSize <= 0 {
		c.Reindex.PageSize = 500
	}
	if len(c.Pricing.FeeExemptMethods) == 0 {
		c.Pricing.FeeExemptMethods = DefaultFeeExemptMethods
	}
	return nil
}

// CatalogBaseURL returns the configured override or https://{tenant}.{provider}.
func (c CatalogConfig) CatalogBaseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return fmt.Sprintf("https://%s.%s", c.TenantAlias, c.ProviderDomain)
}

// Timeout remote request timeout; also the stampede marker ttl.
func (c CatalogConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PrimaryTTL short-lived snapshot ttl.
func (c CacheConfig) PrimaryTTL() time.Duration {
	return time.Duration(c.PrimaryTTLSeconds) * time.Second
}

// SecondaryTTL long-lived fallback snapshot ttl.
func (c CacheConfig) SecondaryTTL() time.Duration {
	return time.Duration(c.SecondaryTTLSeconds) * time.Second
}

// Interval time between reindex runs.
func (c ReindexConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "catalogpricing")
	v.SetDefault("version", "3.0.8")
	v.SetDefault("environment", "dev")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 30)
	v.SetDefault("http.write_timeout", 30)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 300)
	v.SetDefault("database.log_enabled", false)
	v.SetDefault("database.slow_query_threshold", 1000)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.max_pool_size", 10)
	v.SetDefault("redis.conn_timeout", 5)
	v.SetDefault("redis.read_timeout", 3)
	v.SetDefault("redis.write_timeout", 3)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "product.price.reindexed")
	v.SetDefault("kafka.max_retries", 3)
	v.SetDefault("kafka.retry_backoff", 100)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 10)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.qps", 5)
	v.SetDefault("rate_limit.burst", 10)

	v.SetDefault("catalog.tenant_alias", "")
	v.SetDefault("catalog.api_token", "")
	v.SetDefault("catalog.sales_channel", "")
	v.SetDefault("catalog.base_url", "")
	v.SetDefault("catalog.provider_domain", "nfusioncatalog.com")
	v.SetDefault("catalog.currency", "USD")
	v.SetDefault("catalog.timeout_seconds", 2)
	v.SetDefault("catalog.user_agent_version", "3.0.8")
	v.SetDefault("catalog.breaker_failures", 5)
	v.SetDefault("catalog.breaker_open_seconds", 30)
	v.SetDefault("catalog.breaker_half_open_requests", 1)

	v.SetDefault("cache.driver", "redis")
	v.SetDefault("cache.primary_ttl_seconds", 60)
	v.SetDefault("cache.secondary_ttl_seconds", 3600)
	v.SetDefault("cache.memory_size", 64)

	v.SetDefault("pricing.low_price_label", "As low as")
	v.SetDefault("pricing.show_buy_price", false)
	v.SetDefault("pricing.buy_price_label", "We buy at")
	v.SetDefault("pricing.show_tiered_pricing", false)
	v.SetDefault("pricing.check_label", "Check")
	v.SetDefault("pricing.show_card_price", false)
	v.SetDefault("pricing.card_label", "Card")
	v.SetDefault("pricing.card_surcharge_percent", "")
	v.SetDefault("pricing.fee_exempt_methods", DefaultFeeExemptMethods)
	v.SetDefault("pricing.fee_label", "Payment Processing Fee")

	v.SetDefault("reindex.enabled", false)
	v.SetDefault("reindex.interval_minutes", 10)
	v.SetDefault("reindex.page_size", 500)
	v.SetDefault("reindex.statuses", []string{"draft", "pending", "private", "publish"})
}

// GetEnv returns the environment variable or defaultValue when unset.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
