// Package config loads the service configuration with koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	DefaultServerPort     = 8080
	DefaultMaxRequestSize = 1 << 20

	DefaultClientRetryMaxAttempts     = 3
	DefaultClientRetryMultiplier      = 2.0
	DefaultClientRetryJitterFactor    = 0.25
	DefaultClientCircuitMaxFailures   = 5
	DefaultClientCircuitHalfOpenLimit = 3

	DefaultTransportMaxIdleConns        = 100
	DefaultTransportMaxIdleConnsPerHost = 10

	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 3
	DefaultLogFileMaxAgeDays = 28

	// DefaultQuoteConcurrency bounds the modules quoted at once by a
	// multi-module quote.
	DefaultQuoteConcurrency = 4

	DefaultConfigDir = "configs"

	// EnvPrefix prefixes every environment override. Nested keys are
	// separated by a double underscore: APP_POSTAGE__CACHE_TTL.
	EnvPrefix = "APP_"
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Postage   PostageConfig   `koanf:"postage"   validate:"required"`
	Delivery  DeliveryConfig  `koanf:"delivery"`
	Cache     CacheConfig     `koanf:"cache"`
	Events    EventsConfig    `koanf:"events"`
	Database  DatabaseConfig  `koanf:"database"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`

	// Locale is the language of user facing messages when a request does
	// not ask for one.
	Locale string `koanf:"locale" validate:"required,oneof=en fr"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	RequestTimeout  time.Duration `koanf:"request_timeout"  validate:"required,min=100ms"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true"`
	Insecure     bool    `koanf:"insecure"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// ClientConfig contains HTTP client settings for the carrier rate API.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// RetryConfig contains retry settings for HTTP clients.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig contains circuit breaker settings for HTTP clients.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// TransportConfig contains HTTP transport pool settings.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"          validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"       validate:"required,min=1s"`
}

// PostageConfig tunes the quoting use case.
type PostageConfig struct {
	Concurrency   int           `koanf:"concurrency"    validate:"required,min=1,max=64"`
	ModuleTimeout time.Duration `koanf:"module_timeout" validate:"required,min=10ms"`
	CacheTTL      time.Duration `koanf:"cache_ttl"      validate:"min=0"`
}

// DeliveryConfig lists the delivery modules to register.
type DeliveryConfig struct {
	FlatRate FlatRateConfig `koanf:"flat_rate"`
	Pickup   PickupConfig   `koanf:"pickup"`
	Carrier  CarrierConfig  `koanf:"carrier"`
}

// FlatRateConfig configures the rule based flat rate module.
type FlatRateConfig struct {
	Enabled bool   `koanf:"enabled"`
	Code    string `koanf:"code"  validate:"required_if=Enabled true"`
	Title   string `koanf:"title"`

	// FreeAbove makes postage free once the cart total reaches it.
	FreeAbove string `koanf:"free_above" validate:"omitempty,numeric"`

	// TaxRate is the share of tax included in rule amounts, e.g. "0.20".
	TaxRate      string           `koanf:"tax_rate"       validate:"omitempty,numeric"`
	TaxRuleTitle string           `koanf:"tax_rule_title"`
	Rules        []RateRuleConfig `koanf:"rules"          validate:"required_if=Enabled true,dive"`
}

// RateRuleConfig is one flat rate rule. Rules are evaluated in order and
// the first match wins.
type RateRuleConfig struct {
	Name string `koanf:"name" validate:"required"`

	// Countries restricts the rule to ISO 3166-1 alpha-2 codes. Empty
	// matches every country.
	Countries []string `koanf:"countries" validate:"dive,len=2"`
	States    []string `koanf:"states"`

	// MaxWeight in kilograms, 0 for no limit.
	MaxWeight float64 `koanf:"max_weight" validate:"min=0"`

	// Condition is an optional CEL expression over country, state, weight,
	// total and items.
	Condition    string `koanf:"condition"`
	Amount       string `koanf:"amount"        validate:"required,numeric"`
	DeliveryDays int    `koanf:"delivery_days" validate:"min=0"`
}

// PickupConfig configures the in-store pickup module.
type PickupConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Code            string        `koanf:"code"             validate:"required_if=Enabled true"`
	Title           string        `koanf:"title"`
	Countries       []string      `koanf:"countries"        validate:"dive,len=2"`
	StoreName       string        `koanf:"store_name"`
	StoreAddress    string        `koanf:"store_address"`
	PreparationTime time.Duration `koanf:"preparation_time" validate:"min=0"`
}

// CarrierConfig configures the remote carrier rate module.
type CarrierConfig struct {
	Enabled bool   `koanf:"enabled"`
	Code    string `koanf:"code"     validate:"required_if=Enabled true"`
	Title   string `koanf:"title"`
	BaseURL string `koanf:"base_url" validate:"required_if=Enabled true,omitempty,url"`
	APIKey  string `koanf:"api_key"`
	Service string `koanf:"service"`

	// Countries restricts the module to these destinations. Empty means all.
	Countries []string `koanf:"countries" validate:"dive,len=2"`

	// MaxWeight in kilograms, 0 for no limit.
	MaxWeight float64 `koanf:"max_weight" validate:"min=0"`
}

// CacheConfig configures the quote cache.
type CacheConfig struct {
	Redis RedisConfig `koanf:"redis"`
}

// RedisConfig configures the Redis connection.
type RedisConfig struct {
	Enabled     bool          `koanf:"enabled"`
	Addr        string        `koanf:"addr"         validate:"required_if=Enabled true"`
	Password    string        `koanf:"password"`
	DB          int           `koanf:"db"           validate:"min=0"`
	DialTimeout time.Duration `koanf:"dial_timeout"`
	KeyPrefix   string        `koanf:"key_prefix"`
}

// EventsConfig configures quote event publishing.
type EventsConfig struct {
	Kafka KafkaConfig `koanf:"kafka"`
}

// KafkaConfig configures the Kafka writer.
type KafkaConfig struct {
	Enabled      bool          `koanf:"enabled"`
	Brokers      []string      `koanf:"brokers"       validate:"required_if=Enabled true"`
	Topic        string        `koanf:"topic"         validate:"required_if=Enabled true"`
	BatchTimeout time.Duration `koanf:"batch_timeout"`
}

// DatabaseConfig configures the quote archive.
type DatabaseConfig struct {
	Enabled         bool          `koanf:"enabled"`
	DSN             string        `koanf:"dsn"               validate:"required_if=Enabled true"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
	MaxOpenConns    int           `koanf:"max_open_conns"    validate:"min=0"`
	MaxIdleConns    int           `koanf:"max_idle_conns"    validate:"min=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

func defaults() map[string]any {
	return map[string]any{
		"app.name":        "postage-service",
		"app.version":     "dev",
		"app.environment": "local",
		"app.locale":      "en",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.request_timeout":  "10s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/postage-service.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "localhost:4317",
		"telemetry.insecure":      true,
		"telemetry.service_name":  "postage-service",
		"telemetry.sampling_rate": 1.0,

		"client.timeout":                           "5s",
		"client.retry.max_attempts":                DefaultClientRetryMaxAttempts,
		"client.retry.initial_interval":            "100ms",
		"client.retry.max_interval":                "2s",
		"client.retry.multiplier":                  DefaultClientRetryMultiplier,
		"client.retry.jitter_factor":               DefaultClientRetryJitterFactor,
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       "90s",

		"postage.concurrency":    DefaultQuoteConcurrency,
		"postage.module_timeout": "3s",
		"postage.cache_ttl":      "10m",

		"delivery.flat_rate.enabled":        true,
		"delivery.flat_rate.code":           "flat-rate",
		"delivery.flat_rate.title":          "Standard delivery",
		"delivery.flat_rate.free_above":     "100",
		"delivery.flat_rate.tax_rate":       "0.20",
		"delivery.flat_rate.tax_rule_title": "VAT 20%",
		"delivery.flat_rate.rules": []any{
			map[string]any{"name": "standard", "amount": "4.90", "delivery_days": 3},
		},

		"delivery.pickup.enabled":          false,
		"delivery.pickup.code":             "pickup",
		"delivery.pickup.title":            "Store pickup",
		"delivery.pickup.preparation_time": "2h",

		"delivery.carrier.enabled": false,
		"delivery.carrier.code":    "carrier",
		"delivery.carrier.title":   "Carrier express",

		"cache.redis.enabled":      false,
		"cache.redis.addr":         "localhost:6379",
		"cache.redis.dial_timeout": "2s",
		"cache.redis.key_prefix":   "postage:quote:",

		"events.kafka.enabled":       false,
		"events.kafka.topic":         "postage.quotes",
		"events.kafka.batch_timeout": "50ms",

		"database.enabled":           false,
		"database.auto_migrate":      false,
		"database.max_open_conns":    10,
		"database.max_idle_conns":    5,
		"database.conn_max_lifetime": "30m",
	}
}

// Load reads the configuration from DefaultConfigDir. See LoadFrom.
func Load(profile string) (*Config, error) {
	return LoadFrom(DefaultConfigDir, profile)
}

// LoadFrom loads configuration with the following precedence, highest first:
//  1. Environment variables (APP_ prefix, "__" between nested keys)
//  2. Profile file ({dir}/{profile}.yaml)
//  3. Base file ({dir}/base.yaml)
//  4. Default values
//
// Missing files are skipped.
func LoadFrom(dir, profile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if err := loadFileIfExists(k, filepath.Join(dir, "base.yaml")); err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	if profile != "" {
		if err := loadFileIfExists(k, filepath.Join(dir, profile+".yaml")); err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKey maps APP_DELIVERY__FLAT_RATE__FREE_ABOVE to delivery.flat_rate.free_above.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
