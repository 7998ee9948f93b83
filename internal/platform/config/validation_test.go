package config

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "postage-service",
			Version:     "1.0.0",
			Environment: "test",
			Locale:      "en",
		},
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  5 * time.Second,
			MaxRequestSize:  1 << 20,
		},
		Log: LogConfig{Level: "info", Format: "json"},
		Client: ClientConfig{
			Timeout: 5 * time.Second,
			Retry: RetryConfig{
				MaxAttempts:     3,
				InitialInterval: 100 * time.Millisecond,
				MaxInterval:     2 * time.Second,
				Multiplier:      2.0,
				JitterFactor:    0.25,
			},
			CircuitBreaker: CircuitBreakerConfig{MaxFailures: 5, Timeout: 30 * time.Second, HalfOpenLimit: 3},
			Transport:      TransportConfig{MaxIdleConns: 100, MaxIdleConnsPerHost: 10, IdleConnTimeout: 90 * time.Second},
		},
		Postage: PostageConfig{Concurrency: 4, ModuleTimeout: 3 * time.Second, CacheTTL: time.Minute},
		Delivery: DeliveryConfig{
			FlatRate: FlatRateConfig{
				Enabled:   true,
				Code:      "flat-rate",
				FreeAbove: "100",
				TaxRate:   "0.20",
				Rules:     []RateRuleConfig{{Name: "standard", Amount: "4.90", DeliveryDays: 3}},
			},
		},
	}
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_Fields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		path    string
		message string
	}{
		{"missing app name", func(c *Config) { c.App.Name = "" }, "app.name", "is required"},
		{"unknown environment", func(c *Config) { c.App.Environment = "staging" }, "app.environment", "must be one of"},
		{"unsupported locale", func(c *Config) { c.App.Locale = "de" }, "app.locale", "must be one of: en fr"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port", "at most 65535"},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level", "must be one of"},
		{"log file without path", func(c *Config) { c.Log.File = LogFileConfig{Enabled: true} }, "log.file.path", "required when"},
		{"telemetry without endpoint", func(c *Config) {
			c.Telemetry = TelemetryConfig{Enabled: true, ServiceName: "postage"}
		}, "telemetry.endpoint", "required when"},
		{"sampling rate above one", func(c *Config) { c.Telemetry.SamplingRate = 1.5 }, "telemetry.sampling_rate", "at most 1"},
		{"multiplier too low", func(c *Config) { c.Client.Retry.Multiplier = 1.0 }, "client.retry.multiplier", "at least 1.1"},
		{"breaker failures zero", func(c *Config) { c.Client.CircuitBreaker.MaxFailures = 0 }, "client.circuit_breaker.max_failures", "is required"},
		{"zero concurrency", func(c *Config) { c.Postage.Concurrency = 0 }, "postage.concurrency", "is required"},
		{"module timeout too short", func(c *Config) { c.Postage.ModuleTimeout = time.Millisecond }, "postage.module_timeout", "at least 10ms"},
		{"free above not a number", func(c *Config) { c.Delivery.FlatRate.FreeAbove = "lots" }, "delivery.flat_rate.free_above", "decimal number"},
		{"rule without amount", func(c *Config) { c.Delivery.FlatRate.Rules[0].Amount = "" }, "delivery.flat_rate.rules[0].amount", "is required"},
		{"rule with bad country", func(c *Config) {
			c.Delivery.FlatRate.Rules[0].Countries = []string{"FRA"}
		}, "delivery.flat_rate.rules[0].countries[0]", "exactly 2 characters"},
		{"carrier without base url", func(c *Config) {
			c.Delivery.Carrier = CarrierConfig{Enabled: true, Code: "carrier"}
		}, "delivery.carrier.base_url", "required when"},
		{"carrier with bad url", func(c *Config) {
			c.Delivery.Carrier = CarrierConfig{Enabled: true, Code: "carrier", BaseURL: "not a url"}
		}, "delivery.carrier.base_url", "valid URL"},
		{"redis without address", func(c *Config) { c.Cache.Redis = RedisConfig{Enabled: true} }, "cache.redis.addr", "required when"},
		{"kafka without topic", func(c *Config) {
			c.Events.Kafka = KafkaConfig{Enabled: true, Brokers: []string{"localhost:9092"}}
		}, "events.kafka.topic", "required when"},
		{"database without dsn", func(c *Config) { c.Database.Enabled = true }, "database.dsn", "required when"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.path)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestConfig_Validate_NoDeliveryModule(t *testing.T) {
	cfg := validConfig()
	cfg.Delivery.FlatRate.Enabled = false

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrNoDeliveryModule)
}

func TestConfig_Validate_LogLevels(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Log.Level = level
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := &Config{
		App:    AppConfig{Environment: "invalid"},
		Server: ServerConfig{Port: -1},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.name")
	assert.Contains(t, err.Error(), "app.version")
}

func TestFormatFieldPath(t *testing.T) {
	tests := []struct {
		namespace string
		expected  string
	}{
		{"Config.server.port", "server.port"},
		{"Config.delivery.flat_rate.rules[1].amount", "delivery.flat_rate.rules[1].amount"},
		{"Config.client.retry.max_attempts", "client.retry.max_attempts"},
		{"Port", "port"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.namespace), func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFieldPath(tt.namespace))
		})
	}
}
