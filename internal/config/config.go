// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file
// when present), loads them into structured Go types and validates that
// required values are present so they can be reused across the
// application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional config blocks (e.g. observability).
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process environment before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the prefix ARTICLES_. The prefix is removed and
	the rest is lowercased; "." is the nesting delimiter, so

		ARTICLES_DATABASE.HOST        -> database.host        -> Config.Database.Host
		ARTICLES_SERVER.READ_TIMEOUT  -> server.read_timeout  -> Config.Server.ReadTimeout

	Underscores are part of key names and are never turned into dots.
*/

// EnvPrefix is the prefix every configuration variable must carry.
const EnvPrefix = "ARTICLES_"

// ServiceName is reported in logs and APM.
const ServiceName = "articles-api"

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
//
// Timeouts are whole seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	RequestTimeout     int      `koanf:"request_timeout" validate:"min=0"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// RateLimit is the sustained number of requests per second allowed per
	// client IP. Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit" validate:"min=0"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// RedisConfig contains Redis connection details.
//
// Address is "host:port". An empty address runs the service without Redis,
// which also disables background jobs.
type RedisConfig struct {
	Address string `koanf:"address"`
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

// IntegrationConfig holds credentials for third-party integrations.
//
// Article event notification emails are only sent when both ResendAPIKey
// and NotifyEmail are set.
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	NotifyEmail  string `koanf:"notify_email" validate:"omitempty,email"`
	FromEmail    string `koanf:"from_email" validate:"omitempty,email"`
}

// NotificationsEnabled reports whether article event emails can be sent.
func (i IntegrationConfig) NotificationsEnabled() bool {
	return i.ResendAPIKey != "" && i.NotifyEmail != ""
}

// defaults are loaded into koanf before the environment so any variable
// overrides them.
var defaults = map[string]any{
	"primary.env":                                         "development",
	"server.port":                                         "3000",
	"server.read_timeout":                                 30,
	"server.write_timeout":                                30,
	"server.idle_timeout":                                 60,
	"server.request_timeout":                              15,
	"server.cors_allowed_origins":                         []string{"*"},
	"server.rate_limit":                                   0,
	"database.host":                                       "localhost",
	"database.port":                                       5432,
	"database.ssl_mode":                                   "disable",
	"database.max_open_conns":                             25,
	"database.max_idle_conns":                             5,
	"database.conn_max_lifetime":                          300,
	"database.conn_max_idle_time":                         60,
	"integration.from_email":                              "articles@resend.dev",
	"observability.logging.level":                         "info",
	"observability.logging.format":                        "json",
	"observability.logging.slow_query_threshold":          "100ms",
	"observability.new_relic.app_log_forwarding_enabled":  true,
	"observability.new_relic.distributed_tracing_enabled": true,
	"observability.health_checks.enabled":                 true,
	"observability.health_checks.interval":                "30s",
	"observability.health_checks.timeout":                 "5s",
	"observability.health_checks.checks":                  []string{CheckDatabase, CheckRedis},
}

// LoadConfig loads configuration from environment variables, unmarshals it
// into Config, injects observability defaults, validates everything and
// returns the result.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("setting default %s: %w", key, err)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name and environment always come from the primary block so
	// logs and traces agree with each other.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// Redacted returns a copy of the config with secrets masked, safe to print.
func (c *Config) Redacted() Config {
	out := *c
	out.Database.Password = mask(out.Database.Password)
	out.Integration.ResendAPIKey = mask(out.Integration.ResendAPIKey)
	if c.Observability != nil {
		obs := *c.Observability
		obs.NewRelic.LicenseKey = mask(obs.NewRelic.LicenseKey)
		out.Observability = &obs
	}
	return out
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}
