// Package config manages environment variables.
//
// It reads variables from the `.env` file, loads them into structured
// Go types, and validates that required values are present so they can
// be reused across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional config blocks (observability, jobs, token TTLs).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists, it gets loaded into the
	// process env before anything below reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

/*
	Env vars are read using the COFFEE_ prefix. Keys are lowercased with the
	prefix removed and nested struct fields are addressed with dots:

		COFFEE_SERVER.PORT            -> server.port            -> Config.Server.Port
		COFFEE_DATABASE.MAX_OPEN_CONNS -> database.max_open_conns -> Config.Database.MaxOpenConns
*/

// EnvPrefix is the prefix every configuration variable must carry.
const EnvPrefix = "COFFEE_"

// Config is the root configuration object for the application.
//
// Observability and Jobs are pointers because they are optional. If not
// provided, defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Jobs          *JobsConfig          `koanf:"jobs"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// AuthRateLimit is the sustained number of requests per second a single
	// client IP may send to the /auth endpoints. Zero disables the limiter.
	AuthRateLimit float64 `koanf:"auth_rate_limit"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// RedisConfig contains Redis connection details.
// Address is typically "host:port".
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// AuthConfig stores token signing secrets and lifetimes.
//
// AdminEmail/AdminPassword are optional; when both are set the serve and
// create-admin commands make sure an admin account exists.
type AuthConfig struct {
	SecretKey           string        `koanf:"secret_key" validate:"required,min=16"`
	AccessTokenTTL      time.Duration `koanf:"access_token_ttl"`
	RefreshTokenTTL     time.Duration `koanf:"refresh_token_ttl"`
	VerificationCodeTTL time.Duration `koanf:"verification_code_ttl"`
	AdminEmail          string        `koanf:"admin_email" validate:"omitempty,email"`
	AdminPassword       string        `koanf:"admin_password"`
}

// IntegrationConfig holds credentials for third-party services.
// An empty ResendAPIKey turns outgoing email into a logged no-op.
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	FromEmail    string `koanf:"from_email"`
}

// JobsConfig controls the scheduled maintenance jobs.
type JobsConfig struct {
	UnverifiedUserTTL   time.Duration `koanf:"unverified_user_ttl" validate:"min=1h"`
	AbandonedOrderTTL   time.Duration `koanf:"abandoned_order_ttl" validate:"min=1h"`
	CleanUnverifiedCron string        `koanf:"clean_unverified_cron" validate:"required"`
	CancelAbandonedCron string        `koanf:"cancel_abandoned_cron" validate:"required"`
}

// DefaultJobsConfig returns the schedule used when no jobs block is configured:
// purge unverified accounts nightly, sweep stale orders hourly.
func DefaultJobsConfig() *JobsConfig {
	return &JobsConfig{
		UnverifiedUserTTL:   7 * 24 * time.Hour,
		AbandonedOrderTTL:   72 * time.Hour,
		CleanUnverifiedCron: "0 0 * * *",
		CancelAbandonedCron: "0 * * * *",
	}
}

// Validate checks the cron expressions, which struct tags cannot express.
func (j *JobsConfig) Validate() error {
	if _, err := cron.ParseStandard(j.CleanUnverifiedCron); err != nil {
		return fmt.Errorf("invalid clean_unverified_cron %q: %w", j.CleanUnverifiedCron, err)
	}
	if _, err := cron.ParseStandard(j.CancelAbandonedCron); err != nil {
		return fmt.Errorf("invalid cancel_abandoned_cron %q: %w", j.CancelAbandonedCron, err)
	}
	return nil
}

// applyDefaults fills optional values that were left empty.
func (c *Config) applyDefaults() {
	if c.Auth.AccessTokenTTL == 0 {
		c.Auth.AccessTokenTTL = 30 * time.Minute
	}
	if c.Auth.RefreshTokenTTL == 0 {
		c.Auth.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	if c.Auth.VerificationCodeTTL == 0 {
		c.Auth.VerificationCodeTTL = 24 * time.Hour
	}
	if c.Integration.FromEmail == "" {
		c.Integration.FromEmail = "Coffee Shop <onboarding@resend.dev>"
	}
	if c.Jobs == nil {
		c.Jobs = DefaultJobsConfig()
	}
	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}

	// Service name is fixed, environment always follows primary.env so logs
	// and traces agree on both.
	c.Observability.ServiceName = "coffee"
	c.Observability.Environment = c.Primary.Env
}

// Load reads the configuration from the environment and returns it, or the
// first error encountered while unmarshalling or validating.
func Load() (*Config, error) {
	k := koanf.New(".")

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

	mainConfig.applyDefaults()

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.Jobs.Validate(); err != nil {
		return nil, err
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// LoadConfig is Load for process entry points: any failure is logged and the
// process exits.
func LoadConfig() *Config {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Could not load configuration.")
	}

	return cfg
}
