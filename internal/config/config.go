package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Log      LogConfig
	Redis    RedisConfig
	Audit    AuditConfig
	Auth     AuthConfig
	Issuance IssuanceConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name           string
	Env            string
	Port           string
	AllowedOrigins string // comma-separated CORS origins
}

// DatabaseConfig holds database connection settings. URL wins over the
// individual fields when set.
type DatabaseConfig struct {
	Driver   string // postgres or memory
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
	MinConns int32
	Migrate  bool // apply pending migrations on startup
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// RedisConfig holds the audit stream connection.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	Stream   string
	MaxLen   int64
}

// AuditConfig sizes the asynchronous audit dispatcher.
type AuditConfig struct {
	BufferSize      int
	Workers         int
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// AuthConfig holds bearer token verification settings.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// IssuanceConfig holds the defaults applied to new goods issuances.
type IssuanceConfig struct {
	OrganizationalUnit string
	HandlingFeePerUnit int64
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Load loads configuration from .env, an optional config.toml and environment
// variables. Priority (highest to lowest):
// 1. Environment variables with DISTRO_ prefix (e.g., DISTRO_DATABASE_URL)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	// .env only fills variables that are not already set.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("DISTRO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),

			AllowedOrigins: v.GetString("app.allowed_origins"),
		},
		Database: DatabaseConfig{
			Driver:   v.GetString("database.driver"),
			URL:      v.GetString("database.url"),
			Host:     v.GetString("database.host"),
			Port:     v.GetInt("database.port"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			DBName:   v.GetString("database.dbname"),
			SSLMode:  v.GetString("database.sslmode"),
			MaxConns: v.GetInt32("database.max_conns"),
			MinConns: v.GetInt32("database.min_conns"),
			Migrate:  v.GetBool("database.migrate"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			Stream:   v.GetString("redis.stream"),
			MaxLen:   v.GetInt64("redis.max_len"),
		},
		Audit: AuditConfig{
			BufferSize:      v.GetInt("audit.buffer_size"),
			Workers:         v.GetInt("audit.workers"),
			WriteTimeout:    v.GetDuration("audit.write_timeout"),
			ShutdownTimeout: v.GetDuration("audit.shutdown_timeout"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			Issuer:    v.GetString("auth.issuer"),
		},
		Issuance: IssuanceConfig{
			OrganizationalUnit: v.GetString("issuance.organizational_unit"),
			HandlingFeePerUnit: v.GetInt64("issuance.handling_fee_per_unit"),
		},
	}

	// The fee may legitimately be configured as zero, so only fall back when
	// the key was never set.
	if !v.IsSet("issuance.handling_fee_per_unit") {
		cfg.Issuance.HandlingFeePerUnit = defaultHandlingFeePerUnit
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

const defaultHandlingFeePerUnit = 400

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "distribution-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverPostgres
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "distribution"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.Stream == "" {
		cfg.Redis.Stream = "distribution:audit"
	}
	if cfg.Redis.MaxLen == 0 {
		cfg.Redis.MaxLen = 100000
	}
	if cfg.Audit.BufferSize == 0 {
		cfg.Audit.BufferSize = 256
	}
	if cfg.Audit.Workers == 0 {
		cfg.Audit.Workers = 1
	}
	if cfg.Audit.WriteTimeout == 0 {
		cfg.Audit.WriteTimeout = 2 * time.Second
	}
	if cfg.Audit.ShutdownTimeout == 0 {
		cfg.Audit.ShutdownTimeout = 5 * time.Second
	}
	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = "distribution-backend"
	}
	if cfg.Issuance.OrganizationalUnit == "" {
		cfg.Issuance.OrganizationalUnit = "DST"
	}
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverMemory, c.Database.Driver)
	}
	if c.Database.MaxConns < 0 {
		return fmt.Errorf("database.max_conns cannot be negative")
	}
	if c.Database.MinConns < 0 {
		return fmt.Errorf("database.min_conns cannot be negative")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) cannot exceed database.max_conns (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}
	if c.Audit.BufferSize < 0 {
		return fmt.Errorf("audit.buffer_size cannot be negative")
	}
	if c.Audit.Workers < 0 {
		return fmt.Errorf("audit.workers cannot be negative")
	}
	if c.Issuance.HandlingFeePerUnit < 0 {
		return fmt.Errorf("issuance.handling_fee_per_unit cannot be negative")
	}
	if strings.ContainsRune(c.Issuance.OrganizationalUnit, '/') {
		return fmt.Errorf("issuance.organizational_unit cannot contain '/'")
	}
	if c.IsProduction() && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required in production")
	}
	return nil
}

// DSN returns the database connection string
func (d *DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
