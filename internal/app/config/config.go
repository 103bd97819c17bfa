// Package config loads runtime configuration using viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. MENU_AUTH_JWT_SECRET.
const EnvPrefix = "MENU"

// Config represents the runtime configuration of the menu backend.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Auth        AuthConfig        `mapstructure:"auth"`
	RateLimit   RateLimitConfig   `mapstructure:"ratelimit"`
	Email       EmailConfig       `mapstructure:"email"`
	Menu        MenuConfig        `mapstructure:"menu"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	LogLevel       string   `mapstructure:"log_level"`
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// DatabaseConfig describes the SQL connection.
type DatabaseConfig struct {
	Driver         string        `mapstructure:"driver"`
	DSN            string        `mapstructure:"dsn"`
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	Name           string        `mapstructure:"name"`
	SSLMode        string        `mapstructure:"sslmode"`
	Path           string        `mapstructure:"path"`
	AutoMigrate    bool          `mapstructure:"auto_migrate"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// RedisConfig holds Redis connection options. Redis is optional.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig captures every knob of the account security core.
type AuthConfig struct {
	JWT            JWTConfig     `mapstructure:"jwt"`
	RefreshTTL     time.Duration `mapstructure:"refresh_ttl"`
	MaxSessions    int           `mapstructure:"max_sessions"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	LockDuration   time.Duration `mapstructure:"lock_duration"`
	CodeTTL        time.Duration `mapstructure:"code_ttl"`
	MaxCodeTries   int           `mapstructure:"max_code_attempts"`
	ResendCooldown time.Duration `mapstructure:"resend_cooldown"`
	PasswordCost   int           `mapstructure:"password_cost"`
	CodeCost       int           `mapstructure:"code_cost"`
}

// JWTConfig configures access tokens.
type JWTConfig struct {
	Secret    string        `mapstructure:"secret"`
	Issuer    string        `mapstructure:"issuer"`
	AccessTTL time.Duration `mapstructure:"access_ttl"`
}

// RateLimitConfig is the per-client budget applied to each sensitive endpoint.
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// EmailConfig captures outbound email settings.
type EmailConfig struct {
	SMTP SMTPConfig `mapstructure:"smtp"`
}

// SMTPConfig defines SMTP dialer settings.
type SMTPConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"`
	UseTLS   bool          `mapstructure:"use_tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// MenuConfig holds menu feature limits.
type MenuConfig struct {
	FreeLimit int           `mapstructure:"free_limit"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

// MaintenanceConfig controls the cleanup scheduler.
type MaintenanceConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// Load reads config.yaml from ./config (plus any extra paths), applies MENU_*
// environment overrides and validates the result.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot safely run with.
func (c *Config) Validate() error {
	if c.Auth.JWT.Secret == "" && c.Server.Mode != "debug" {
		return errors.New("config: auth.jwt.secret is required outside debug mode")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("config: ratelimit.requests and ratelimit.window must be positive")
	}
	if c.Auth.MaxAttempts <= 0 {
		return errors.New("config: auth.max_attempts must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.base_url", "http://localhost:3000")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "menu")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "menu")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "./data/menu.sqlite")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.connect_timeout", "60s")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt.secret", "")
	v.SetDefault("auth.jwt.issuer", "menu_backend")
	v.SetDefault("auth.jwt.access_ttl", "1h")
	v.SetDefault("auth.refresh_ttl", "168h")
	v.SetDefault("auth.max_sessions", 5)
	v.SetDefault("auth.max_attempts", 5)
	v.SetDefault("auth.lock_duration", "5m")
	v.SetDefault("auth.code_ttl", "10m")
	v.SetDefault("auth.max_code_attempts", 5)
	v.SetDefault("auth.resend_cooldown", "60s")
	v.SetDefault("auth.password_cost", 12)
	v.SetDefault("auth.code_cost", 10)

	v.SetDefault("ratelimit.requests", 5)
	v.SetDefault("ratelimit.window", "60s")

	v.SetDefault("email.smtp.enabled", false)
	v.SetDefault("email.smtp.host", "smtp.gmail.com")
	v.SetDefault("email.smtp.port", 465)
	v.SetDefault("email.smtp.use_tls", true)
	v.SetDefault("email.smtp.timeout", "10s")

	v.SetDefault("menu.free_limit", 3)
	v.SetDefault("menu.cache_ttl", "5m")

	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.schedule", "@every 15m")
}
