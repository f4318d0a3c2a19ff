// Package config assembles process configuration from an optional YAML file,
// a .env file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"barber-reservation-api/internal/slogx"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Env       string `yaml:"env"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	HTTPPort      string        `yaml:"port"`
	GRPCPort      string        `yaml:"grpc_port"`
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`

	DBDriver    string `yaml:"db_driver"`
	DatabaseURL string `yaml:"database_url"`
	SQLitePath  string `yaml:"sqlite_path"`

	JWTSecret         string        `yaml:"jwt_secret"`
	TokenTTL          time.Duration `yaml:"token_ttl"`
	AllowRegistration bool          `yaml:"allow_registration"`
	LoginRate         float64       `yaml:"login_rate"`
	LoginBurst        int           `yaml:"login_burst"`

	CORSOrigins       []string `yaml:"cors_origins"`
	CookieSecure      bool     `yaml:"cookie_secure"`
	TrustProxyHeaders bool     `yaml:"trust_proxy_headers"`

	RedisURL        string `yaml:"redis_url"`
	RecaptchaSecret string `yaml:"recaptcha_secret"`
}

func defaults() Config {
	return Config{
		Env:           "dev",
		LogLevel:      "info",
		LogFormat:     "json",
		HTTPPort:      "8080",
		GRPCPort:      "50051",
		ShutdownGrace: 10 * time.Second,
		SQLitePath:    "barber.db",
		TokenTTL:      time.Hour,
		LoginRate:     1,
		LoginBurst:    5,
		CORSOrigins:   []string{"http://localhost:3000"},
	}
}

// Load reads .env (if present), the YAML file named by CONFIG_FILE (if set)
// and then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := readFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if cfg.DBDriver == "" {
		cfg.DBDriver = DriverSQLite
		if cfg.DatabaseURL != "" {
			cfg.DBDriver = DriverPostgres
		}
	}
	return cfg, cfg.Validate()
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	str("ENV", &cfg.Env)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	str("PORT", &cfg.HTTPPort)
	str("GRPC_PORT", &cfg.GRPCPort)
	str("DB_DRIVER", &cfg.DBDriver)
	str("DATABASE_URL", &cfg.DatabaseURL)
	str("SQLITE_PATH", &cfg.SQLitePath)
	str("JWT_SECRET", &cfg.JWTSecret)
	str("REDIS_URL", &cfg.RedisURL)
	str("RECAPTCHA_SECRET", &cfg.RecaptchaSecret)

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	var errs []error
	for key, dst := range map[string]*time.Duration{
		"TOKEN_TTL":      &cfg.TokenTTL,
		"SHUTDOWN_GRACE": &cfg.ShutdownGrace,
	} {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				continue
			}
			*dst = d
		}
	}
	for key, dst := range map[string]*bool{
		"COOKIE_SECURE":       &cfg.CookieSecure,
		"TRUST_PROXY_HEADERS": &cfg.TrustProxyHeaders,
		"ALLOW_REGISTRATION":  &cfg.AllowRegistration,
	} {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				continue
			}
			*dst = b
		}
	}
	if v := os.Getenv("LOGIN_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("LOGIN_RATE: %w", err))
		} else {
			cfg.LoginRate = f
		}
	}
	if v := os.Getenv("LOGIN_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("LOGIN_BURST: %w", err))
		} else {
			cfg.LoginBurst = n
		}
	}
	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.DBDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH must not be empty")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if _, err := slogx.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if f := strings.ToLower(c.LogFormat); f != "json" && f != "text" {
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.LoginRate <= 0 || c.LoginBurst <= 0 {
		return errors.New("LOGIN_RATE and LOGIN_BURST must be positive")
	}
	return nil
}
