package config

import (
	"fmt"
	"time"

	"marketplace-api/internal/apperror"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	Database  Database  `envPrefix:"DATABASE_"`
	Rest      Rest      `envPrefix:"REST_"`
	Fallback  Fallback  `envPrefix:"FALLBACK_"`
	Analytics Analytics `envPrefix:"ANALYTICS_"`
	Auth      Auth      `envPrefix:"AUTH_"`
}

type Database struct {
	URL            string        `env:"URL"`
	Driver         string        `env:"DRIVER" envDefault:"postgres"` // postgres, mysql, sqlite
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"5s"`
	AutoMigrate    bool          `env:"AUTO_MIGRATE" envDefault:"false"`
}

type Rest struct {
	URL        string        `env:"URL"`
	AnonKey    string        `env:"ANON_KEY"`
	ServiceKey string        `env:"SERVICE_KEY"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type Fallback struct {
	TierTimeout time.Duration `env:"TIER_TIMEOUT" envDefault:"3s"`
}

type Analytics struct {
	Endpoint  string  `env:"ENDPOINT" envDefault:"https://www.google-analytics.com/mp/collect"`
	APISecret string  `env:"API_SECRET"`
	RateLimit float64 `env:"RATE_LIMIT" envDefault:"20"` // events per second
}

// Auth configures access token verification. An empty secret means identity
// comes from trusted gateway headers instead.
type Auth struct {
	JWTSecret string `env:"JWT_SECRET"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

// Load parses the process environment and fails fast when a required
// variable is absent.
func Load() (*Config, error) {
	return LoadWithOptions(env.Options{})
}

func LoadWithOptions(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var missing []string

	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Rest.URL == "" {
		missing = append(missing, "REST_URL")
	}
	if c.Rest.AnonKey == "" {
		missing = append(missing, "REST_ANON_KEY")
	}
	if c.Rest.ServiceKey == "" {
		missing = append(missing, "REST_SERVICE_KEY")
	}
	// trusted identity headers are for local runs behind no gateway
	if c.IsProduction() && c.Auth.JWTSecret == "" {
		missing = append(missing, "AUTH_JWT_SECRET")
	}

	if len(missing) > 0 {
		return &apperror.NotConfiguredError{Vars: missing}
	}

	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return &apperror.ValidationError{Field: "DATABASE_DRIVER", Message: "unsupported driver " + c.Database.Driver}
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment.Name == "production"
}
