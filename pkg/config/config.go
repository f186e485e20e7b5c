// Package config loads process settings from TRANSFERS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
)

// Config is the runtime configuration of the transfers server.
type Config struct {
	Addr        string        `env:"ADDR" envDefault:":8080"`
	MetricsAddr string        `env:"METRICS_ADDR" envDefault:":9090"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	SessionDB   string        `env:"SESSION_DB" envDefault:"transfers.db"`
	JWTSecret   string        `env:"JWT_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	Fixtures    string        `env:"FIXTURES"`
	ChartTTL    time.Duration `env:"CHART_TTL" envDefault:"5m"`
	ChartTheme  string        `env:"CHART_THEME" envDefault:"westeros"`
	ChartAssets string        `env:"CHART_ASSETS_HOST"`
	Activity    bool          `env:"ACTIVITY" envDefault:"true"`
	Timezone    string        `env:"TIMEZONE" envDefault:"UTC"`
	Admin       AdminConfig   `envPrefix:"ADMIN_"`
}

// AdminConfig holds the operator credentials.
type AdminConfig struct {
	Email    string `env:"EMAIL" envDefault:"admin@transfers.com"`
	Password string `env:"PASSWORD" envDefault:"admin123"`
}

const envPrefix = "TRANSFERS_"

// Load parses the process environment.
func Load() (Config, error) {
	return parse(env.Options{Prefix: envPrefix})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Prefix: envPrefix, Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks values that have no sensible default.
func (c Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) < 16 {
		errs = append(errs, errors.New("config: TRANSFERS_JWT_SECRET must be at least 16 bytes"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("config: TRANSFERS_TOKEN_TTL must be positive"))
	}
	if c.Admin.Email == "" || c.Admin.Password == "" {
		errs = append(errs, errors.New("config: admin credentials are required"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location resolves Timezone, the zone chat times are shown in.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: TRANSFERS_TIMEZONE: %w", err)
	}
	return loc, nil
}
