// Package config reads the portal's settings from the environment, after
// loading a .env file when one is present.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverR2       = "r2"
	DriverRedis    = "redis"
)

type R2 struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	Prefix          string
}

type Config struct {
	Port           string
	StorageDriver  string
	DataDir        string
	DatabaseURL    string
	R2             R2
	RedisURL       string
	RedisPrefix    string
	ServiceToken   string
	AllowedOrigins []string
	StaticDir      string

	SimulationEnabled bool
	// SimulationSeed is nil when the simulation should be seeded randomly.
	SimulationSeed *uint64

	LogLevel slog.Level
}

// Load reads .env (if any) and then the process environment.
func Load() (Config, bool, error) {
	dotenv := godotenv.Load() == nil
	cfg, err := FromEnv(os.Getenv)
	return cfg, dotenv, err
}

// FromEnv builds a Config from getenv, applying defaults and validating.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:          get("PORT", "5200"),
		StorageDriver: strings.ToLower(get("STORAGE_DRIVER", DriverFile)),
		DataDir:       get("DATA_DIR", "./data"),
		DatabaseURL:   get("DATABASE_URL", ""),
		R2: R2{
			AccountID:       get("CLOUDFLARE_ACCOUNT_ID", ""),
			AccessKeyID:     get("R2_ACCESS_KEY_ID", ""),
			AccessKeySecret: get("R2_ACCESS_KEY_SECRET", ""),
			Bucket:          get("R2_BUCKET_NAME", ""),
			Prefix:          get("R2_PREFIX", "clan-portal"),
		},
		RedisURL:       get("REDIS_URL", ""),
		RedisPrefix:    get("REDIS_PREFIX", "clan-portal"),
		ServiceToken:   get("PORTAL_SERVICE_TOKEN", ""),
		AllowedOrigins: splitOrigins(get("ALLOWED_ORIGINS", "http://localhost:3000")),
		StaticDir:      get("STATIC_DIR", "./public"),
	}

	var errs []error

	if _, err := strconv.ParseUint(cfg.Port, 10, 16); err != nil {
		errs = append(errs, fmt.Errorf("PORT %q is not a valid port", cfg.Port))
	}

	switch cfg.StorageDriver {
	case DriverMemory, DriverFile:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres storage driver"))
		}
	case DriverR2:
		if cfg.R2.AccountID == "" || cfg.R2.AccessKeyID == "" || cfg.R2.AccessKeySecret == "" || cfg.R2.Bucket == "" {
			errs = append(errs, errors.New("CLOUDFLARE_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_ACCESS_KEY_SECRET and R2_BUCKET_NAME are required for the r2 storage driver"))
		}
	case DriverRedis:
		if cfg.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis storage driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver))
	}

	enabled, err := strconv.ParseBool(get("SIMULATION_ENABLED", "true"))
	if err != nil {
		errs = append(errs, fmt.Errorf("SIMULATION_ENABLED: %w", err))
	}
	cfg.SimulationEnabled = enabled

	if raw := get("SIMULATION_SEED", ""); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("SIMULATION_SEED: %w", err))
		} else {
			cfg.SimulationSeed = &seed
		}
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	return cfg, errors.Join(errs...)
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c Config) Addr() string { return ":" + c.Port }
