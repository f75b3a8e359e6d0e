package config

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/fersoria001/clearly/logging"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	EnvDatabaseURL  = "CLEARLY_DATABASE_URL"
	EnvPoolMaxConns = "CLEARLY_POOL_MAX_CONNS"
	EnvLoadTimeout  = "CLEARLY_LOAD_TIMEOUT"
	EnvLogLevel     = "CLEARLY_LOG_LEVEL"
	EnvMappings     = "CLEARLY_MAPPINGS"
)

// Config holds the settings shared by the mappers and the command line.
type Config struct {
	DatabaseURL  string
	PoolMaxConns int32
	LoadTimeout  time.Duration
	LogLevel     string
	MappingsPath string
}

// Load reads the given .env files, or ./.env when none is given, and then the
// environment. Variables already set in the environment win over the files.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, errors.Wrapf(err, "error loading env file %s", f)
		}
	}
	cfg := &Config{
		DatabaseURL:  os.Getenv(EnvDatabaseURL),
		PoolMaxConns: 10,
		LoadTimeout:  5 * time.Second,
		LogLevel:     logging.DefaultLogLevel,
		MappingsPath: "mappings.json",
	}
	if v := os.Getenv(EnvPoolMaxConns); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 1 {
			return nil, errors.Errorf("%s must be a positive integer, got %q", EnvPoolMaxConns, v)
		}
		cfg.PoolMaxConns = int32(n)
	}
	if v := os.Getenv(EnvLoadTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, errors.Wrapf(err, "%s must be a duration", EnvLoadTimeout)
		}
		cfg.LoadTimeout = d
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvMappings); v != "" {
		cfg.MappingsPath = v
	}
	return cfg, nil
}

func (c *Config) PoolConfig() (*pgxpool.Config, error) {
	if c.DatabaseURL == "" {
		return nil, errors.Errorf("%s is empty", EnvDatabaseURL)
	}
	poolConfig, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = c.PoolMaxConns
	return poolConfig, nil
}

func (c *Config) CreatePool(ctx context.Context) (*pgxpool.Pool, error) {
	poolConfig, err := c.PoolConfig()
	if err != nil {
		return nil, err
	}
	return pgxpool.NewWithConfig(ctx, poolConfig)
}
