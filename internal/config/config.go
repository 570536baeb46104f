// Package config loads server configuration from flags, the environment,
// an optional .env file and defaults, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Blob backends.
const (
	BlobBackendFS     = "fs"
	BlobBackendSQLite = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	DBPath  string `env:"DB_PATH" envDefault:"borrowez.sqlite3"`
	Addr    string `env:"ADDR" envDefault:":8080"`
	LogPath string `env:"LOG_PATH"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// JWTSecret signs session tokens. Empty means a secret generated on
	// first start and kept in the database.
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"168h"`

	BlobBackend string `env:"BLOB_BACKEND" envDefault:"fs"`
	UploadDir   string `env:"UPLOAD_DIR" envDefault:"uploads"`

	StoreTimeout    time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`

	LoginRate  float64 `env:"LOGIN_RATE" envDefault:"1"`
	LoginBurst int     `env:"LOGIN_BURST" envDefault:"5"`
}

// Load builds the configuration. envFile may be empty to skip .env loading;
// a missing file is not an error. Existing environment variables are never
// overridden by the file.
func Load(args []string, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fset := flag.NewFlagSet("borrowez", flag.ContinueOnError)
	fset.SetOutput(io.Discard)
	fset.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to SQLite database")
	fset.StringVar(&cfg.DBPath, "d", cfg.DBPath, "path to SQLite database (shorthand)")
	fset.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fset.StringVar(&cfg.Addr, "a", cfg.Addr, "listen address (shorthand)")
	fset.StringVar(&cfg.LogPath, "log", cfg.LogPath, "path to log file (optional)")
	fset.StringVar(&cfg.LogPath, "l", cfg.LogPath, "path to log file (shorthand)")
	fset.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fset.StringVar(&cfg.UploadDir, "uploads", cfg.UploadDir, "directory for uploaded images")
	fset.StringVar(&cfg.BlobBackend, "blobs", cfg.BlobBackend, "image storage backend (fs or sqlite)")
	if err := fset.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.BlobBackend = strings.ToLower(cfg.BlobBackend)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH must not be empty"))
	}
	if c.Addr == "" {
		errs = append(errs, errors.New("ADDR must not be empty"))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	switch c.BlobBackend {
	case BlobBackendFS:
		if c.UploadDir == "" {
			errs = append(errs, errors.New("UPLOAD_DIR must not be empty for the fs backend"))
		}
	case BlobBackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("BLOB_BACKEND must be fs or sqlite, got %q", c.BlobBackend))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	if c.LoginRate <= 0 || c.LoginBurst < 1 {
		errs = append(errs, errors.New("LOGIN_RATE must be positive and LOGIN_BURST at least 1"))
	}

	return errors.Join(errs...)
}
