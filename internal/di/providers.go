package di

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/borrowez/borrowez/internal/api"
	"github.com/borrowez/borrowez/internal/auth"
	"github.com/borrowez/borrowez/internal/blob"
	"github.com/borrowez/borrowez/internal/catalog"
	"github.com/borrowez/borrowez/internal/config"
	"github.com/borrowez/borrowez/internal/db"
	"github.com/borrowez/borrowez/internal/ledger"
	"github.com/borrowez/borrowez/internal/ratelimit"
	"github.com/borrowez/borrowez/internal/store"
	"github.com/borrowez/borrowez/internal/validation"
)

// DatabaseHandle owns the process-wide database handle. It is opened once
// and closed when the container shuts down.
type DatabaseHandle struct {
	*sql.DB
}

// Shutdown implements do.Shutdowner.
func (h *DatabaseHandle) Shutdown() error {
	return h.Close()
}

// ProvideDatabase opens the database and applies the schema.
func ProvideDatabase(i do.Injector) (*DatabaseHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, err
	}

	log.Info("database ready", "path", cfg.DBPath)
	return &DatabaseHandle{DB: database}, nil
}

// ProvideBlobStore selects the image store named by the configuration.
func ProvideBlobStore(i do.Injector) (blob.Store, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	switch cfg.BlobBackend {
	case config.BlobBackendSQLite:
		database := do.MustInvoke[*DatabaseHandle](i)
		log.Info("image store ready", "backend", cfg.BlobBackend)
		return blob.NewSQLiteStore(database.DB), nil
	case config.BlobBackendFS:
		fs, err := blob.NewFileStore(cfg.UploadDir)
		if err != nil {
			return nil, err
		}
		log.Info("image store ready", "backend", cfg.BlobBackend, "dir", cfg.UploadDir)
		return fs, nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
	}
}

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideTokenIssuer loads or creates the signing secret.
func ProvideTokenIssuer(i do.Injector) (*auth.TokenIssuer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	database := do.MustInvoke[*DatabaseHandle](i)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
	defer cancel()
	secret, err := store.GetJWTSecret(ctx, database.DB, cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	return auth.NewTokenIssuer(secret, cfg.TokenTTL), nil
}

// ProvideAuthService provides account registration and sessions.
func ProvideAuthService(i do.Injector) (*auth.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	return auth.NewService(
		do.MustInvoke[*DatabaseHandle](i).DB,
		do.MustInvoke[*auth.TokenIssuer](i),
		do.MustInvoke[*validation.Validator](i),
		cfg.StoreTimeout,
		log.With("component", "auth"),
	), nil
}

// ProvideCatalog provides the item catalog.
func ProvideCatalog(i do.Injector) (*catalog.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	return catalog.NewService(
		do.MustInvoke[*DatabaseHandle](i).DB,
		do.MustInvoke[blob.Store](i),
		do.MustInvoke[*validation.Validator](i),
		cfg.StoreTimeout,
		log.With("component", "catalog"),
	), nil
}

// ProvideLedger provides the borrow ledger.
func ProvideLedger(i do.Injector) (*ledger.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	return ledger.NewService(
		do.MustInvoke[*DatabaseHandle](i).DB,
		cfg.StoreTimeout,
		log.With("component", "ledger"),
	), nil
}

// LimiterHandle stops the limiter's sweeper at shutdown.
type LimiterHandle struct {
	*ratelimit.KeyedLimiter
}

// Shutdown implements do.Shutdowner.
func (h *LimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideLoginLimiter provides the per-IP limiter for login and register.
func ProvideLoginLimiter(i do.Injector) (*LimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &LimiterHandle{KeyedLimiter: ratelimit.New(cfg.LoginRate, cfg.LoginBurst)}, nil
}

// HTTPServerHandle wraps http.Server with graceful shutdown.
type HTTPServerHandle struct {
	*http.Server
	timeout time.Duration
}

// Shutdown implements do.Shutdowner.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server. It is not started here.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	srv := api.NewServer(
		do.MustInvoke[*auth.Service](i),
		do.MustInvoke[*catalog.Service](i),
		do.MustInvoke[*ledger.Service](i),
		do.MustInvoke[*LimiterHandle](i).KeyedLimiter,
		log.With("component", "http"),
	)

	return &HTTPServerHandle{
		Server: &http.Server{
			Addr:              cfg.Addr,
			Handler:           srv.Router(),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		timeout: cfg.ShutdownTimeout,
	}, nil
}
