// Package di wires the server's components with samber/do.
package di

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/borrowez/borrowez/internal/config"
)

// NewContainer creates the container. The configuration and logger are
// built by the caller so that startup failures can be reported before any
// component is created.
func NewContainer(cfg *config.Config, logger *slog.Logger) *do.RootScope {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)

	// Storage
	do.Provide(injector, ProvideDatabase)
	do.Provide(injector, ProvideBlobStore)

	// Services
	do.Provide(injector, ProvideValidator)
	do.Provide(injector, ProvideTokenIssuer)
	do.Provide(injector, ProvideAuthService)
	do.Provide(injector, ProvideCatalog)
	do.Provide(injector, ProvideLedger)

	// Transport
	do.Provide(injector, ProvideLoginLimiter)
	do.Provide(injector, ProvideHTTPServer)

	return injector
}
