package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/borrowez/borrowez/internal/config"
	"github.com/borrowez/borrowez/internal/di"
	"github.com/borrowez/borrowez/internal/logger"
)

const usage = `Usage: borrowez [flags]

Flags:
  -d, -db <path>          SQLite database path (default: borrowez.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -log-level <level>      debug, info, warn or error (default: info)
  -uploads <dir>          image directory for the fs backend (default: uploads)
  -blobs <fs|sqlite>      image storage backend (default: fs)
  -h, -help               show this help and exit

Every flag can also be set through the environment (DB_PATH, ADDR, LOG_PATH,
LOG_LEVEL, UPLOAD_DIR, BLOB_BACKEND) or a .env file in the working directory.
`

func main() {
	cfg, err := config.Load(os.Args[1:], ".env")
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprint(os.Stdout, usage)
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n\n%s", err, usage)
		os.Exit(1)
	}

	// INFO/WARN to stdout, ERROR to stderr, optionally all to a file.
	log, closeLog, err := logger.Setup(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
		Path:   cfg.LogPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	injector := di.NewContainer(cfg, log)

	server, err := do.Invoke[*di.HTTPServerHandle](injector)
	if err != nil {
		log.Error("failed to start", "error", err)
		if err := injector.Shutdown(); err != nil {
			log.Error("shutdown error", "error", err)
		}
		closeLog()
		os.Exit(1)
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server started", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", "signal", sig.String())
	case err := <-serveErr:
		if err != nil {
			log.Error("server error", "error", err)
			exitCode = 1
		}
	}

	// Stops the HTTP server first, then closes the database.
	if err := injector.Shutdown(); err != nil {
		log.Error("shutdown error", "error", err)
		exitCode = 1
	}

	log.Info("server stopped")
	if exitCode != 0 {
		closeLog()
		os.Exit(exitCode)
	}
}
