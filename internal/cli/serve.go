package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hinaba/parley"
	httpAdapter "github.com/hinaba/parley/internal/adapters/http"
	"github.com/hinaba/parley/internal/logging"
	"github.com/hinaba/parley/internal/metrics"
	"github.com/hinaba/parley/pkg/runner"
	"github.com/hinaba/parley/pkg/session"
)

// shutdownTimeout bounds the graceful drain on SIGINT/SIGTERM.
const shutdownTimeout = 5 * time.Second

// RunServe starts the HTTP server: widget, relay API, and metrics. Every
// browser session gets its own parley session built from the same config;
// tool calls are auto-approved because there is no confirmation surface.
func RunServe(opts Options, addr string) error {
	// The server always logs; --debug only raises the level.
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	logger := logging.New(level)

	// Fail fast on a broken config or unknown server key instead of at the
	// first request.
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if opts.Server != "" {
		if _, err := cfg.ResolveServer(opts.Server); err != nil {
			return err
		}
	}

	m := metrics.New(nil)
	hooks := m.Hooks()
	if opts.Debug {
		hooks = combineHooks(hooks, createDebugHooks(logger))
	}

	factory := func(ctx context.Context, sessionID string) (session.Chat, error) {
		sess, err := buildSession(ctx, opts, logger.With("session_id", sessionID),
			parley.WithToolInterceptor(runner.AutoApproveMiddleware()),
			parley.WithLifecycleHooks(hooks),
		)
		if err != nil {
			return nil, err
		}
		return sess, nil
	}

	sessions := session.NewManager(factory, session.WithLogger(logger))

	handler := httpAdapter.NewHandler(sessions,
		httpAdapter.WithLogger(logger),
		httpAdapter.WithMetricsHandler(m.Handler()),
	)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		fmt.Printf("Starting Parley Server on %s\n", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt or terminate signals.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			fmt.Printf("Graceful shutdown did not complete in %v: %v\n", shutdownTimeout, err)
			if err := srv.Close(); err != nil {
				fmt.Printf("Error killing server: %v\n", err)
			}
		}
		if err := sessions.Shutdown(context.Background()); err != nil {
			logger.Warn("session shutdown", "err", err)
		}
		fmt.Println("Parley Server stopped gracefully")
	}
	return nil
}
