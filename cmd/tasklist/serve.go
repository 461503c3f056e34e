package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/helixml/tasklist/infrastructure/api"
	"github.com/helixml/tasklist/internal/config"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST          Server host to bind to (default: 0.0.0.0)
  PORT          Server port to listen on (default: 8080)
  DATA_DIR      Data directory (default: ~/.tasklist)
  DB_URL        Storage URL: sqlite:///, postgres://, mysql://, file://, memory://
                (default: sqlite:///{data_dir}/tasklist.db)
  STORAGE_KEY   Key the task collection is stored under (default: todoStorage)
  LOG_LEVEL     Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT    Log format: pretty, json (default: pretty)
  API_KEYS      Comma-separated keys required for mutating requests
  CORS_ORIGINS  Comma-separated allowed origins (default: *)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var overrides []config.AppConfigOption
			if host != "" {
				overrides = append(overrides, config.WithHost(host))
			}
			if port != 0 {
				overrides = append(overrides, config.WithPort(port))
			}

			cfg, err := loadConfig(flags, overrides...)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(ctx context.Context, cfg config.AppConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, logger, err := openClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeClient(client, logger)

	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	logger.LogAttrs(ctx, slog.LevelInfo, "starting tasklist", attrs...)

	apiServer := api.NewAPIServer(client,
		api.WithAPIKeys(cfg.APIKeys()),
		api.WithCORSOrigins(cfg.CORSOrigins()),
		api.WithVersion(version),
	)

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr(), err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return apiServer.Serve(ln)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		// Serve may not have registered its server yet.
		_ = ln.Close()
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
