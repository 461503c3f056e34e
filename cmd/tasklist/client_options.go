package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/helixml/tasklist"
	"github.com/helixml/tasklist/domain/task"
	"github.com/helixml/tasklist/internal/config"
	"github.com/helixml/tasklist/internal/log"
)

// loadConfig loads configuration from the .env file, the environment and flags.
func loadConfig(flags *globalFlags, overrides ...config.AppConfigOption) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(flags.envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	if flags.dbURL != "" {
		overrides = append(overrides, config.WithDBURL(flags.dbURL))
	}
	return cfg.Apply(overrides...), nil
}

// openClient prepares the data directory, builds the logger and opens the client.
func openClient(ctx context.Context, cfg config.AppConfig) (*tasklist.Client, *slog.Logger, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, nil, fmt.Errorf("create data directory: %w", err)
	}

	logger := log.NewLogger(cfg).Slog()
	client, err := tasklist.NewWithContext(ctx,
		tasklist.WithDatabaseURL(cfg.DBURL()),
		tasklist.WithStorageKey(cfg.StorageKey()),
		tasklist.WithLogger(logger),
		tasklist.WithPersistRetry(cfg.PersistRetry()),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create tasklist client: %w", err)
	}
	return client, logger, nil
}

// closeClient closes client, logging rather than failing the command.
func closeClient(client *tasklist.Client, logger *slog.Logger) {
	if err := client.Close(); err != nil {
		logger.Error("failed to close tasklist client", slog.Any("error", err))
	}
}

// warnPersistence prints a persistence failure and swallows it. The change
// is still applied for the rest of the process.
func warnPersistence(w io.Writer, err error) error {
	if errors.Is(err, task.ErrPersistence) {
		_, _ = fmt.Fprintf(w, "warning: %v\n", err)
		return nil
	}
	return err
}
