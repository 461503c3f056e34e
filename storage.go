package tasklist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/helixml/tasklist/domain/task"
	"github.com/helixml/tasklist/infrastructure/persistence"
	"github.com/helixml/tasklist/internal/database"
)

const (
	fileScheme   = "file://"
	memoryScheme = "memory://"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func mysqlURL(dsn string) string {
	if strings.HasPrefix(dsn, persistence.MySQLScheme) {
		return dsn
	}
	return persistence.MySQLScheme + dsn
}

// OpenStorage opens the backend named by url. The returned closer releases it.
func OpenStorage(ctx context.Context, url string, logger *slog.Logger) (task.Storage, io.Closer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch {
	case url == "":
		return nil, nil, ErrNoStorage
	case strings.HasPrefix(url, memoryScheme):
		return persistence.NewMemoryStore(), nopCloser{}, nil
	case strings.HasPrefix(url, fileScheme):
		s, err := persistence.NewFileStore(strings.TrimPrefix(url, fileScheme))
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case strings.HasPrefix(url, persistence.MySQLScheme):
		s, err := persistence.NewMySQLStore(ctx, url)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case database.Supports(url):
		return openDatabase(ctx, url, logger)
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedStorage, url)
	}
}

func openDatabase(ctx context.Context, url string, logger *slog.Logger) (task.Storage, io.Closer, error) {
	db, err := database.NewDatabase(ctx, url, database.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := persistence.AutoMigrate(db); err != nil {
		return nil, nil, errors.Join(err, db.Close())
	}
	if err := persistence.ValidateSchema(db); err != nil {
		return nil, nil, errors.Join(fmt.Errorf("validate schema: %w", err), db.Close())
	}
	return persistence.NewKeyValueStore(db), db, nil
}
