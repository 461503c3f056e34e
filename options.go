package tasklist

import (
	"io"
	"log/slog"
	"time"

	"github.com/helixml/tasklist/domain/task"
	"github.com/helixml/tasklist/internal/config"
)

// clientConfig holds configuration for Client construction.
type clientConfig struct {
	storageURL string
	storage    task.Storage
	storageKey string
	ids        task.IDGenerator
	logger     *slog.Logger
	closers    []io.Closer
	retry      time.Duration
}

func newClientConfig() *clientConfig {
	return &clientConfig{
		storageKey: config.DefaultStorageKey,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithDatabaseURL selects a storage backend by URL: sqlite:///path,
// postgres://..., mysql://..., file:///path.json or memory://.
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) {
		c.storageURL = url
		c.storage = nil
	}
}

// WithSQLite stores tasks in a SQLite database file.
func WithSQLite(path string) Option {
	return WithDatabaseURL("sqlite:///" + path)
}

// WithPostgres stores tasks in PostgreSQL.
func WithPostgres(dsn string) Option {
	return WithDatabaseURL(dsn)
}

// WithMySQL stores tasks in MySQL. dsn is a go-sql-driver DSN such as
// user:pass@tcp(host:3306)/tasks, with or without a mysql:// prefix.
func WithMySQL(dsn string) Option {
	return WithDatabaseURL(mysqlURL(dsn))
}

// WithFile stores tasks in a JSON or YAML document on disk.
func WithFile(path string) Option {
	return WithDatabaseURL(fileScheme + path)
}

// WithMemory keeps tasks in memory only.
func WithMemory() Option {
	return WithDatabaseURL(memoryScheme)
}

// WithStorage uses a caller-provided storage backend.
// The caller remains responsible for closing it.
func WithStorage(s task.Storage) Option {
	return func(c *clientConfig) {
		c.storage = s
		c.storageURL = ""
	}
}

// WithStorageKey sets the key the collection is stored under.
func WithStorageKey(key string) Option {
	return func(c *clientConfig) { c.storageKey = key }
}

// WithIDGenerator sets the task id generator. Defaults to random UUIDs.
func WithIDGenerator(ids task.IDGenerator) Option {
	return func(c *clientConfig) { c.ids = ids }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

// WithPersistRetry retries a failed write every interval until it succeeds.
// Disabled by default.
func WithPersistRetry(interval time.Duration) Option {
	return func(c *clientConfig) { c.retry = interval }
}

// WithCloser registers a resource closed along with the client.
func WithCloser(closer io.Closer) Option {
	return func(c *clientConfig) { c.closers = append(c.closers, closer) }
}
