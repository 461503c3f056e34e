package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/helixml/tasklist/domain/task"
)

// MySQLScheme is the URL prefix selecting the MySQL backend.
const MySQLScheme = "mysql://"

const createKeyValuesMySQL = `CREATE TABLE IF NOT EXISTS key_values (
    name VARCHAR(255) NOT NULL PRIMARY KEY,
    value LONGTEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
)`

// MySQLStore implements task.Storage on MySQL through database/sql.
type MySQLStore struct {
	db *sql.DB
}

// MySQLDSN converts a mysql:// URL to a driver DSN. Plain DSNs pass through.
func MySQLDSN(url string) string {
	return strings.TrimPrefix(url, MySQLScheme)
}

// NewMySQLStore connects to MySQL, verifies the connection and creates the
// key_values table when missing.
func NewMySQLStore(ctx context.Context, dsn string) (*MySQLStore, error) {
	cfg, err := mysql.ParseDSN(MySQLDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	s := &MySQLStore{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *MySQLStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createKeyValuesMySQL); err != nil {
		return fmt.Errorf("create key_values: %w", err)
	}
	return nil
}

// Get returns the value stored under key.
func (s *MySQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM key_values WHERE name = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, task.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get key %s: %w", key, err)
	}
	return []byte(value), nil
}

// Set creates or replaces the value stored under key.
func (s *MySQLStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO key_values (name, value) VALUES (?, ?) ON DUPLICATE KEY UPDATE value = VALUES(value)`,
		key, string(value),
	)
	if err != nil {
		return fmt.Errorf("set key %s: %w", key, err)
	}
	return nil
}

// Close closes the connection pool.
func (s *MySQLStore) Close() error { return s.db.Close() }
