// Package store provides relational store access for the pipeline: opening
// a target store from its connection descriptor, discovering its schema, and
// executing read queries into an ordered tabular result.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/datasage-ai/datasage/internal/types"
)

// Store error codes follow the shared coded-error pattern.
const (
	ErrOpenFailed        types.ErrorCode = "STORE_OPEN_FAILED"
	ErrUnsupportedKind   types.ErrorCode = "STORE_UNSUPPORTED_KIND"
	ErrQueryFailed       types.ErrorCode = "STORE_QUERY_FAILED"
	ErrInspectionFailed  types.ErrorCode = "STORE_INSPECTION_FAILED"
	ErrConnectionInvalid types.ErrorCode = "STORE_CONNECTION_INVALID"
)

// Config holds store connection options.
type Config struct {
	DSN             string        // Connection descriptor, e.g. "sqlite:///data/demo_sales.db"
	MaxOpenConns    int           // Maximum number of open connections
	MaxIdleConns    int           // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum connection lifetime
	BusyTimeout     time.Duration // SQLite busy timeout
}

// DefaultConfig returns sensible defaults for the given descriptor.
func DefaultConfig(dsn string) Config {
	return Config{
		DSN:             dsn,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		BusyTimeout:     5 * time.Second,
	}
}

// Store wraps a relational database connection behind the collaborator
// interfaces the pipeline needs.
type Store struct {
	conn *sql.DB
	kind string
	dsn  string
}

// DetectKind identifies the store kind from a connection descriptor.
// Bare file paths are treated as SQLite databases.
func DetectKind(dsn string) string {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite"
	case strings.HasPrefix(dsn, "postgresql://"), strings.HasPrefix(dsn, "postgres://"):
		return "postgresql"
	case strings.HasPrefix(dsn, "mysql://"):
		return "mysql"
	case strings.Contains(dsn, "://"):
		return "unknown"
	default:
		return "sqlite"
	}
}

// Open creates a store connection from a descriptor with default settings.
func Open(dsn string) (*Store, error) {
	return OpenWithConfig(DefaultConfig(dsn))
}

// OpenWithConfig creates a store connection with custom configuration.
// SQLite connections get WAL mode, foreign keys, and a busy timeout.
func OpenWithConfig(cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, types.NewError(ErrConnectionInvalid, "connection descriptor must be non-empty")
	}

	kind := DetectKind(cfg.DSN)
	if kind != "sqlite" {
		return nil, types.NewError(ErrUnsupportedKind,
			fmt.Sprintf("store kind %q is not supported by this build (descriptor %q)", kind, cfg.DSN))
	}

	// sqlite://demo.db names a relative file, sqlite:///data/demo.db an
	// absolute one. Bare paths pass through untouched.
	path := strings.TrimPrefix(cfg.DSN, "sqlite://")
	if path == "" {
		return nil, types.NewError(ErrConnectionInvalid,
			fmt.Sprintf("descriptor %q names no database file", cfg.DSN))
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=%d",
		path, int(cfg.BusyTimeout.Milliseconds()))

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, types.WrapError(ErrOpenFailed, "failed to open database", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, types.WrapError(ErrOpenFailed, "failed to ping database", err)
	}

	return &Store{conn: conn, kind: kind, dsn: cfg.DSN}, nil
}

// Kind returns the detected store kind ("sqlite").
func (s *Store) Kind() string { return s.kind }

// DSN returns the connection descriptor the store was opened from.
func (s *Store) DSN() string { return s.dsn }

// Ping verifies the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.conn.PingContext(ctx); err != nil {
		return types.WrapError(ErrOpenFailed, "store connection lost", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.conn.Close()
}
