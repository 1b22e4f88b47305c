package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pressly/goose/v3"
	// SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/fr0stylo/webhookd/internal/db/queries"
)

const (
	driverName  = "sqlite"
	defaultPath = "data/webhookd"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// defaultPragmas tune SQLite for one writer process with concurrent readers.
var defaultPragmas = []string{
	"foreign_keys(ON)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"busy_timeout(5000)",
	"temp_store(MEMORY)",
}

// Database wraps sqlc queries over one instrumented SQLite connection pool.
type Database struct {
	*queries.Queries
	db      *sql.DB
	tracker *queryLatencyTracker
}

type openConfig struct {
	pragmas  []string
	maxConns int
	tracked  bool
}

// Option adjusts how New opens the store.
type Option func(*openConfig)

// WithPragma appends an extra SQLite pragma, e.g. "cache_size(-64000)".
func WithPragma(pragma string) Option {
	return func(c *openConfig) {
		if pragma = strings.TrimSpace(pragma); pragma != "" {
			c.pragmas = append(c.pragmas, pragma)
		}
	}
}

// WithMaxOpenConns caps the connection pool. Zero leaves database/sql defaults.
func WithMaxOpenConns(n int) Option {
	return func(c *openConfig) { c.maxConns = n }
}

// WithoutQueryTracking skips per-query latency samples and spans.
func WithoutQueryTracking() Option {
	return func(c *openConfig) { c.tracked = false }
}

// New opens the webhookd SQLite store at path (".sqlite" is appended) and applies
// pending migrations before returning.
func New(path string, opts ...Option) (*Database, error) {
	cfg := openConfig{pragmas: append([]string(nil), defaultPragmas...), tracked: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	path = strings.TrimSpace(path)
	if path == "" {
		path = defaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	conn, err := sql.Open(driverName, sqliteDSN(path, cfg.pragmas))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.maxConns > 0 {
		conn.SetMaxOpenConns(cfg.maxConns)
	}
	if err := migrate(context.Background(), conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	database := &Database{db: conn}
	if cfg.tracked {
		database.tracker = newQueryLatencyTracker()
	}
	database.Queries = queries.New(newInstrumentedDBTX(conn, database.tracker))
	return database, nil
}

func migrate(ctx context.Context, conn *sql.DB) error {
	migrations, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, conn, migrations)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

func sqliteDSN(path string, pragmas []string) string {
	values := url.Values{}
	for _, pragma := range pragmas {
		values.Add("_pragma", pragma)
	}
	return (&url.URL{Scheme: "file", Opaque: path + ".sqlite", RawQuery: values.Encode()}).String()
}

// Close closes the underlying database connection.
func (c *Database) Close() error {
	return c.db.Close()
}
