// Package storage owns the database handle, the read cache and the three
// record repositories built on them.
package storage

import (
	"database/sql"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/julianstephens/studylog/internal/cache"
	"github.com/julianstephens/studylog/internal/constants"
	"github.com/julianstephens/studylog/internal/errors"
	"github.com/julianstephens/studylog/internal/logger"
	"github.com/julianstephens/studylog/internal/migration"
	"github.com/julianstephens/studylog/internal/utils"
	"github.com/julianstephens/studylog/migrations"
)

type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

const sqlitePragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// Context is the explicitly constructed handle every repository is built on.
// It owns one *sql.DB for the life of the process and the TTL read cache.
// It is safe for concurrent use.
type Context struct {
	db      *sql.DB
	backend Backend
	dsn     string
	cache   *cache.Cache
	now     func() time.Time
}

type options struct {
	cacheTTL    time.Duration
	now         func() time.Time
	credentials bool
}

type Option func(*options)

// WithCacheTTL sets how long loaded tables stay cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) { o.cacheTTL = ttl }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithEmbeddedCredentials accepts a PostgreSQL URL carrying a password. Only
// connection strings read from the OS keyring should be opened this way.
func WithEmbeddedCredentials() Option {
	return func(o *options) { o.credentials = true }
}

// Open connects to a SQLite file (created if absent) or a postgres:// URL.
// Every failure wraps errors.ErrStorageUnavailable and no Context is returned.
func Open(dsn string, opts ...Option) (*Context, error) {
	o := options{cacheTTL: constants.DefaultCacheTTL, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		db      *sql.DB
		backend Backend
		err     error
	)
	if utils.IsPostgresDSN(dsn) {
		backend = BackendPostgres
		db, err = openPostgres(dsn, o.credentials)
	} else {
		backend = BackendSQLite
		db, err = openSQLite(dsn)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrStorageUnavailable, err)
	}

	logger.Debug("storage opened", "backend", backend)
	return &Context{
		db:      db,
		backend: backend,
		dsn:     dsn,
		cache:   cache.New(o.cacheTTL),
		now:     o.now,
	}, nil
}

func openSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, stderrors.New("database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+sqlitePragmas)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection serializes writers; busy_timeout covers other processes.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return db, nil
}

func openPostgres(connStr string, credentials bool) (*sql.DB, error) {
	if _, err := ValidateConnString(connStr); err != nil {
		if !credentials || !stderrors.Is(err, ErrEmbeddedCredentials) {
			return nil, err
		}
	}
	connStr = withSearchPath(connStr)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(connStr) {
			return nil, fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec("CREATE SCHEMA IF NOT EXISTS " + constants.AppName); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return db, nil
}

func (c *Context) runner() (*migration.Runner, error) {
	dialect := migration.SQLite
	if c.backend == BackendPostgres {
		dialect = migration.Postgres
	}
	sub, err := fs.Sub(migrations.FS, string(c.backend))
	if err != nil {
		return nil, fmt.Errorf("failed to access %s migrations: %w", c.backend, err)
	}
	return migration.NewRunner(c.db, sub, dialect), nil
}

// EnsureSchema applies any pending migrations. It is idempotent and meant to
// run on every startup.
func (c *Context) EnsureSchema() error {
	r, err := c.runner()
	if err != nil {
		return err
	}
	if _, err := r.Apply(); err != nil {
		return &errors.StorageError{Op: "ensure schema", Err: err}
	}
	return nil
}

// SchemaStatus reports the recorded and available schema versions.
func (c *Context) SchemaStatus() (migration.Status, error) {
	r, err := c.runner()
	if err != nil {
		return migration.Status{}, err
	}
	return r.Status()
}

// TableExists reports whether name is present in the database.
func (c *Context) TableExists(name string) (bool, error) {
	var n int
	var err error
	if c.backend == BackendPostgres {
		err = c.db.QueryRow(
			"SELECT count(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1",
			name,
		).Scan(&n)
	} else {
		err = c.db.QueryRow(
			"SELECT count(*) FROM sqlite_master WHERE type='table' AND name COLLATE NOCASE = ?",
			name,
		).Scan(&n)
	}
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Ping checks that the database is still reachable.
func (c *Context) Ping() error {
	if err := c.db.Ping(); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrStorageUnavailable, err)
	}
	return nil
}

// Close releases the connection pool.
func (c *Context) Close() error {
	c.cache.Purge()
	return c.db.Close()
}

func (c *Context) Backend() Backend { return c.backend }

// Path is the SQLite file path, or "" for PostgreSQL.
func (c *Context) Path() string {
	if c.backend == BackendSQLite {
		return c.dsn
	}
	return ""
}

// DB exposes the pool for diagnostics.
func (c *Context) DB() *sql.DB { return c.db }

// Invalidate drops cached reads for one table.
func (c *Context) Invalidate(table string) {
	c.cache.Invalidate(table)
}

// InvalidateAll drops every cached read.
func (c *Context) InvalidateAll() {
	c.cache.Purge()
}

// Today is the current date in the process's local time zone.
func (c *Context) Today() string {
	return c.now().Format(constants.DateFormat)
}

func (c *Context) timestamp() string {
	return c.now().Format(constants.TimestampFormat)
}

// rebind rewrites ? placeholders as $n for PostgreSQL.
func (c *Context) rebind(query string) string {
	if c.backend != BackendPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (c *Context) exec(query string, args ...any) (sql.Result, error) {
	return c.db.Exec(c.rebind(query), args...)
}

func (c *Context) query(query string, args ...any) (*sql.Rows, error) {
	return c.db.Query(c.rebind(query), args...)
}

func (c *Context) queryRow(query string, args ...any) *sql.Row {
	return c.db.QueryRow(c.rebind(query), args...)
}

// insertReturningID runs an INSERT ... RETURNING statement and scans the key.
func (c *Context) insertReturningID(query string, dest any, args ...any) error {
	return c.queryRow(query, args...).Scan(dest)
}

// missingTable reports whether a load should yield an empty result because
// the table has not been created yet.
func (c *Context) missingTable(table string) bool {
	ok, err := c.TableExists(table)
	return err == nil && !ok
}

// isUniqueViolation recognizes uniqueness failures from either driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var se *sqlite.Error
	if stderrors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	var pe *pq.Error
	if stderrors.As(err, &pe) {
		return pe.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") || strings.Contains(msg, "duplicate key")
}

// classify maps a driver error from a write onto the error taxonomy.
func classify(op, table, key string, err error) error {
	if isUniqueViolation(err) {
		return &errors.DuplicateError{Table: table, Key: key, Err: err}
	}
	logger.Error("storage operation failed", "op", op, "table", table, "error", err)
	return &errors.StorageError{Op: op, Err: err}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
