package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/locvowork/employee_management_sample/ems/internal/logger"
)

// Config is the static connection configuration read at startup.
// For sqlite, DBName is the database file path.
type Config struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	TimeZone        string
	Options         map[string]string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ConnectionError reports that the store is unreachable or rejected the
// credentials.
type ConnectionError struct {
	Driver string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s connection failed: %v", e.Driver, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Provider hands out scoped connections from a database/sql pool.
type Provider struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to the store described by cfg and verifies it with a ping.
func Open(ctx context.Context, cfg Config) (*Provider, error) {
	dialect, err := ParseDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	switch dialect {
	case SQLite:
		db, err = NewSQLiteDB(ctx, cfg)
	default:
		db, err = NewPostgresDB(ctx, cfg)
	}
	if err != nil {
		return nil, err
	}

	logger.InfoLog(ctx, "Database connection established (%s)", dialect)
	return &Provider{db: db, dialect: dialect}, nil
}

// NewProvider wraps an already opened pool.
func NewProvider(db *sql.DB, dialect Dialect) *Provider {
	return &Provider{db: db, dialect: dialect}
}

// NewPostgresDB opens and pings a postgres pool.
func NewPostgresDB(ctx context.Context, cfg Config) (*sql.DB, error) {
	return openPool(ctx, "postgres", PostgresDSN(cfg), cfg)
}

// NewSQLiteDB opens and pings a sqlite pool.
func NewSQLiteDB(ctx context.Context, cfg Config) (*sql.DB, error) {
	return openPool(ctx, "sqlite", SQLiteDSN(cfg), cfg)
}

func openPool(ctx context.Context, driver, dsn string, cfg Config) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, &ConnectionError{Driver: driver, Err: err}
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &ConnectionError{Driver: driver, Err: err}
	}
	return db, nil
}

// PostgresDSN renders cfg as a lib/pq keyword/value connection string.
func PostgresDSN(cfg Config) string {
	params := map[string]string{
		"host":     cfg.Host,
		"port":     fmt.Sprintf("%d", cfg.Port),
		"user":     cfg.User,
		"password": cfg.Password,
		"dbname":   cfg.DBName,
		"sslmode":  cfg.SSLMode,
		"timezone": cfg.TimeZone,
	}
	for k, v := range cfg.Options {
		params[k] = v
	}

	keys := []string{"host", "port", "user", "password", "dbname", "sslmode", "timezone"}
	extra := make([]string, 0, len(cfg.Options))
	for k := range cfg.Options {
		if !contains(keys, k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	keys = append(keys, extra...)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := params[k]
		if v == "" || (k == "port" && v == "0") {
			continue
		}
		parts = append(parts, k+"="+quoteDSNValue(v))
	}
	return strings.Join(parts, " ")
}

// SQLiteDSN renders cfg as a modernc.org/sqlite DSN. Foreign keys are always
// enforced; every other option becomes a pragma, except keys starting with
// "_" which are passed through as driver parameters.
func SQLiteDSN(cfg Config) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")

	keys := make([]string, 0, len(cfg.Options))
	for k := range cfg.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := cfg.Options[k]
		switch {
		case strings.HasPrefix(k, "_"):
			q.Add(k, v)
		case k == "foreign_keys" || k == "busy_timeout":
			// fixed above
		default:
			q.Add("_pragma", fmt.Sprintf("%s(%s)", k, v))
		}
	}

	path := cfg.DBName
	if path == "" {
		path = "ems.db"
	}
	return path + "?" + q.Encode()
}

func quoteDSNValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Acquire takes a dedicated connection from the pool. Callers must hand it
// back with Release.
func (p *Provider) Acquire(ctx context.Context) (*sql.Conn, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, &ConnectionError{Driver: string(p.dialect), Err: err}
	}
	return conn, nil
}

// Release returns conn to the pool. Close failures are logged, never returned.
func (p *Provider) Release(conn *sql.Conn) {
	if conn == nil {
		return
	}
	if err := conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		logger.WarnLog(context.Background(), "Failed to release connection: %v", err)
	}
}

func (p *Provider) Dialect() Dialect {
	return p.dialect
}

func (p *Provider) DB() *sql.DB {
	return p.db
}

func (p *Provider) Close() error {
	return p.db.Close()
}
