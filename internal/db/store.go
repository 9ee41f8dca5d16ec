// Package db opens the relational store backing the dashboard and makes sure
// the tables it needs exist.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect identifies the SQL flavour spoken by the configured driver.
type Dialect int

const (
	// SQLite uses "?" placeholders.
	SQLite Dialect = iota
	// Postgres uses "$n" placeholders.
	Postgres
)

// ParseDialect maps a driver name from the configuration to a Dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pq":
		return Postgres, nil
	default:
		return 0, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

func (d Dialect) String() string {
	return d.DriverName()
}

// Rebind rewrites "?" placeholders into the dialect's native form.
// Question marks inside single-quoted literals are left alone.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	quoted := false
	for _, r := range query {
		switch {
		case r == '\'':
			quoted = !quoted
			b.WriteRune(r)
		case r == '?' && !quoted:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsUniqueViolation reports whether err was raised by a UNIQUE constraint.
func (d Dialect) IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
			return true
		}
		return code == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE")
	}
	return false
}

// Store is the single store handle shared by all repositories.
// It is opened once at startup and closed on shutdown.
type Store struct {
	// DB is the underlying connection pool.
	DB *sql.DB
	// Dialect is the SQL flavour of DB.
	Dialect Dialect
}

// Open connects to the store, checks that it answers and creates missing tables.
// maxConns caps the number of open connections; values below 1 mean one.
func Open(ctx context.Context, driver, dsn string, maxConns int) (*Store, error) {
	dialect, err := ParseDialect(driver)
	if err != nil {
		return nil, err
	}

	if dialect == SQLite {
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if maxConns < 1 {
		maxConns = 1
	}
	conn.SetMaxOpenConns(maxConns)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	s := &Store{DB: conn, Dialect: dialect}
	if err := s.EnsureSchema(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the resource and user tables if they are absent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	schema := sqliteSchema
	if s.Dialect == Postgres {
		schema = postgresSchema
	}
	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// ensureDir creates the parent directory of a SQLite database file.
// In-memory databases and file: URIs are left alone.
func ensureDir(dsn string) error {
	if dsn == "" || dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.DB.Close()
}
