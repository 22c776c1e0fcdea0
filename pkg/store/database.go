// Package store reads the council-member lookup table and writes merged
// proposal tables to a relational database through database/sql.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL driver and its quoting and bulk-insert strategy.
type Dialect string

const (
	// DialectPostgres uses lib/pq and COPY for bulk inserts.
	DialectPostgres Dialect = "postgres"

	// DialectSQLite uses modernc.org/sqlite. SQLite has no schemas, so a
	// schema-qualified table "s.t" is stored as the table "s_t".
	DialectSQLite Dialect = "sqlite"
)

// LookupTable is the council-member name to CPF mapping.
const LookupTable = "depara_vereadores_camara_tse"

// ParseDialect validates a driver name.
func ParseDialect(value string) (Dialect, error) {
	switch dialect := Dialect(strings.ToLower(value)); dialect {
	case DialectPostgres, DialectSQLite:
		return dialect, nil
	default:
		return "", fmt.Errorf("unsupported driver %q (want %q or %q)", value, DialectPostgres, DialectSQLite)
	}
}

// Table is a schema-qualified table name.
type Table struct {
	Schema string
	Name   string
}

func (t Table) String() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// Database wraps a *sql.DB together with its dialect.
type Database struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Database, error) {
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// An in-memory SQLite database exists per connection.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to %s database: %w", dialect, err)
	}
	return New(db, dialect), nil
}

// New wraps an existing connection pool.
func New(db *sql.DB, dialect Dialect) *Database {
	return &Database{db: db, dialect: dialect}
}

// DB returns the underlying connection pool.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Dialect returns the database dialect.
func (d *Database) Dialect() Dialect {
	return d.dialect
}

// Close closes the connection pool.
func (d *Database) Close() error {
	return d.db.Close()
}

// QualifiedName returns the quoted table reference for the dialect.
func (d *Database) QualifiedName(table Table) string {
	switch {
	case table.Schema == "":
		return pq.QuoteIdentifier(table.Name)
	case d.dialect == DialectSQLite:
		return pq.QuoteIdentifier(table.Schema + "_" + table.Name)
	default:
		return pq.QuoteIdentifier(table.Schema) + "." + pq.QuoteIdentifier(table.Name)
	}
}
