package database

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 5 * time.Minute
	defaultConnMaxIdleTime = 1 * time.Minute
)

// DB wraps the connection pool together with the driver it was opened with.
// Queries are written with PostgreSQL placeholders ($1, $2, ...) and rebound
// for SQLite.
type DB struct {
	*sql.DB
	driver string
}

// Open connects to the database, pings it and applies the schema.
func Open(driver, dataSourceName string) (*DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if driver == DriverSQLite {
		dataSourceName = sqliteDSN(dataSourceName)
	}
	sqlDB, err := sql.Open(driver, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite only supports one writer at a time.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxOpenConns(defaultMaxOpenConns)
		sqlDB.SetMaxIdleConns(defaultMaxIdleConns)
		sqlDB.SetConnMaxLifetime(defaultConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(defaultConnMaxIdleTime)
	}

	if err = sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{DB: sqlDB, driver: driver}
	if err := db.applySchema(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Driver returns the driver name the database was opened with.
func (db *DB) Driver() string {
	return db.driver
}

// sqliteConnParams are applied by the driver to every connection it opens.
var sqliteConnParams = []struct{ key, value string }{
	{"_journal_mode", "WAL"},
	{"_busy_timeout", "5000"},
	{"_foreign_keys", "on"},
}

// sqliteDSN appends the connection parameters the caller has not set already.
func sqliteDSN(dsn string) string {
	for _, p := range sqliteConnParams {
		if strings.Contains(dsn, p.key+"=") {
			continue
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + p.key + "=" + p.value
	}
	return dsn
}

func (db *DB) applySchema() error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

// rebind converts $N placeholders into SQLite's ?N form.
func (db *DB) rebind(query string) string {
	if db.driver != DriverSQLite {
		return query
	}
	return placeholderRe.ReplaceAllString(query, "?$1")
}

// isUniqueViolation reports whether err is a unique constraint violation,
// optionally restricted to the named constraint (PostgreSQL only).
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && (constraint == "" || pqErr.Constraint == constraint)
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
