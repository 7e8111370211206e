// Package store persists issued identifiers and per-kind counters.
//
// The registry makes timestamp identifiers unique across processes, and
// SQLSequence and RedisSequence hand out gap-free sequential serials.
// SQL storage runs on SQLite (github.com/mattn/go-sqlite3) or PostgreSQL
// (github.com/lib/pq) with the same schema.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Drivers accepted by Open.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// sqliteParams enables WAL, waits on locked databases and takes the write lock
// when a transaction starts so counter updates serialize.
const sqliteParams = "_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate"

// Config selects and tunes the database.
type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int           // 0 = driver default below
	MaxIdleConns    int           // 0 = driver default below
	ConnMaxLifetime time.Duration // 0 = no limit
}

// DB wraps sql.DB with the driver name and a logger.
type DB struct {
	*sql.DB
	driver string
	logger *zap.Logger
	now    func() time.Time
}

// Open connects to the database and verifies the connection. Call Migrate
// before first use of a fresh database.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("%w: empty DSN", ErrInvalidConfig)
	}

	var dsn string
	maxOpen, maxIdle := cfg.MaxOpenConns, cfg.MaxIdleConns
	switch cfg.Driver {
	case DriverSQLite:
		dsn = sqliteDSN(cfg.DSN)
		maxOpen, maxIdle = orDefault(maxOpen, 4), orDefault(maxIdle, 2)
	case DriverPostgres:
		dsn = cfg.DSN
		maxOpen, maxIdle = orDefault(maxOpen, 25), orDefault(maxIdle, 5)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	sqlDB, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established", zap.String("driver", cfg.Driver))
	return &DB{DB: sqlDB, driver: cfg.Driver, logger: logger, now: time.Now}, nil
}

// Driver returns the driver name the database was opened with.
func (db *DB) Driver() string {
	return db.driver
}

// Close closes the database connection.
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS identifiers (
		id         TEXT PRIMARY KEY,
		kind       TEXT NOT NULL,
		serial     TEXT NOT NULL,
		formatted  TEXT NOT NULL UNIQUE,
		source     TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS counters (
		kind  TEXT PRIMARY KEY,
		value BIGINT NOT NULL
	)`,
}

// Migrate creates missing tables. It is safe to run on every start.
func (db *DB) Migrate(ctx context.Context) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}
		}
		return nil
	})
}

// withTx runs fn in a transaction, rolling back when fn fails or panics.
func (db *DB) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			db.logger.Error("failed to roll back transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// sqliteDSN turns a path or file: URI into a URI carrying sqliteParams.
// Parameters already present in dsn take precedence.
func sqliteDSN(dsn string) string {
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + sqliteParams
}

// isUniqueViolation reports whether err is a unique or primary key
// constraint failure from either driver.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		return pe.Code == "23505" // unique_violation
	}
	return false
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
