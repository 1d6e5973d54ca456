package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	gosqlite "github.com/mattn/go-sqlite3"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"go.opentelemetry.io/otel"

	"github.com/rs/zerolog"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"

	"tasktracker/db/migrations"
	"tasktracker/internal/core/domain"
)

type DB struct {
	*sql.DB
	QueryBuilder *squirrel.StatementBuilderType
}

type Options struct {
	Path     string
	LogLevel string
}

// Open returns a traced connection pool whose queries are logged through
// zerolog at the configured level.
func Open(opts Options) (*sql.DB, error) {
	dsn := opts.Path

	if dsn == "" {
		dsn = "tasktracker.db"
	}

	if !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=on&_busy_timeout=5000"
	}

	tracedDB, err := otelsql.Open("sqlite3", dsn,
		otelsql.WithDBSystem("sqlite"),
		otelsql.WithDBName("tasktracker"),
		otelsql.WithTracerProvider(otel.GetTracerProvider()),
	)

	if err != nil {
		return nil, err
	}

	// sqldb-logger opens its own pool over the traced driver.
	tracedDriver := tracedDB.Driver()

	if err := tracedDB.Close(); err != nil {
		return nil, err
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "sql").Logger()

	db := sqldblogger.OpenDriver(dsn, tracedDriver, zerologadapter.New(logger),
		sqldblogger.WithMinimumLevel(sqlLogLevel(opts.LogLevel)),
	)

	if isMemory(dsn) {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	return db, nil
}

func NewDB(opts Options) (*DB, error) {
	sqlDB, err := Open(opts)

	if err != nil {
		return nil, err
	}

	if err := RunMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run sqlite migrations: %w", err)
	}

	return Wrap(sqlDB), nil
}

func Wrap(sqlDB *sql.DB) *DB {
	queryBuilder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

	return &DB{
		DB:           sqlDB,
		QueryBuilder: &queryBuilder,
	}
}

func RunMigrations(db *sql.DB) error {
	source, err := iofs.New(migrations.SQLite, "sqlite")

	if err != nil {
		return err
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})

	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)

	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

// StorageError wraps a driver error so callers can match
// domain.ErrStorageUnavailable. Unique violations on users become
// domain.ErrUsernameTaken.
func StorageError(op string, err error) error {
	var sqliteErr gosqlite.Error

	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == gosqlite.ErrConstraintUnique {
		return domain.ErrUsernameTaken
	}

	return domain.NewStorageError(op, err)
}

func isMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func sqlLogLevel(level string) sqldblogger.Level {
	switch strings.ToLower(level) {
	case "trace":
		return sqldblogger.LevelTrace
	case "debug":
		return sqldblogger.LevelDebug
	case "info":
		return sqldblogger.LevelInfo
	default:
		return sqldblogger.LevelError
	}
}
