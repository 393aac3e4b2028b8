// Package sqlite is the persistence boundary the scoring core's HealthProfile and
// ScoringResult values cross on their way in and out of storage. The core itself never
// imports this package; callers load a profile here, hand it to scoring.BuildZones, and
// persist the resulting ScoringResult back through here.
package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	_ "embed"

	"github.com/summitpulse/ventiscore/internal/errors"
)

//go:embed schema.sql
var schemaDefinition string

// Database holds the two SQLite connection pools the boundary layer uses: a single
// read-write connection (SQLite allows only one writer) and a pool of read-only readers.
type Database struct {
	ReadWrite *sql.DB
	ReadOnly  *sql.DB
	logger    *slog.Logger
}

// NewDatabase connects to a database file (or ":memory:") and ensures the schema exists.
//
// It establishes two database connections, one for read/write operations and one for read-only operations.
// This is a best practice mentioned in https://github.com/mattn/go-sqlite3/issues/1179#issuecomment-1638083995
func NewDatabase(ctx context.Context, url string, logger *slog.Logger) (*Database, error) {
	db, err := connect(ctx, url, logger)
	if err != nil {
		return nil, errors.Wrap(err, "connect", slog.String("url", url))
	}

	if _, err = db.ReadWrite.ExecContext(ctx, schemaDefinition); err != nil {
		return nil, errors.Wrap(err, "apply schema")
	}

	go db.startDatabaseOptimizer(ctx)

	return db, nil
}

//nolint:gochecknoglobals // once is used to ensure that the SQLite driver is registered only once.
var once sync.Once

const optimizedDriver = "ventiscore_sqlite3optimized"

// registerOptimizedDriver that executes performance-enhancing pragmas on connection.
func registerOptimizedDriver() {
	sql.Register(optimizedDriver,
		&sqlite3.SQLiteDriver{
			Extensions: nil,
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				if _, err := conn.Exec(
					"PRAGMA temp_store = memory;"+
						"PRAGMA mmap_size = 30000000000;", nil); err != nil {
					return fmt.Errorf("exec optimization pragmas: %w", err)
				}
				return nil
			},
		})
}

func connect(ctx context.Context, url string, logger *slog.Logger) (*Database, error) {
	var (
		err         error
		readWriteDB *sql.DB
		readDB      *sql.DB
	)

	isInMemory := strings.Contains(url, ":memory:")
	inMemoryConfig := ""
	if isInMemory {
		url = fmt.Sprintf("file:%s", rand.Text())
		inMemoryConfig = "mode=memory&cache=shared"
	}
	commonConfig := strings.Join([]string{
		"_loc=auto",
		"_journal_mode=wal",
		"_busy_timeout=5000",
		"_synchronous=normal",
		"_foreign_keys=on",
	}, "&")

	readConfig := fmt.Sprintf("file:%s?mode=ro&_txlock=deferred&_query_only=true&%s&%s", url, commonConfig, inMemoryConfig)
	readWriteConfig := fmt.Sprintf("file:%s?mode=rwc&_txlock=immediate&%s&%s", url, commonConfig, inMemoryConfig)

	once.Do(registerOptimizedDriver)

	if readWriteDB, err = sql.Open(optimizedDriver, readWriteConfig); err != nil {
		return nil, fmt.Errorf("open read-write database: %w", err)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "opened database", slog.String("sqlDsn", readWriteConfig))

	readWriteDB.SetMaxOpenConns(1)
	readWriteDB.SetMaxIdleConns(1)
	readWriteDB.SetConnMaxLifetime(time.Hour)
	readWriteDB.SetConnMaxIdleTime(time.Hour)

	if err = readWriteDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping read-write database: %w", err)
	}

	if readDB, err = sql.Open(optimizedDriver, readConfig); err != nil {
		return nil, fmt.Errorf("open read database: %w", err)
	}

	const maxReadConns = 10
	readDB.SetMaxOpenConns(maxReadConns)
	readDB.SetMaxIdleConns(maxReadConns)
	readDB.SetConnMaxLifetime(time.Hour)
	readDB.SetConnMaxIdleTime(time.Hour)

	return &Database{
		ReadWrite: readWriteDB,
		ReadOnly:  readDB,
		logger:    logger,
	}, nil
}

// Close closes the database connections.
func (db *Database) Close() error {
	return errors.Join(db.ReadOnly.Close(), db.ReadWrite.Close())
}

// startDatabaseOptimizer runs optimize once per hour. See https://www.sqlite.org/pragma.html#pragma_optimize.
func (db *Database) startDatabaseOptimizer(ctx context.Context) {
	if _, err := db.ReadWrite.ExecContext(ctx, "PRAGMA optimize = 0x10002;"); err != nil {
		db.logger.LogAttrs(ctx, slog.LevelError, "failed to optimize database",
			errors.SlogError(errors.Wrap(err, "init optimize database")))
	}
	for {
		start := time.Now()
		if _, err := db.ReadWrite.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to optimize database",
				errors.SlogError(errors.Wrap(err, "optimize database")))
		} else {
			db.logger.LogAttrs(ctx, slog.LevelInfo, "optimized database",
				slog.Duration("duration", time.Since(start)))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Hour):
			continue
		}
	}
}
