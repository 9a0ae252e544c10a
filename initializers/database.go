package initializers

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/OraComigo/storage"
)

// ConnectDB opens and pings a database. driverName is a database/sql driver
// ("postgres" or "sqlite").
func ConnectDB(driverName, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if driverName == "sqlite" {
		// one writer at a time for the embedded database
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// NewBackend builds the snapshot backend selected by cfg.StoreDriver.
func NewBackend(ctx context.Context, cfg *Config) (storage.Backend, error) {
	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		return newSQLBackend(ctx, "postgres", "postgres", cfg.DBURL, cfg.SnapshotKey)
	case StoreDriverSQLite:
		return newSQLBackend(ctx, "sqlite", "sqlite3", cfg.SQLitePath, cfg.SnapshotKey)
	case StoreDriverMemory:
		log.Warn().Msg("Using in-memory store; data will not survive a restart")
		return storage.NewMemoryBackend(), nil
	case StoreDriverFile:
		return storage.NewFileBackend(cfg.SnapshotPath), nil
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER: %s", cfg.StoreDriver)
	}
}

func newSQLBackend(ctx context.Context, driverName, dialect, dsn, key string) (storage.Backend, error) {
	db, err := ConnectDB(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driverName, err)
	}

	backend := storage.NewSQLBackend(dialect, db, key)
	if err := backend.EnsureSchema(ctx); err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to prepare snapshot table: %w", err)
	}

	log.Info().Str("driver", driverName).Str("snapshot_key", key).Msg("Connected to snapshot database")
	return backend, nil
}
