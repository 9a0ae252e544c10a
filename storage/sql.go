package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
)

const SnapshotTable = "app_snapshot"

const createSnapshotTable = `CREATE TABLE IF NOT EXISTS app_snapshot (
	snapshot_key    TEXT PRIMARY KEY,
	payload         TEXT NOT NULL,
	datetime_update TIMESTAMP NOT NULL
)`

// SQLBackend keeps each snapshot in one app_snapshot row. The same code runs on
// Postgres and SQLite through goqu dialects.
type SQLBackend struct {
	db  *goqu.Database
	raw *sql.DB
	key string
}

// NewSQLBackend wraps an open connection. dialect is a goqu dialect name
// ("postgres" or "sqlite3").
func NewSQLBackend(dialect string, db *sql.DB, key string) *SQLBackend {
	return &SQLBackend{
		db:  goqu.New(dialect, db),
		raw: db,
		key: key,
	}
}

func (b *SQLBackend) EnsureSchema(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, createSnapshotTable); err != nil {
		return fmt.Errorf("create %s table: %w", SnapshotTable, err)
	}
	return nil
}

func (b *SQLBackend) Load(ctx context.Context) ([]byte, error) {
	var payload string
	found, err := b.db.From(SnapshotTable).
		Select("payload").
		Where(goqu.C("snapshot_key").Eq(b.key)).
		ScanValContext(ctx, &payload)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", b.key, err)
	}
	if !found {
		return nil, ErrNoSnapshot
	}
	return []byte(payload), nil
}

func (b *SQLBackend) Save(ctx context.Context, data []byte) error {
	now := time.Now().UTC()

	insert := b.db.Insert(SnapshotTable).
		Rows(goqu.Record{
			"snapshot_key":    b.key,
			"payload":         string(data),
			"datetime_update": now,
		}).
		OnConflict(goqu.DoUpdate("snapshot_key", goqu.Record{
			"payload":         string(data),
			"datetime_update": now,
		}))

	if _, err := insert.Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("save snapshot %q: %w", b.key, err)
	}
	return nil
}

func (b *SQLBackend) Close() error {
	return b.raw.Close()
}
