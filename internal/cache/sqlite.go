package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vijay-prabhu/inboxdomains/internal/aggregate"
)

const (
	backendSQLite = "sqlite"
	snapshotKey   = "aggregate"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	key TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	cached_at DATETIME NOT NULL
);
`

// SQLiteStore keeps the snapshot as a JSON payload in a SQLite table
type SQLiteStore struct {
	db  *sql.DB
	now Clock
}

// OpenSQLite opens or creates the database at the given path
func OpenSQLite(path string, now Clock) (*SQLiteStore, error) {
	if now == nil {
		now = time.Now
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, storageErr(backendSQLite, "open", err, "create database directory")
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, storageErr(backendSQLite, "open", err, "open database")
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, storageErr(backendSQLite, "open", err, "run migrations")
	}

	return &SQLiteStore{db: db, now: now}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*aggregate.Aggregate, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE key = ?`, snapshotKey,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(backendSQLite, "load", err, "query snapshot")
	}

	agg, err := decode([]byte(payload))
	if err != nil {
		return nil, storageErr(backendSQLite, "load", err, "decode snapshot")
	}
	return agg, nil
}

func (s *SQLiteStore) Save(ctx context.Context, agg *aggregate.Aggregate) error {
	agg.CachedAt = aggregate.Timestamp{Time: s.now()}
	data, err := encode(agg)
	if err != nil {
		return storageErr(backendSQLite, "save", err, "encode snapshot")
	}

	err = s.transaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO snapshots (key, payload, cached_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, cached_at = excluded.cached_at
		`, snapshotKey, string(data), agg.CachedAt.UTC())
		return err
	})
	if err != nil {
		return storageErr(backendSQLite, "save", err, "upsert snapshot")
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, snapshotKey); err != nil {
		return storageErr(backendSQLite, "clear", err, "delete snapshot")
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// transaction runs a function in a transaction
func (s *SQLiteStore) transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
