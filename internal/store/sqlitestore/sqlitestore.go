// Package sqlitestore is the default durable Backend: a single SQLite file
// holding one items table.
//
// The database is configured with:
//   - WAL mode so a reader never blocks the committing writer
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//
// The schema is created by goose migrations embedded in the binary.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/idilsaglam/checklist/internal/model"
	"github.com/idilsaglam/checklist/internal/store"
	"github.com/idilsaglam/checklist/internal/store/sqlitestore/migrations"
)

// FileName is the container name inside the data directory.
const FileName = "checklist.db"

// DB is a SQLite-backed store.Backend.
type DB struct {
	db *sql.DB
}

var _ store.Backend = (*DB)(nil)

// Open creates or opens the database at path and brings its schema up to
// date. Safe to call on an existing file.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Load returns every item ordered by creation time.
func (d *DB) Load(ctx context.Context) ([]model.Item, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, name, is_checked, timestamp
		FROM items
		ORDER BY timestamp ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore load: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlitestore load: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlitestore load: %w", err)
	}
	return items, nil
}

// Commit applies cs in a single transaction.
func (d *DB) Commit(ctx context.Context, cs store.Changeset) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlitestore commit: begin tx: %w", err)
	}
	defer tx.Rollback() // no-op once committed

	for _, it := range cs.Upserts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO items (id, name, is_checked, timestamp)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				is_checked = excluded.is_checked`,
			it.ID.String(), it.Name, it.IsChecked, it.Timestamp.UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("sqlitestore commit: upsert %s: %w", it.ID, err)
		}
	}
	for _, id := range cs.Deletes {
		if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id.String()); err != nil {
			return fmt.Errorf("sqlitestore commit: delete %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlitestore commit: %w", err)
	}
	return nil
}

// Count returns the number of stored items.
func (d *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlitestore count: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (model.Item, error) {
	var (
		id      string
		it      model.Item
		checked bool
		nanos   int64
	)
	if err := row.Scan(&id, &it.Name, &checked, &nanos); err != nil {
		return model.Item{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return model.Item{}, fmt.Errorf("parse id %q: %w", id, err)
	}
	it.ID = parsed
	it.IsChecked = checked
	it.Timestamp = time.Unix(0, nanos).UTC()
	return it, nil
}

// dsn applies the pragmas through the driver so every pooled connection
// gets them, not just the first.
func dsn(path string) string {
	v := url.Values{}
	v.Set("_journal_mode", "WAL")
	v.Set("_synchronous", "NORMAL")
	v.Set("_busy_timeout", "5000")
	return path + "?" + v.Encode()
}

func migrate(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
