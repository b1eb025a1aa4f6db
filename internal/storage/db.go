package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens (and creates if missing) the SQLite database at the provided path.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps every write on the same handle.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// Open creates the parent directory, opens the database and migrates it.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// SQLiteBackend stores every collection as one row of the documents table.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(ctx context.Context, path string) (*SQLiteBackend, error) {
	db, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Load(ctx context.Context, name string) ([]byte, error) {
	row := b.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = ?`, name)
	var body string
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("document get %s: %w", name, err)
	}
	return []byte(body), nil
}

// Replace upserts every document inside one transaction.
func (b *SQLiteBackend) Replace(ctx context.Context, docs map[string][]byte) error {
	if len(docs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	return WithTx(ctx, b.db, func(tx *sql.Tx) error {
		for _, name := range sortedNames(docs) {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
				ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
			`, name, string(docs[name]), now)
			if err != nil {
				return fmt.Errorf("document upsert %s: %w", name, err)
			}
		}
		return nil
	})
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
