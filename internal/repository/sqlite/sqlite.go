// Package sqlite persists item documents in a SQLite database, one row
// per item with the attribute document serialized as JSON.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ycedres/cobbler/internal/repository"

	_ "modernc.org/sqlite"
)

// Store implements repository.Store using SQLite.
type Store struct {
	db *sql.DB
}

var _ repository.Store = (*Store)(nil)

// New opens or creates the database at dbPath. Use ":memory:" for an
// ephemeral store in tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		collection TEXT NOT NULL,
		name TEXT NOT NULL,
		doc JSON NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (collection, name)
	);

	CREATE INDEX IF NOT EXISTS idx_items_collection ON items(collection);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Load returns the document stored under (collection, name).
func (s *Store) Load(ctx context.Context, collection, name string) (map[string]any, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT doc FROM items WHERE collection = ? AND name = ?
	`, collection, name).Scan(&data)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%s %q: %w", collection, name, repository.ErrNoDocument)
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal %s %q: %w", collection, name, err)
	}
	return doc, nil
}

// Save writes the document under (collection, name), replacing any
// previous version.
func (s *Store) Save(ctx context.Context, collection, name string, doc map[string]any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s %q: %w", collection, name, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO items (collection, name, doc, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(collection, name) DO UPDATE SET
			doc = excluded.doc,
			updated_at = CURRENT_TIMESTAMP
	`, collection, name, data)

	if err != nil {
		return fmt.Errorf("upsert %s %q: %w", collection, name, err)
	}
	return nil
}

// Delete removes the document stored under (collection, name). Deleting
// a missing document is not an error.
func (s *Store) Delete(ctx context.Context, collection, name string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM items WHERE collection = ? AND name = ?
	`, collection, name)
	if err != nil {
		return fmt.Errorf("delete %s %q: %w", collection, name, err)
	}
	return nil
}

// Names lists the item names present in a collection, sorted.
func (s *Store) Names(ctx context.Context, collection string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM items WHERE collection = ? ORDER BY name
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("query names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate names: %w", err)
	}
	return names, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
