package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chris-regnier/contentcal/internal/item"
	"github.com/chris-regnier/contentcal/internal/source"
	_ "github.com/tursodatabase/go-libsql"
)

// Store implements source.Store using SQLite via Turso/libSQL.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the item database in dataDir.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %v", source.ErrStorage, err)
	}

	dbPath := filepath.Join(dataDir, "contentcal.db")
	db, err := sql.Open("libsql", "file:"+dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", source.ErrStorage, err)
	}

	// The pragma answers with the resulting mode, so it has to be read as a row.
	var mode string
	if err := db.QueryRow("PRAGMA journal_mode=WAL").Scan(&mode); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: enabling WAL mode: %v", source.ErrStorage, err)
	}

	if _, err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

const columns = "kind, id, title, status, platforms, body, scheduled_at, published_at, created_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (item.Item, error) {
	var it item.Item
	var kind, status, platforms string
	if err := row.Scan(&kind, &it.ID, &it.Title, &status, &platforms, &it.Body, &it.ScheduledAt, &it.PublishedAt, &it.CreatedAt); err != nil {
		return item.Item{}, err
	}
	it.Kind = item.Kind(kind)
	it.Status = item.Status(status)
	if platforms != "" {
		if err := json.Unmarshal([]byte(platforms), &it.Platforms); err != nil {
			return item.Item{}, fmt.Errorf("%w: decoding platforms of %s: %v", source.ErrStorage, it.Ref(), err)
		}
	}
	return it, nil
}

func encodePlatforms(p []string) string {
	if len(p) == 0 {
		return "[]"
	}
	data, _ := json.Marshal(p)
	return string(data)
}

// Create persists a new item.
func (s *Store) Create(ctx context.Context, it item.Item) error {
	if err := it.Validate(); err != nil {
		return fmt.Errorf("%w: %v", source.ErrValidation, err)
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO items ("+columns+", updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		string(it.Kind), it.ID, it.Title, string(it.Status), encodePlatforms(it.Platforms), it.Body,
		it.ScheduledAt, it.PublishedAt, it.CreatedAt,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("%w: inserting item: %v", source.ErrStorage, err)
	}
	return nil
}

// Get retrieves one item.
func (s *Store) Get(ctx context.Context, ref item.Ref) (item.Item, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+columns+" FROM items WHERE kind = ? AND id = ?", string(ref.Kind), ref.ID,
	)
	it, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return item.Item{}, fmt.Errorf("%w: %s", source.ErrNotFound, ref)
		}
		return item.Item{}, fmt.Errorf("%w: querying item: %v", source.ErrStorage, err)
	}
	return it, nil
}

// List returns items of the requested kinds ordered by their effective date.
// The date range is applied after loading since the anchor depends on status.
func (s *Store) List(ctx context.Context, opts source.ListOptions) ([]item.Item, error) {
	query := "SELECT " + columns + " FROM items"
	var args []any

	if len(opts.Kinds) > 0 {
		marks := make([]string, len(opts.Kinds))
		for i, k := range opts.Kinds {
			marks[i] = "?"
			args = append(args, string(k))
		}
		query += " WHERE kind IN (" + strings.Join(marks, ", ") + ")"
	}
	query += " ORDER BY COALESCE(NULLIF(published_at, ''), NULLIF(scheduled_at, ''), created_at), kind, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing items: %v", source.ErrStorage, err)
	}
	defer rows.Close()

	var items []item.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning row: %v", source.ErrStorage, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating rows: %v", source.ErrStorage, err)
	}

	return source.Filter(items, opts), nil
}

// Reschedule moves a mutable item to newDate.
func (s *Store) Reschedule(ctx context.Context, ref item.Ref, newDate time.Time) (item.Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return item.Item{}, fmt.Errorf("%w: beginning transaction: %v", source.ErrStorage, err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		"SELECT "+columns+" FROM items WHERE kind = ? AND id = ?", string(ref.Kind), ref.ID,
	)
	it, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return item.Item{}, fmt.Errorf("%w: %s", source.ErrNotFound, ref)
		}
		return item.Item{}, fmt.Errorf("%w: checking item: %v", source.ErrStorage, err)
	}
	if err := source.CheckMutable(it); err != nil {
		return item.Item{}, err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE items SET scheduled_at = ?, updated_at = ? WHERE kind = ? AND id = ?",
		item.FormatTimestamp(newDate), time.Now().UTC().Format(time.RFC3339), string(ref.Kind), ref.ID,
	); err != nil {
		return item.Item{}, fmt.Errorf("%w: updating item: %v", source.ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		return item.Item{}, fmt.Errorf("%w: committing: %v", source.ErrStorage, err)
	}

	return s.Get(ctx, ref)
}

// Delete removes an item permanently.
func (s *Store) Delete(ctx context.Context, ref item.Ref) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM items WHERE kind = ? AND id = ?", string(ref.Kind), ref.ID)
	if err != nil {
		return fmt.Errorf("%w: deleting item: %v", source.ErrStorage, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected: %v", source.ErrStorage, err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", source.ErrNotFound, ref)
	}
	return nil
}
