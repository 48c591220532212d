// Package sqlite implements simpleblog.Repository on a single SQLite table.
// Records are keyed by (collection, id) and ordered by an autoincrement
// sequence, so a collection keeps its insertion order.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tendant/simple-blog/pkg/simpleblog"
)

//go:embed schema.sql
var schemaFS embed.FS

const backendName = "sqlite"

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, err
	}
	// a single connection serializes writers; _txlock=immediate makes
	// Update take the write lock before it reads
	db.SetMaxOpenConns(1)
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func dsn(path string) string {
	params := "_txlock=immediate&_busy_timeout=5000&_journal_mode=WAL"
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	return path + "?" + params
}

func migrate(db *sql.DB) error {
	sqlBytes, err := fs.ReadFile(schemaFS, "schema.sql")
	if err != nil {
		return err
	}
	if _, err := db.Exec(string(sqlBytes)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Repository implements simpleblog.Repository using SQLite
type Repository struct {
	db     *sql.DB
	ownsDB bool
}

// New wraps an opened database. Close does not close db.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// NewFromPath opens the database at path and owns it.
func NewFromPath(path string) (*Repository, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return &Repository{db: db, ownsDB: true}, nil
}

func (r *Repository) Load(ctx context.Context, c simpleblog.Collection) ([]simpleblog.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, data FROM records WHERE collection = ? ORDER BY seq`, string(c))
	if err != nil {
		return nil, r.wrap("load", string(c), err)
	}
	defer rows.Close()

	records := make([]simpleblog.Record, 0)
	for rows.Next() {
		var rec simpleblog.Record
		var data string
		if err := rows.Scan(&rec.ID, &data); err != nil {
			return nil, r.wrap("load", string(c), err)
		}
		rec.Data = []byte(data)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, r.wrap("load", string(c), err)
	}
	return records, nil
}

func (r *Repository) Save(ctx context.Context, c simpleblog.Collection, records []simpleblog.Record) error {
	if err := simpleblog.ValidateRecords(records); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return r.wrap("save", string(c), err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, string(c)); err != nil {
		return r.wrap("save", string(c), err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (collection, id, data) VALUES (?, ?, ?)`)
	if err != nil {
		return r.wrap("save", string(c), err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, string(c), rec.ID, string(rec.Data)); err != nil {
			return r.wrap("save", rec.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return r.wrap("save", string(c), err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, c simpleblog.Collection, id string) (*simpleblog.Record, error) {
	return r.get(ctx, r.db, c, id)
}

func (r *Repository) Put(ctx context.Context, c simpleblog.Collection, record simpleblog.Record) error {
	if err := simpleblog.ValidateRecords([]simpleblog.Record{record}); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO records (collection, id, data) VALUES (?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		string(c), record.ID, string(record.Data))
	if err != nil {
		return r.wrap("put", record.ID, err)
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, c simpleblog.Collection, id string, fn func(*simpleblog.Record) error) (*simpleblog.Record, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, r.wrap("update", id, err)
	}
	defer tx.Rollback()

	rec, err := r.get(ctx, tx, c, id)
	if err != nil {
		return nil, err
	}
	if err := fn(rec); err != nil {
		return nil, err
	}
	rec.ID = id
	if err := simpleblog.ValidateRecords([]simpleblog.Record{*rec}); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE records SET data = ?, updated_at = CURRENT_TIMESTAMP WHERE collection = ? AND id = ?`,
		string(rec.Data), string(c), id); err != nil {
		return nil, r.wrap("update", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, r.wrap("update", id, err)
	}
	return rec, nil
}

func (r *Repository) Delete(ctx context.Context, c simpleblog.Collection, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE collection = ? AND id = ?`, string(c), id)
	if err != nil {
		return false, r.wrap("delete", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, r.wrap("delete", id, err)
	}
	return n > 0, nil
}

func (r *Repository) Close() error {
	if r.ownsDB {
		return r.db.Close()
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *Repository) get(ctx context.Context, q queryer, c simpleblog.Collection, id string) (*simpleblog.Record, error) {
	var data string
	err := q.QueryRowContext(ctx,
		`SELECT data FROM records WHERE collection = ? AND id = ?`, string(c), id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, simpleblog.ErrRecordNotFound
	}
	if err != nil {
		return nil, r.wrap("get", id, err)
	}
	return &simpleblog.Record{ID: id, Data: []byte(data)}, nil
}

func (r *Repository) wrap(op, key string, err error) error {
	return &simpleblog.StorageError{Backend: backendName, Key: key, Op: op, Err: err}
}
