package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-blog/pkg/simpleblog"
)

//go:embed schema.sql
var schemaSQL string

const backendName = "postgres"

// DBTX is an interface that allows us to use either a connection pool or a single connection
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	Begin(context.Context) (pgx.Tx, error)
}

// Repository implements simpleblog.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Migrate creates the blog_records table when it does not exist.
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation, key string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			err = fmt.Errorf("duplicate record: %w", err)
		case "22P02", "22P05": // invalid_text_representation, untranslatable_character
			err = fmt.Errorf("record data is not valid JSON: %w", err)
		case "42P01": // undefined_table
			err = fmt.Errorf("table does not exist - database migration required: %w", err)
		}
	}
	return &simpleblog.StorageError{Backend: backendName, Key: key, Op: operation, Err: err}
}

func (r *Repository) Load(ctx context.Context, c simpleblog.Collection) ([]simpleblog.Record, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, data FROM blog_records WHERE collection = $1 ORDER BY seq`, string(c))
	if err != nil {
		return nil, r.handlePostgresError("load", string(c), err)
	}
	defer rows.Close()

	records := make([]simpleblog.Record, 0)
	for rows.Next() {
		var rec simpleblog.Record
		if err := rows.Scan(&rec.ID, &rec.Data); err != nil {
			return nil, r.handlePostgresError("load", string(c), err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("load", string(c), err)
	}
	return records, nil
}

func (r *Repository) Save(ctx context.Context, c simpleblog.Collection, records []simpleblog.Record) error {
	if err := simpleblog.ValidateRecords(records); err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return r.handlePostgresError("save", string(c), err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM blog_records WHERE collection = $1`, string(c)); err != nil {
		return r.handlePostgresError("save", string(c), err)
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(`INSERT INTO blog_records (collection, id, data) VALUES ($1, $2, $3::jsonb)`,
			string(c), rec.ID, string(rec.Data))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return r.handlePostgresError("save", string(c), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return r.handlePostgresError("save", string(c), err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, c simpleblog.Collection, id string) (*simpleblog.Record, error) {
	return r.get(ctx, r.db, c, id, "")
}

func (r *Repository) Put(ctx context.Context, c simpleblog.Collection, record simpleblog.Record) error {
	if err := simpleblog.ValidateRecords([]simpleblog.Record{record}); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO blog_records (collection, id, data) VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		string(c), record.ID, string(record.Data))
	if err != nil {
		return r.handlePostgresError("put", record.ID, err)
	}
	return nil
}

// Update locks the row with SELECT ... FOR UPDATE for the duration of fn.
func (r *Repository) Update(ctx context.Context, c simpleblog.Collection, id string, fn func(*simpleblog.Record) error) (*simpleblog.Record, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, r.handlePostgresError("update", id, err)
	}
	defer tx.Rollback(ctx)

	rec, err := r.get(ctx, tx, c, id, " FOR UPDATE")
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

	if _, err := tx.Exec(ctx,
		`UPDATE blog_records SET data = $3::jsonb, updated_at = NOW() WHERE collection = $1 AND id = $2`,
		string(c), id, string(rec.Data)); err != nil {
		return nil, r.handlePostgresError("update", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, r.handlePostgresError("update", id, err)
	}
	return rec, nil
}

func (r *Repository) Delete(ctx context.Context, c simpleblog.Collection, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM blog_records WHERE collection = $1 AND id = $2`, string(c), id)
	if err != nil {
		return false, r.handlePostgresError("delete", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Close is a no-op; the pool belongs to the caller.
func (r *Repository) Close() error {
	return nil
}

type rowQuerier interface {
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

func (r *Repository) get(ctx context.Context, q rowQuerier, c simpleblog.Collection, id, suffix string) (*simpleblog.Record, error) {
	rec := &simpleblog.Record{ID: id}
	err := q.QueryRow(ctx,
		`SELECT data FROM blog_records WHERE collection = $1 AND id = $2`+suffix, string(c), id).Scan(&rec.Data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, simpleblog.ErrRecordNotFound
	}
	if err != nil {
		return nil, r.handlePostgresError("get", id, err)
	}
	return rec, nil
}
