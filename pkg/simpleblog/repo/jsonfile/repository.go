// Package jsonfile stores each collection as a JSON array in its own file,
// <dir>/<collection>.json. Every operation re-reads the file and every write
// replaces it atomically through a temporary file and rename.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/tendant/simple-blog/pkg/simpleblog"
)

const backendName = "jsonfile"

// Config options for the JSON file repository
type Config struct {
	Dir string // Directory holding the collection files

	// Collections are created as empty arrays when their file is missing.
	// Defaults to authors and blogPosts.
	Collections []simpleblog.Collection
}

// Repository implements simpleblog.Repository on flat JSON files
type Repository struct {
	mu  sync.Mutex
	dir string
}

// New creates the directory and any missing collection files.
func New(config Config) (*Repository, error) {
	if config.Dir == "" {
		return nil, errors.New("directory is required")
	}
	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	r := &Repository{dir: config.Dir}

	collections := config.Collections
	if len(collections) == 0 {
		collections = []simpleblog.Collection{simpleblog.CollectionAuthors, simpleblog.CollectionBlogPosts}
	}
	for _, c := range collections {
		_, err := os.Stat(r.path(c))
		if errors.Is(err, fs.ErrNotExist) {
			if err := r.write(c, nil); err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, &simpleblog.StorageError{Backend: backendName, Key: r.path(c), Op: "stat", Err: err}
		}
	}
	return r, nil
}

func (r *Repository) Load(ctx context.Context, c simpleblog.Collection) ([]simpleblog.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read(c)
}

func (r *Repository) Save(ctx context.Context, c simpleblog.Collection, records []simpleblog.Record) error {
	if err := simpleblog.ValidateRecords(records); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(c, records)
}

func (r *Repository) Get(ctx context.Context, c simpleblog.Collection, id string) (*simpleblog.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.read(c)
	if err != nil {
		return nil, err
	}
	if i := indexOf(records, id); i >= 0 {
		return &records[i], nil
	}
	return nil, simpleblog.ErrRecordNotFound
}

func (r *Repository) Put(ctx context.Context, c simpleblog.Collection, record simpleblog.Record) error {
	if err := simpleblog.ValidateRecords([]simpleblog.Record{record}); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.read(c)
	if err != nil {
		return err
	}
	if i := indexOf(records, record.ID); i >= 0 {
		records[i] = record
	} else {
		records = append(records, record)
	}
	return r.write(c, records)
}

func (r *Repository) Update(ctx context.Context, c simpleblog.Collection, id string, fn func(*simpleblog.Record) error) (*simpleblog.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.read(c)
	if err != nil {
		return nil, err
	}
	i := indexOf(records, id)
	if i < 0 {
		return nil, simpleblog.ErrRecordNotFound
	}

	rec := simpleblog.CloneRecord(records[i])
	if err := fn(&rec); err != nil {
		return nil, err
	}
	rec.ID = id
	if err := simpleblog.ValidateRecords([]simpleblog.Record{rec}); err != nil {
		return nil, err
	}

	records[i] = rec
	if err := r.write(c, records); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) Delete(ctx context.Context, c simpleblog.Collection, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.read(c)
	if err != nil {
		return false, err
	}
	i := indexOf(records, id)
	if i < 0 {
		return false, nil
	}
	records = append(records[:i], records[i+1:]...)
	return true, r.write(c, records)
}

func (r *Repository) Close() error {
	return nil
}

func (r *Repository) path(c simpleblog.Collection) string {
	return filepath.Join(r.dir, filepath.Base(string(c))+".json")
}

// read loads a collection file. A missing file is an empty collection; a file
// that does not hold a JSON array of objects with ids is an error.
func (r *Repository) read(c simpleblog.Collection) ([]simpleblog.Record, error) {
	p := r.path(c)
	raw, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return []simpleblog.Record{}, nil
	}
	if err != nil {
		return nil, &simpleblog.StorageError{Backend: backendName, Key: p, Op: "read", Err: err}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return []simpleblog.Record{}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &simpleblog.StorageError{Backend: backendName, Key: p, Op: "decode", Err: err}
	}

	records := make([]simpleblog.Record, 0, len(items))
	for i, item := range items {
		id, err := RecordID(item)
		if err != nil {
			return nil, &simpleblog.StorageError{Backend: backendName, Key: p, Op: "decode", Err: fmt.Errorf("element %d: %w", i, err)}
		}
		data, err := ensureID(simpleblog.Record{ID: id, Data: item})
		if err != nil {
			return nil, &simpleblog.StorageError{Backend: backendName, Key: p, Op: "decode", Err: fmt.Errorf("element %d: %w", i, err)}
		}
		records = append(records, simpleblog.Record{ID: id, Data: data})
	}
	return records, nil
}

// write replaces the collection file via temp file, fsync and rename.
func (r *Repository) write(c simpleblog.Collection, records []simpleblog.Record) error {
	items := make([]json.RawMessage, 0, len(records))
	for _, rec := range records {
		data, err := ensureID(rec)
		if err != nil {
			return err
		}
		items = append(items, data)
	}

	out, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", c, err)
	}

	p := r.path(c)
	tmp, err := os.CreateTemp(r.dir, "."+filepath.Base(p)+"-*.tmp")
	if err != nil {
		return &simpleblog.StorageError{Backend: backendName, Key: p, Op: "write", Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &simpleblog.StorageError{Backend: backendName, Key: p, Op: "write", Err: err}
	}

	if _, err := tmp.Write(append(out, '\n')); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &simpleblog.StorageError{Backend: backendName, Key: p, Op: "write", Err: err}
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return &simpleblog.StorageError{Backend: backendName, Key: p, Op: "rename", Err: err}
	}
	return nil
}

// RecordID extracts the id of a JSON object. String and numeric ids are
// accepted, as is a legacy "_id" key.
func RecordID(data []byte) (string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return "", fmt.Errorf("record is not a JSON object: %w", err)
	}
	for _, key := range []string{"id", "_id"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s, nil
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			if _, err := strconv.ParseFloat(n.String(), 64); err == nil {
				return n.String(), nil
			}
		}
	}
	return "", errors.New("record has no id")
}

// ensureID returns the record data with its "id" field set to the string
// rec.ID. Numeric and legacy "_id" keys are rewritten so entities decode.
func ensureID(rec simpleblog.Record) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(rec.Data, &fields); err != nil {
		return nil, fmt.Errorf("record %q is not a JSON object: %w", rec.ID, err)
	}
	var current string
	_, legacy := fields["_id"]
	if raw, ok := fields["id"]; ok && !legacy && json.Unmarshal(raw, &current) == nil && current == rec.ID {
		return rec.Data, nil
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	idJSON, err := json.Marshal(rec.ID)
	if err != nil {
		return nil, err
	}
	fields["id"] = idJSON
	delete(fields, "_id")
	return json.Marshal(fields)
}

func indexOf(records []simpleblog.Record, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}
