package memory

import (
	"context"
	"sync"

	"github.com/tendant/simple-blog/pkg/simpleblog"
)

// Repository implements simpleblog.Repository using in-memory storage
type Repository struct {
	mu          sync.RWMutex
	collections map[simpleblog.Collection]*collection
}

// collection keeps records by id plus their insertion order.
type collection struct {
	order   []string
	records map[string][]byte
}

// New creates a new in-memory repository
func New() simpleblog.Repository {
	return &Repository{
		collections: make(map[simpleblog.Collection]*collection),
	}
}

func (r *Repository) Load(ctx context.Context, c simpleblog.Collection) ([]simpleblog.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	col, ok := r.collections[c]
	if !ok {
		return []simpleblog.Record{}, nil
	}

	records := make([]simpleblog.Record, 0, len(col.order))
	for _, id := range col.order {
		records = append(records, simpleblog.CloneRecord(simpleblog.Record{ID: id, Data: col.records[id]}))
	}
	return records, nil
}

func (r *Repository) Save(ctx context.Context, c simpleblog.Collection, records []simpleblog.Record) error {
	if err := simpleblog.ValidateRecords(records); err != nil {
		return err
	}

	col := &collection{
		order:   make([]string, 0, len(records)),
		records: make(map[string][]byte, len(records)),
	}
	for _, rec := range records {
		// Create a copy to avoid external modifications
		rec = simpleblog.CloneRecord(rec)
		col.order = append(col.order, rec.ID)
		col.records[rec.ID] = rec.Data
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections[c] = col
	return nil
}

func (r *Repository) Get(ctx context.Context, c simpleblog.Collection, id string) (*simpleblog.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	col, ok := r.collections[c]
	if !ok {
		return nil, simpleblog.ErrRecordNotFound
	}
	data, ok := col.records[id]
	if !ok {
		return nil, simpleblog.ErrRecordNotFound
	}
	rec := simpleblog.CloneRecord(simpleblog.Record{ID: id, Data: data})
	return &rec, nil
}

func (r *Repository) Put(ctx context.Context, c simpleblog.Collection, record simpleblog.Record) error {
	if err := simpleblog.ValidateRecords([]simpleblog.Record{record}); err != nil {
		return err
	}
	record = simpleblog.CloneRecord(record)

	r.mu.Lock()
	defer r.mu.Unlock()

	col := r.getOrCreate(c)
	if _, exists := col.records[record.ID]; !exists {
		col.order = append(col.order, record.ID)
	}
	col.records[record.ID] = record.Data
	return nil
}

func (r *Repository) Update(ctx context.Context, c simpleblog.Collection, id string, fn func(*simpleblog.Record) error) (*simpleblog.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	col, ok := r.collections[c]
	if !ok {
		return nil, simpleblog.ErrRecordNotFound
	}
	data, ok := col.records[id]
	if !ok {
		return nil, simpleblog.ErrRecordNotFound
	}

	rec := simpleblog.CloneRecord(simpleblog.Record{ID: id, Data: data})
	if err := fn(&rec); err != nil {
		return nil, err
	}
	rec.ID = id
	if err := simpleblog.ValidateRecords([]simpleblog.Record{rec}); err != nil {
		return nil, err
	}

	col.records[id] = simpleblog.CloneRecord(rec).Data
	return &rec, nil
}

func (r *Repository) Delete(ctx context.Context, c simpleblog.Collection, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	col, ok := r.collections[c]
	if !ok {
		return false, nil
	}
	if _, exists := col.records[id]; !exists {
		return false, nil
	}

	delete(col.records, id)
	for i, existing := range col.order {
		if existing == id {
			col.order = append(col.order[:i], col.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (r *Repository) Close() error {
	return nil
}

// getOrCreate returns the named collection, creating it. Callers hold r.mu.
func (r *Repository) getOrCreate(c simpleblog.Collection) *collection {
	col, ok := r.collections[c]
	if !ok {
		col = &collection{records: make(map[string][]byte)}
		r.collections[c] = col
	}
	return col
}
