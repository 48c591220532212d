package simpleblog

import (
	"encoding/json"
	"fmt"
)

// ValidateRecords checks a collection passed to Repository.Save: every record
// needs a non-empty unique id and a JSON object payload.
func ValidateRecords(records []Record) error {
	seen := make(map[string]bool, len(records))
	for i, rec := range records {
		if rec.ID == "" {
			return fmt.Errorf("record %d: id is required", i)
		}
		if seen[rec.ID] {
			return fmt.Errorf("record %d: duplicate id %q", i, rec.ID)
		}
		seen[rec.ID] = true
		if !json.Valid(rec.Data) {
			return fmt.Errorf("record %q: data is not valid JSON", rec.ID)
		}
	}
	return nil
}

// CloneRecord returns a deep copy of rec.
func CloneRecord(rec Record) Record {
	data := make([]byte, len(rec.Data))
	copy(data, rec.Data)
	return Record{ID: rec.ID, Data: data}
}
