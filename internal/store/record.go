package store

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Record is one entity instance inside a collection. The store treats records
// opaquely except for the "id" field, which identifies them within their
// collection.
type Record map[string]any

// ID returns the record's identifier, or "" when unset.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

const idSuffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID generates a record identifier from a millisecond timestamp plus a
// random base36 suffix. Not guaranteed globally unique under very high
// concurrency; collisions degrade to upsert semantics in Create.
func NewID() string {
	var sb strings.Builder
	for i := 0; i < 9; i++ {
		sb.WriteByte(idSuffixAlphabet[rand.Intn(len(idSuffixAlphabet))])
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sb.String())
}

// clone returns a shallow copy of the record. Nested values are shared;
// callers replace whole records rather than mutating fields in place.
func (r Record) clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func cloneRecords(recs []Record) []Record {
	out := make([]Record, len(recs))
	for i, r := range recs {
		out[i] = r.clone()
	}
	return out
}

// merge shallow-merges src over dst and forces the id back to keep. The
// result is a new record; neither input is modified.
func merge(dst, src Record, keep string) Record {
	out := dst.clone()
	if out == nil {
		out = Record{}
	}
	for k, v := range src {
		out[k] = v
	}
	out["id"] = keep
	return out
}

// ToRecord converts any JSON-serializable value into a Record.
func ToRecord(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

// FromRecord decodes a Record into the given struct pointer.
func FromRecord(rec Record, out any) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}
