package base

import (
	"fmt"
	"time"

	"github.com/guregu/null/v6"

	"github.com/beanbocchi/deta/pkg/field"
	"github.com/beanbocchi/deta/pkg/model"
)

const (
	keyField     = "key"
	expiresField = "__expires"
)

var now = time.Now

// Record is an item to be stored. Key is required.
type Record struct {
	Key     string
	Fields  []field.Field
	Expires null.Int64 // Unix seconds after which the service drops the item
}

func NewRecord(key string, fields ...field.Field) Record {
	return Record{Key: key, Fields: fields}
}

// RecordFromMap builds a record from a map holding a "key" entry and, for
// items read back from the service, possibly "__expires".
func RecordFromMap(m map[string]any) Record {
	r := Record{}
	rest := make(map[string]any, len(m))
	for name, v := range m {
		switch name {
		case keyField:
			r.Key, _ = v.(string)
		case expiresField:
			switch ts := v.(type) {
			case float64:
				r.Expires = null.IntFrom(int64(ts))
			case int64:
				r.Expires = null.IntFrom(ts)
			case int:
				r.Expires = null.IntFrom(int64(ts))
			}
		default:
			rest[name] = v
		}
	}
	r.Fields = field.FromMap(rest)
	return r
}

// ExpireAt makes the item expire at t.
func (r Record) ExpireAt(t time.Time) Record {
	r.Expires = null.IntFrom(t.Unix())
	return r
}

// ExpireAfter makes the item expire d from now.
func (r Record) ExpireAfter(d time.Duration) Record {
	return r.ExpireAt(now().Add(d))
}

func (r Record) payload() (map[string]any, error) {
	if r.Key == "" {
		return nil, model.ErrValidation.Fmt("record key must not be empty")
	}

	m := make(map[string]any, len(r.Fields)+2)
	for _, f := range r.Fields {
		switch {
		case f.Name == "":
			return nil, model.ErrValidation.Fmt(fmt.Sprintf("record %q has a field without a name", r.Key))
		case f.Name == keyField || f.Name == expiresField:
			return nil, model.ErrValidation.Fmt(fmt.Sprintf("record %q: field name %q is reserved", r.Key, f.Name))
		case !f.Value.Valid():
			return nil, model.ErrValidation.Fmt(fmt.Sprintf("record %q: value of %q cannot be encoded as JSON", r.Key, f.Name))
		}
		m[f.Name] = f.Value.Interface()
	}
	m[keyField] = r.Key
	if r.Expires.Valid {
		m[expiresField] = r.Expires.Int64
	}
	return m, nil
}
