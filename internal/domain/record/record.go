package record

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/searchsync/internal/domain"
)

// DefaultIdentityField is the field holding a record's id when the type does not override it.
const DefaultIdentityField = "_id"

// Record is a stored document from the primary store (immutable value object).
type Record struct {
	typ    string
	id     string
	fields map[string]any
}

// New creates a Record whose id is taken from fields[identityField].
// Non-string ids are stringified so that 1 and "1" address the same index document.
func New(typ string, fields map[string]any, identityField string) (Record, error) {
	if typ == "" {
		return Record{}, fmt.Errorf("record type is required: %w", domain.ErrInvalidRecord)
	}
	if identityField == "" {
		identityField = DefaultIdentityField
	}
	raw, ok := fields[identityField]
	if !ok || raw == nil {
		return Record{}, fmt.Errorf("record of type %s has no %q: %w", typ, identityField, domain.ErrInvalidRecord)
	}
	id, err := stringifyID(raw)
	if err != nil {
		return Record{}, fmt.Errorf("record of type %s: %w: %w", typ, domain.ErrInvalidRecord, err)
	}
	if id == "" {
		return Record{}, fmt.Errorf("record of type %s has empty id: %w", typ, domain.ErrInvalidRecord)
	}
	return Record{typ: typ, id: id, fields: fields}, nil
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(typ, id string, fields map[string]any) Record {
	return Record{typ: typ, id: id, fields: fields}
}

// Type returns the record type name.
func (r Record) Type() string { return r.typ }

// ID returns the stable record identifier.
func (r Record) ID() string { return r.id }

// Fields returns the raw field map. Callers must not mutate it.
func (r Record) Fields() map[string]any { return r.fields }

// IsZero reports whether r is the zero Record.
func (r Record) IsZero() bool { return r.typ == "" && r.id == "" }

// Lookup resolves a dot-separated path through nested maps.
// A missing segment or a nil value reports ok=false.
func (r Record) Lookup(path string) (any, bool) {
	return Lookup(r.fields, path)
}

// MarshalJSON encodes the field map.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.fields)
}

// Lookup walks m along the dot-separated path.
func Lookup(m map[string]any, path string) (any, bool) {
	if m == nil || path == "" {
		return nil, false
	}
	var cur any = m
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok || v == nil {
				return nil, false
			}
			cur = v
		default:
			return nil, false
		}
	}
	return cur, true
}

func stringifyID(v any) (string, error) {
	switch id := v.(type) {
	case string:
		return id, nil
	case json.Number:
		return id.String(), nil
	case int:
		return strconv.Itoa(id), nil
	case int64:
		return strconv.FormatInt(id, 10), nil
	case int32:
		return strconv.FormatInt(int64(id), 10), nil
	case uint64:
		return strconv.FormatUint(id, 10), nil
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), nil
	case fmt.Stringer:
		return id.String(), nil
	default:
		return "", fmt.Errorf("unsupported id type %T", v)
	}
}
