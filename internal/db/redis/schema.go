package redis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/searchsync/internal/db"
)

// attrType is the type of one FT schema attribute.
type attrType string

const (
	attrTag  attrType = "TAG"
	attrText attrType = "TEXT"
	attrGeo  attrType = "GEO"
)

// attribute indexes one JSON path under an attribute name.
type attribute struct {
	Path  string
	Alias string
	Type  attrType
}

// schema is the FT index over the JSON documents of one logical index.
type schema struct {
	Name   string
	Prefix string
	Attrs  []attribute
}

// schemaFor translates an engine-neutral mapping into the FT index of m.Index.
// Geo points are indexed from their "lon,lat" shadow field.
func (s *Store) schemaFor(m db.Mapping) (schema, error) {
	sc := schema{Name: s.indexName(m.Index), Prefix: s.keyPrefix(m.Index)}
	for _, f := range m.Fields {
		a := attribute{Path: jsonPath(f.Name), Alias: fieldAlias(f.Name)}
		switch f.Kind {
		case db.FieldKeyword:
			a.Type = attrTag
		case db.FieldText:
			a.Type = attrText
		case db.FieldGeoPoint:
			a.Path = jsonPath(geoShadowPrefix + f.Name)
			a.Type = attrGeo
		default:
			return schema{}, fmt.Errorf("field %s: unsupported kind %q", f.Name, f.Kind)
		}
		sc.Attrs = append(sc.Attrs, a)
	}
	return sc, sc.validate()
}

func (sc schema) validate() error {
	if sc.Name == "" {
		return errors.New("index name is required")
	}
	if len(sc.Attrs) == 0 {
		return errors.New("at least one field is required")
	}
	seen := make(map[string]struct{}, len(sc.Attrs))
	for _, a := range sc.Attrs {
		if _, dup := seen[a.Alias]; dup {
			return fmt.Errorf("duplicate field name: %s", a.Alias)
		}
		seen[a.Alias] = struct{}{}
	}
	return nil
}

// createArgs renders the FT.CREATE arguments: name ON JSON PREFIX 1 <prefix> SCHEMA ...
func (sc schema) createArgs() ([]string, error) {
	if err := sc.validate(); err != nil {
		return nil, err
	}
	args := []string{sc.Name, "ON", "JSON"}
	if sc.Prefix != "" {
		args = append(args, "PREFIX", "1", sc.Prefix)
	}
	args = append(args, "SCHEMA")
	for _, a := range sc.Attrs {
		attrArgs, err := a.args()
		if err != nil {
			return nil, err
		}
		args = append(args, attrArgs...)
	}
	return args, nil
}

func (a attribute) args() ([]string, error) {
	if a.Path == "" {
		return nil, errors.New("field path is required")
	}
	args := []string{a.Path}
	if a.Alias != "" {
		args = append(args, "AS", a.Alias)
	}
	switch a.Type {
	case attrTag, attrText, attrGeo:
		return append(args, string(a.Type)), nil
	default:
		return nil, fmt.Errorf("field %s: unknown attribute type %q", a.Path, a.Type)
	}
}

// String resembles the FT.CREATE command, for logs.
func (sc schema) String() string {
	args, err := sc.createArgs()
	if err != nil {
		return "FT.CREATE " + sc.Name + " <invalid: " + err.Error() + ">"
	}
	return "FT.CREATE " + strings.Join(args, " ")
}

// jsonPath addresses a top-level document key. Keys with dots (copied nested paths)
// use bracket notation.
func jsonPath(name string) string {
	if isPlainName(name) {
		return "$." + name
	}
	return `$["` + strings.ReplaceAll(name, `"`, `\"`) + `"]`
}

// fieldAlias turns a document key into a schema attribute name.
func fieldAlias(name string) string {
	if isPlainName(name) {
		return name
	}
	var b strings.Builder
	for _, r := range name {
		if isPlainRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func isPlainName(s string) bool {
	for _, r := range s {
		if !isPlainRune(r) {
			return false
		}
	}
	return s != ""
}

func isPlainRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
}
