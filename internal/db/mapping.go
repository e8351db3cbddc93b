package db

import (
	"github.com/kailas-cloud/searchsync/internal/domain/bulk"
	"github.com/kailas-cloud/searchsync/internal/domain/descriptor"
)

// FieldKind is the engine-neutral type of a mapped document field.
type FieldKind string

// Mapped field kinds.
const (
	FieldKeyword  FieldKind = "keyword"
	FieldText     FieldKind = "text"
	FieldGeoPoint FieldKind = "geo_point"
)

// MappingField is one explicitly mapped document key.
type MappingField struct {
	Name string
	Kind FieldKind
}

// Mapping is the explicit schema of one type inside an index.
// Fields produced by flatten and custom rules are left to the engine's dynamic handling.
type Mapping struct {
	Index  string
	Type   string
	Fields []MappingField
}

// MappingFor derives the mapping of a registered type: the type tag as keyword,
// copy paths as text, geopoint targets as geo points.
func MappingFor(d descriptor.Descriptor) Mapping {
	m := Mapping{
		Index:  d.Index(),
		Type:   d.Name(),
		Fields: []MappingField{{Name: bulk.TypeField, Kind: FieldKeyword}},
	}
	seen := map[string]bool{bulk.TypeField: true}
	add := func(name string, kind FieldKind) {
		if seen[name] {
			return
		}
		seen[name] = true
		m.Fields = append(m.Fields, MappingField{Name: name, Kind: kind})
	}
	for _, p := range d.Spec().CopyPaths() {
		add(p, FieldText)
	}
	for _, t := range d.Spec().GeoTargets() {
		add(t, FieldGeoPoint)
	}
	return m
}

// FieldsOf returns the names of the fields of the given kind.
func (m Mapping) FieldsOf(kind FieldKind) []string {
	var out []string
	for _, f := range m.Fields {
		if f.Kind == kind {
			out = append(out, f.Name)
		}
	}
	return out
}
