package descriptor

import (
	"fmt"

	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/domain/field"
	"github.com/kailas-cloud/searchsync/internal/domain/record"
	"github.com/kailas-cloud/searchsync/internal/domain/search"
)

// Descriptor binds a record type to an index name and a field specification.
type Descriptor struct {
	name          string
	index         string
	identityField string
	spec          field.Spec
	lookup        search.Lookup
	refresh       bool
}

// Option configures a Descriptor.
type Option func(*Descriptor)

// WithIndex overrides the registry default index for this type.
func WithIndex(index string) Option {
	return func(d *Descriptor) { d.index = index }
}

// WithIdentityField sets the record field holding the id (default "_id").
func WithIdentityField(name string) Option {
	return func(d *Descriptor) { d.identityField = name }
}

// WithLookup overrides the default identity lookup used by search.
func WithLookup(l search.Lookup) Option {
	return func(d *Descriptor) { d.lookup = l }
}

// WithRefresh asks the engine to make hook writes visible to the next read.
func WithRefresh(refresh bool) Option {
	return func(d *Descriptor) { d.refresh = refresh }
}

// New validates and creates a Descriptor. The index stays empty until registration
// fills in the registry default.
func New(name string, spec field.Spec, opts ...Option) (Descriptor, error) {
	if name == "" {
		return Descriptor{}, fmt.Errorf("type name is required: %w", domain.ErrInvalidFieldSpec)
	}
	if !isValidName(name) {
		return Descriptor{}, fmt.Errorf("type name %q contains invalid characters: %w", name, domain.ErrInvalidFieldSpec)
	}
	d := Descriptor{name: name, spec: spec, identityField: record.DefaultIdentityField}
	for _, opt := range opts {
		opt(&d)
	}
	if d.identityField == "" {
		d.identityField = record.DefaultIdentityField
	}
	if d.index != "" && !isValidName(d.index) {
		return Descriptor{}, fmt.Errorf("index name %q contains invalid characters: %w", d.index, domain.ErrInvalidFieldSpec)
	}
	return d, nil
}

// Name returns the type name.
func (d Descriptor) Name() string { return d.name }

// Index returns the target index name.
func (d Descriptor) Index() string { return d.index }

// IdentityField returns the record field holding the id.
func (d Descriptor) IdentityField() string { return d.identityField }

// Spec returns the field specification.
func (d Descriptor) Spec() field.Spec { return d.spec }

// Lookup returns the type's lookup override, or nil for the default lookup.
func (d Descriptor) Lookup() search.Lookup { return d.lookup }

// Refresh reports whether hook writes request immediate visibility.
func (d Descriptor) Refresh() bool { return d.refresh }

// NewRecord builds a record of this type using the descriptor's identity field.
func (d Descriptor) NewRecord(fields map[string]any) (record.Record, error) {
	return record.New(d.name, fields, d.identityField)
}

// isValidName returns true if s matches [a-zA-Z0-9_.-]+.
func isValidName(s string) bool {
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == '-' || r == '.'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return s != ""
}
