package config

import (
	"fmt"

	"github.com/kailas-cloud/searchsync/internal/domain/descriptor"
	"github.com/kailas-cloud/searchsync/internal/domain/field"
)

// Spec builds the ordered field specification of the type.
func (t TypeConfig) Spec() (field.Spec, error) {
	rules := make([]field.Rule, 0, len(t.Fields))
	for _, f := range t.Fields {
		mode, err := field.ParseMode(f.Mode)
		if err != nil {
			return field.Spec{}, fmt.Errorf("type %s field %s: %w", t.Name, f.Path, err)
		}
		if g, ok := mode.(field.Geopoint); ok && f.Target != "" {
			g.Target = f.Target
			mode = g
		}
		rules = append(rules, field.Rule{Path: f.Path, Mode: mode})
	}
	return field.NewSpec(rules...)
}

// Descriptor builds the type descriptor. refreshDefault applies when the type
// does not set refresh itself.
func (t TypeConfig) Descriptor(refreshDefault bool) (descriptor.Descriptor, error) {
	spec, err := t.Spec()
	if err != nil {
		return descriptor.Descriptor{}, err
	}
	refresh := refreshDefault
	if t.Refresh != nil {
		refresh = *t.Refresh
	}
	return descriptor.New(t.Name, spec,
		descriptor.WithIndex(t.Index),
		descriptor.WithIdentityField(t.IdentityField),
		descriptor.WithRefresh(refresh),
	)
}

// BuildRegistry registers every configured type under the configured default index.
func (c Config) BuildRegistry() (*descriptor.Registry, error) {
	reg := descriptor.NewRegistry(c.Index.Default)
	for _, t := range c.Types {
		d, err := t.Descriptor(c.Index.RefreshOnSave)
		if err != nil {
			return nil, err
		}
		if _, err := reg.Register(d); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
