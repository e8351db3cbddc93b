package field

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/domain/record"
)

// DefaultGeoTarget is the document key a geopoint rule writes to.
const DefaultGeoTarget = "location"

// Document is the indexable representation of a record.
type Document = map[string]any

// CustomFunc transforms a record into the target document. It returns the document to
// continue with; an error aborts the projection of the whole record.
type CustomFunc func(ctx context.Context, rec record.Record, doc Document) (Document, error)

// Mode is the closed set of transformations: Copy, Flatten, Geopoint, Custom.
type Mode interface {
	name() string
}

// Copy emits the resolved value verbatim under the rule's path.
type Copy struct{}

// Flatten merges the resolved map's entries into the document root.
type Flatten struct{}

// Geopoint converts a [lon, lat] pair into {lat, lon} stored under Target.
type Geopoint struct {
	Target string
}

// Custom delegates to an injected function.
type Custom struct {
	Fn CustomFunc
}

func (Copy) name() string     { return "copy" }
func (Flatten) name() string  { return "flatten" }
func (Geopoint) name() string { return "geopoint" }
func (Custom) name() string   { return "custom" }

// TargetOrDefault returns the configured target or DefaultGeoTarget.
func (g Geopoint) TargetOrDefault() string {
	if g.Target == "" {
		return DefaultGeoTarget
	}
	return g.Target
}

// ModeName returns the canonical name of m.
func ModeName(m Mode) string {
	if m == nil {
		return ""
	}
	return m.name()
}

// ParseMode maps a configured directive to a Mode. Custom modes cannot be parsed:
// they are registered in code.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "copy", "true", "object":
		return Copy{}, nil
	case "flatten", "array":
		return Flatten{}, nil
	case "geopoint", "geojson":
		return Geopoint{}, nil
	default:
		return nil, fmt.Errorf("unknown field mode %q: %w", s, domain.ErrInvalidFieldSpec)
	}
}

// Rule binds a dot-separated path to a transformation mode.
type Rule struct {
	Path string
	Mode Mode
}

// Spec is an ordered field specification. Order matters for flatten collisions.
type Spec struct {
	rules []Rule
}

// NewSpec validates rules and returns an immutable Spec.
func NewSpec(rules ...Rule) (Spec, error) {
	seen := make(map[string]bool, len(rules))
	out := make([]Rule, 0, len(rules))
	for i, r := range rules {
		if err := validateRule(r); err != nil {
			return Spec{}, fmt.Errorf("rule %d: %w", i, err)
		}
		if seen[r.Path] {
			return Spec{}, fmt.Errorf("duplicate path %q: %w", r.Path, domain.ErrInvalidFieldSpec)
		}
		seen[r.Path] = true
		out = append(out, r)
	}
	return Spec{rules: out}, nil
}

// MustSpec calls NewSpec and panics on error.
func MustSpec(rules ...Rule) Spec {
	s, err := NewSpec(rules...)
	if err != nil {
		panic(err)
	}
	return s
}

// Rules returns a copy of the rules in declaration order.
func (s Spec) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Len returns the number of rules.
func (s Spec) Len() int { return len(s.rules) }

// GeoTargets returns the document keys written by geopoint rules.
func (s Spec) GeoTargets() []string {
	var targets []string
	for _, r := range s.rules {
		if g, ok := r.Mode.(Geopoint); ok {
			targets = append(targets, g.TargetOrDefault())
		}
	}
	return targets
}

// CopyPaths returns the paths of copy rules, which keep their name in the document.
func (s Spec) CopyPaths() []string {
	var paths []string
	for _, r := range s.rules {
		if _, ok := r.Mode.(Copy); ok {
			paths = append(paths, r.Path)
		}
	}
	return paths
}

func validateRule(r Rule) error {
	if r.Path == "" {
		return fmt.Errorf("path is required: %w", domain.ErrInvalidFieldSpec)
	}
	for _, seg := range strings.Split(r.Path, ".") {
		if seg == "" {
			return fmt.Errorf("path %q has an empty segment: %w", r.Path, domain.ErrInvalidFieldSpec)
		}
	}
	switch m := r.Mode.(type) {
	case Copy, Flatten, Geopoint:
		return nil
	case Custom:
		if m.Fn == nil {
			return fmt.Errorf("custom rule %q has no function: %w", r.Path, domain.ErrInvalidFieldSpec)
		}
		return nil
	case nil:
		return fmt.Errorf("rule %q has no mode: %w", r.Path, domain.ErrInvalidFieldSpec)
	default:
		return fmt.Errorf("rule %q has unsupported mode %T: %w", r.Path, m, domain.ErrInvalidFieldSpec)
	}
}
