package projection

import (
	"context"
	"maps"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/domain/field"
	"github.com/kailas-cloud/searchsync/internal/domain/geo"
	"github.com/kailas-cloud/searchsync/internal/domain/record"
)

// Projector turns stored records into indexable documents.
type Projector struct {
	logger *zap.Logger
}

// New creates a projector.
func New(logger *zap.Logger) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{logger: logger}
}

// Project applies spec to rec in rule order. Absent or nil paths are skipped for every
// mode, custom included, as are values whose shape does not fit the rule. A custom
// rule failure aborts the record.
func (p *Projector) Project(ctx context.Context, rec record.Record, spec field.Spec) (field.Document, error) {
	doc := make(field.Document, spec.Len())

	for _, rule := range spec.Rules() {
		value, ok := rec.Lookup(rule.Path)
		if !ok {
			continue
		}

		switch m := rule.Mode.(type) {
		case field.Custom:
			next, err := m.Fn(ctx, rec, doc)
			if err != nil {
				return nil, &domain.ProjectionError{Type: rec.Type(), ID: rec.ID(), Path: rule.Path, Err: err}
			}
			if next == nil {
				next = make(field.Document)
			}
			doc = next
		case field.Copy:
			doc[rule.Path] = value
		case field.Flatten:
			nested, ok := value.(map[string]any)
			if !ok {
				p.logger.Debug("flatten skipped: not an object",
					zap.String("type", rec.Type()), zap.String("id", rec.ID()), zap.String("path", rule.Path))
				continue
			}
			maps.Copy(doc, nested)
		case field.Geopoint:
			point, ok := geo.ParseLonLat(value)
			if !ok {
				p.logger.Debug("geopoint skipped: invalid coordinates",
					zap.String("type", rec.Type()), zap.String("id", rec.ID()), zap.String("path", rule.Path))
				continue
			}
			doc[m.TargetOrDefault()] = point.Map()
		}
	}

	return doc, nil
}
