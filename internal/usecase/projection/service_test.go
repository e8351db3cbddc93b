package projection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/domain/field"
	"github.com/kailas-cloud/searchsync/internal/domain/record"
)

func project(t *testing.T, fields map[string]any, rules ...field.Rule) (field.Document, error) {
	t.Helper()
	rec, err := record.New("Place", fields, "")
	require.NoError(t, err)
	return New(nil).Project(context.Background(), rec, field.MustSpec(rules...))
}

func TestProject_PlaceExample(t *testing.T) {
	doc, err := project(t,
		map[string]any{
			"_id":  "1",
			"name": "Cafe",
			"loc":  map[string]any{"coordinates": []any{2.3, 48.8}},
		},
		field.Rule{Path: "name", Mode: field.Copy{}},
		field.Rule{Path: "loc", Mode: field.Geopoint{}},
	)
	require.NoError(t, err)
	assert.Equal(t, field.Document{
		"name":     "Cafe",
		"location": map[string]any{"lat": 48.8, "lon": 2.3},
	}, doc)
}

func TestProject_SkipsAbsentAndNil(t *testing.T) {
	doc, err := project(t,
		map[string]any{"_id": "1", "name": nil},
		field.Rule{Path: "name", Mode: field.Copy{}},
		field.Rule{Path: "missing", Mode: field.Copy{}},
		field.Rule{Path: "address.city", Mode: field.Copy{}},
	)
	require.NoError(t, err)
	assert.Empty(t, doc)
}

func TestProject_CopyNestedPathKeepsDottedKey(t *testing.T) {
	doc, err := project(t,
		map[string]any{"_id": "1", "address": map[string]any{"city": "Paris"}},
		field.Rule{Path: "address.city", Mode: field.Copy{}},
	)
	require.NoError(t, err)
	assert.Equal(t, field.Document{"address.city": "Paris"}, doc)
}

func TestProject_FlattenLastWriteWins(t *testing.T) {
	doc, err := project(t,
		map[string]any{
			"_id":   "1",
			"name":  "Cafe",
			"extra": map[string]any{"name": "Override", "stars": 4},
		},
		field.Rule{Path: "name", Mode: field.Copy{}},
		field.Rule{Path: "extra", Mode: field.Flatten{}},
	)
	require.NoError(t, err)
	assert.Equal(t, field.Document{"name": "Override", "stars": 4}, doc)
}

func TestProject_FlattenSkipsNonMap(t *testing.T) {
	doc, err := project(t,
		map[string]any{"_id": "1", "tags": []any{"a", "b"}},
		field.Rule{Path: "tags", Mode: field.Flatten{}},
	)
	require.NoError(t, err)
	assert.Empty(t, doc)
}

func TestProject_GeopointVariants(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  any
	}{
		{"bare pair", []any{2.3, 48.8}, map[string]any{"lat": 48.8, "lon": 2.3}},
		{"out of range", []any{200.0, 48.8}, nil},
		{"wrong arity", []any{2.3}, nil},
		{"non numeric", []any{"x", 48.8}, nil},
		{"no coordinates", map[string]any{"type": "Point"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := project(t,
				map[string]any{"_id": "1", "loc": tt.value},
				field.Rule{Path: "loc", Mode: field.Geopoint{Target: "where"}},
			)
			require.NoError(t, err)
			if tt.want == nil {
				assert.NotContains(t, doc, "where")
				return
			}
			assert.Equal(t, tt.want, doc["where"])
		})
	}
}

func TestProject_CustomReplacesDocument(t *testing.T) {
	upper := field.Custom{Fn: func(_ context.Context, rec record.Record, doc field.Document) (field.Document, error) {
		out := field.Document{"slug": rec.Type() + "-" + rec.ID()}
		for k, v := range doc {
			out[k] = v
		}
		return out, nil
	}}
	doc, err := project(t,
		map[string]any{"_id": "7", "name": "Cafe"},
		field.Rule{Path: "name", Mode: field.Copy{}},
		field.Rule{Path: "name", Mode: upper},
	)
	require.NoError(t, err)
	assert.Equal(t, field.Document{"name": "Cafe", "slug": "Place-7"}, doc)
}

func TestProject_CustomErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	_, err := project(t,
		map[string]any{"_id": "7", "name": "Cafe", "score": 3},
		field.Rule{Path: "name", Mode: field.Copy{}},
		field.Rule{Path: "score", Mode: field.Custom{Fn: func(context.Context, record.Record, field.Document) (field.Document, error) {
			return nil, boom
		}}},
	)

	var perr *domain.ProjectionError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "Place", perr.Type)
	assert.Equal(t, "7", perr.ID)
	assert.Equal(t, "score", perr.Path)
	assert.ErrorIs(t, err, boom)
}

func TestProject_CustomSkippedWhenPathAbsent(t *testing.T) {
	called := false
	tags := field.Custom{Fn: func(_ context.Context, _ record.Record, doc field.Document) (field.Document, error) {
		called = true
		doc["tags"] = "derived"
		return doc, nil
	}}
	doc, err := project(t,
		map[string]any{"_id": "1", "name": "Cafe", "labels": nil},
		field.Rule{Path: "name", Mode: field.Copy{}},
		field.Rule{Path: "tags", Mode: tags},
		field.Rule{Path: "labels", Mode: tags},
	)
	require.NoError(t, err)
	assert.False(t, called, "custom rule must not run for an absent path")
	assert.Equal(t, field.Document{"name": "Cafe"}, doc)
}

func TestProject_EmptySpec(t *testing.T) {
	doc, err := project(t, map[string]any{"_id": "1", "name": "Cafe"})
	require.NoError(t, err)
	assert.Empty(t, doc)
}
