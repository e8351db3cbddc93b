package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/searchsync/internal/db"
	"github.com/kailas-cloud/searchsync/internal/domain/bulk"
	"github.com/kailas-cloud/searchsync/internal/domain/search/request"
	"github.com/kailas-cloud/searchsync/internal/domain/search/result"
)

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Index  string         `json:"_index"`
			ID     string         `json:"_id"`
			Score  float64        `json:"_score"`
			Source map[string]any `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs a _search request. A query starting with '{' is a query DSL object
// passed through verbatim; anything else is a query_string query.
func (s *Store) Search(ctx context.Context, req request.Request) (result.Page, error) {
	q, err := buildQuery(req.Query(), req.Types())
	if err != nil {
		return result.Page{}, err
	}
	body, err := json.Marshal(map[string]any{
		"query": q,
		"from":  req.From(),
		"size":  req.Size(),
	})
	if err != nil {
		return result.Page{}, fmt.Errorf("marshal query: %w", err)
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(req.Index()),
		s.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err := checkResponse(db.OpQuery, res, err); err != nil {
		return result.Page{}, err
	}

	var sr searchResponse
	if err := decode(db.OpQuery, res, &sr); err != nil {
		return result.Page{}, err
	}

	hits := make([]result.Hit, 0, len(sr.Hits.Hits))
	for _, h := range sr.Hits.Hits {
		typ, id, ok := bulk.SplitDocumentID(h.ID)
		if !ok {
			continue
		}
		delete(h.Source, bulk.TypeField)
		hits = append(hits, result.NewHit(h.Index, typ, id, h.Score, h.Source))
	}
	return result.Page{Total: sr.Hits.Total.Value, Hits: hits}, nil
}

// DeleteByQuery removes the matching documents with _delete_by_query.
func (s *Store) DeleteByQuery(ctx context.Context, index, query string) error {
	q, err := buildQuery(query, nil)
	if err != nil {
		return err
	}
	body, err := json.Marshal(map[string]any{"query": q})
	if err != nil {
		return fmt.Errorf("marshal query: %w", err)
	}

	res, err := s.es.DeleteByQuery([]string{index}, bytes.NewReader(body),
		s.es.DeleteByQuery.WithContext(ctx),
		s.es.DeleteByQuery.WithConflicts("proceed"),
	)
	if err := checkResponse(db.OpDeleteByQuery, res, err); err != nil {
		return err
	}
	discard(res)
	return nil
}

func buildQuery(text string, types []string) (any, error) {
	var base any
	text = strings.TrimSpace(text)
	switch {
	case text == "" || text == db.MatchAll:
		base = map[string]any{"match_all": map[string]any{}}
	case strings.HasPrefix(text, "{"):
		if !json.Valid([]byte(text)) {
			return nil, fmt.Errorf("query body is not valid JSON")
		}
		base = json.RawMessage(text)
	default:
		base = map[string]any{"query_string": map[string]any{"query": text}}
	}
	if len(types) == 0 {
		return base, nil
	}
	return map[string]any{
		"bool": map[string]any{
			"must":   base,
			"filter": map[string]any{"terms": map[string]any{bulk.TypeField: types}},
		},
	}, nil
}
