package bleve

import (
	"context"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/kailas-cloud/searchsync/internal/db"
	"github.com/kailas-cloud/searchsync/internal/domain/bulk"
	"github.com/kailas-cloud/searchsync/internal/domain/search/request"
	"github.com/kailas-cloud/searchsync/internal/domain/search/result"
)

// deletePageSize bounds the hits collected per pass of DeleteByQuery.
const deletePageSize = 1000

// Search runs a bleve query string query, conjoined with a _type term filter when
// the request names types.
func (e *Engine) Search(ctx context.Context, req request.Request) (result.Page, error) {
	idx, err := e.index(req.Index())
	if err != nil {
		return result.Page{}, err
	}

	sr := bleve.NewSearchRequestOptions(buildQuery(req.Query(), req.Types()), req.Size(), req.From(), false)
	sr.Fields = []string{"*"}

	res, err := idx.SearchInContext(ctx, sr)
	if err != nil {
		return result.Page{}, &db.Error{Op: db.OpQuery, Err: err}
	}

	hits := make([]result.Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		typ, id, ok := bulk.SplitDocumentID(h.ID)
		if !ok {
			continue
		}
		hits = append(hits, result.NewHit(req.Index(), typ, id, h.Score, h.Fields))
	}
	return result.Page{Total: int(res.Total), Hits: hits}, nil
}

// DeleteByQuery deletes every document matching the query string, one page at a time.
func (e *Engine) DeleteByQuery(ctx context.Context, index, q string) error {
	idx, err := e.index(index)
	if err != nil {
		return err
	}

	for {
		sr := bleve.NewSearchRequestOptions(buildQuery(q, nil), deletePageSize, 0, false)
		res, err := idx.SearchInContext(ctx, sr)
		if err != nil {
			return &db.Error{Op: db.OpDeleteByQuery, Err: err}
		}
		if len(res.Hits) == 0 {
			return nil
		}

		batch := idx.NewBatch()
		for _, h := range res.Hits {
			batch.Delete(h.ID)
		}
		if err := idx.Batch(batch); err != nil {
			return &db.Error{Op: db.OpDeleteByQuery, Err: err}
		}
	}
}

func buildQuery(text string, types []string) query.Query {
	var base query.Query
	text = strings.TrimSpace(text)
	if text == "" || text == db.MatchAll {
		base = bleve.NewMatchAllQuery()
	} else {
		base = bleve.NewQueryStringQuery(text)
	}
	if len(types) == 0 {
		return base
	}

	terms := make([]query.Query, len(types))
	for i, t := range types {
		tq := bleve.NewTermQuery(t)
		tq.SetField(typeField)
		terms[i] = tq
	}
	return bleve.NewConjunctionQuery(base, bleve.NewDisjunctionQuery(terms...))
}
