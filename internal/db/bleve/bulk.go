package bleve

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/searchsync/internal/db"
	"github.com/kailas-cloud/searchsync/internal/domain/bulk"
)

const typeField = bulk.TypeField

// Bulk applies the items as one bleve batch per target index. A bleve batch is
// atomic, so a failure fails every item of its index and is returned as error.
func (e *Engine) Bulk(ctx context.Context, items []bulk.Item, _ bulk.Options) (bulk.Response, error) {
	if len(items) == 0 {
		return bulk.Response{}, nil
	}
	if err := ctx.Err(); err != nil {
		return bulk.Response{}, err
	}

	var order []string
	byIndex := make(map[string][]bulk.Item)
	for _, it := range items {
		if _, seen := byIndex[it.Index()]; !seen {
			order = append(order, it.Index())
		}
		byIndex[it.Index()] = append(byIndex[it.Index()], it)
	}

	resp := bulk.Response{Items: make([]bulk.ItemResult, 0, len(items))}
	for _, name := range order {
		idx, err := e.index(name)
		if err != nil {
			return bulk.Response{}, err
		}

		batch := idx.NewBatch()
		for _, it := range byIndex[name] {
			switch it.Action() {
			case bulk.ActionIndex:
				if err := batch.Index(it.DocumentID(), it.Source()); err != nil {
					return bulk.Response{}, &db.Error{Op: db.OpBulk, Err: fmt.Errorf("%s: %w", it.DocumentID(), err)}
				}
			case bulk.ActionDelete:
				batch.Delete(it.DocumentID())
			default:
				return bulk.Response{}, fmt.Errorf("unsupported bulk action %q", it.Action())
			}
		}
		if err := idx.Batch(batch); err != nil {
			return bulk.Response{}, &db.Error{Op: db.OpBulk, Err: fmt.Errorf("index %s: %w", name, err)}
		}
		for _, it := range byIndex[name] {
			resp.Items = append(resp.Items, bulk.NewOK(it.DocumentID(), it.Action()))
		}
	}
	return resp, nil
}
