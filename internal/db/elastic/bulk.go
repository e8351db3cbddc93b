package elastic

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/searchsync/internal/db"
	"github.com/kailas-cloud/searchsync/internal/domain/bulk"
)

type bulkResponse struct {
	Errors bool                          `json:"errors"`
	Items  []map[string]bulkResponseItem `json:"items"`
}

type bulkResponseItem struct {
	ID     string         `json:"_id"`
	Status int            `json:"status"`
	Error  *responseError `json:"error,omitempty"`
}

type responseError struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

func (e *responseError) err() error {
	return errors.New(e.Type + ": " + e.Reason)
}

// Bulk submits the items as one _bulk NDJSON request.
func (s *Store) Bulk(ctx context.Context, items []bulk.Item, opts bulk.Options) (bulk.Response, error) {
	if len(items) == 0 {
		return bulk.Response{}, nil
	}

	body, err := bulk.EncodeNDJSON(items)
	if err != nil {
		return bulk.Response{}, err
	}

	refresh := "false"
	if opts.Refresh {
		refresh = "true"
	}
	res, err := s.es.Bulk(bytes.NewReader(body),
		s.es.Bulk.WithContext(ctx),
		s.es.Bulk.WithRefresh(refresh),
	)
	if err := checkResponse(db.OpBulk, res, err); err != nil {
		return bulk.Response{}, err
	}

	var br bulkResponse
	if err := decode(db.OpBulk, res, &br); err != nil {
		return bulk.Response{}, err
	}

	resp := bulk.Response{Errors: br.Errors, Items: make([]bulk.ItemResult, 0, len(br.Items))}
	for _, entry := range br.Items {
		for action, it := range entry {
			switch {
			case it.Error != nil:
				resp.Items = append(resp.Items, bulk.NewError(it.ID, bulk.Action(action), it.Error.err()))
			case it.Status >= 300 && !(action == string(bulk.ActionDelete) && it.Status == 404):
				resp.Items = append(resp.Items, bulk.NewError(it.ID, bulk.Action(action), fmt.Errorf("status %d", it.Status)))
			default:
				resp.Items = append(resp.Items, bulk.NewOK(it.ID, bulk.Action(action)))
			}
		}
	}
	return resp, nil
}
