package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/searchsync/internal/db"
	"github.com/kailas-cloud/searchsync/internal/domain/bulk"
)

// geoShadowPrefix marks the "lon,lat" string copy of a geo point. FT GEO fields
// cannot index {lat, lon} objects, so each point is stored twice.
const geoShadowPrefix = "__geo_"

// Bulk pipelines JSON.SET and DEL commands in a single DoMulti round-trip.
// Server-side rejections are reported per item; a transport failure fails the call.
// Redis indexes synchronously, so the refresh hint needs no extra command.
func (s *Store) Bulk(ctx context.Context, items []bulk.Item, _ bulk.Options) (bulk.Response, error) {
	if len(items) == 0 {
		return bulk.Response{}, nil
	}

	cmds := make([]rueidis.Completed, len(items))
	for i, it := range items {
		key := s.docKey(it.Index(), it.DocumentID())
		switch it.Action() {
		case bulk.ActionIndex:
			data, err := json.Marshal(withGeoShadows(it.Source()))
			if err != nil {
				return bulk.Response{}, fmt.Errorf("marshal %s: %w", it.DocumentID(), err)
			}
			cmds[i] = s.b().Arbitrary("JSON.SET").Keys(key).Args("$", string(data)).Build()
		case bulk.ActionDelete:
			cmds[i] = s.b().Del().Key(key).Build()
		default:
			return bulk.Response{}, fmt.Errorf("unsupported bulk action %q", it.Action())
		}
	}

	results := s.client.DoMulti(ctx, cmds...)
	resp := bulk.Response{Items: make([]bulk.ItemResult, 0, len(items))}
	for i, res := range results {
		it := items[i]
		err := res.Error()
		if err == nil {
			resp.Items = append(resp.Items, bulk.NewOK(it.DocumentID(), it.Action()))
			continue
		}
		if _, isServer := rueidis.IsRedisErr(err); !isServer {
			return bulk.Response{}, &db.Error{Op: db.OpBulk, Err: fmt.Errorf("key %s: %w", s.docKey(it.Index(), it.DocumentID()), err)}
		}
		resp.Errors = true
		resp.Items = append(resp.Items, bulk.NewError(it.DocumentID(), it.Action(), err))
	}
	return resp, nil
}

// withGeoShadows adds a "lon,lat" string next to every top-level {lat, lon} value.
func withGeoShadows(src map[string]any) map[string]any {
	for k, v := range src {
		m, ok := v.(map[string]any)
		if !ok || len(m) != 2 {
			continue
		}
		lat, okLat := m["lat"].(float64)
		lon, okLon := m["lon"].(float64)
		if !okLat || !okLon {
			continue
		}
		src[geoShadowPrefix+k] = strconv.FormatFloat(lon, 'f', -1, 64) + "," + strconv.FormatFloat(lat, 'f', -1, 64)
	}
	return src
}

// withoutGeoShadows strips the shadow fields from a stored document.
func withoutGeoShadows(src map[string]any) map[string]any {
	for k := range src {
		if strings.HasPrefix(k, geoShadowPrefix) {
			delete(src, k)
		}
	}
	return src
}
