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
	"github.com/kailas-cloud/searchsync/internal/domain/search/request"
	"github.com/kailas-cloud/searchsync/internal/domain/search/result"
)

// Search runs the query via FT.SEARCH WITHSCORES. The query text uses RediSearch
// syntax and is passed through; type restrictions become a _type TAG filter.
func (s *Store) Search(ctx context.Context, req request.Request) (result.Page, error) {
	if req.Index() == "" {
		return result.Page{}, fmt.Errorf("index name is required")
	}

	args := []string{
		s.indexName(req.Index()),
		buildQuery(req.Query(), req.Types()),
		"WITHSCORES",
		"LIMIT", strconv.Itoa(req.From()), strconv.Itoa(req.Size()),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isUnknownIndex(err) {
			return result.Page{}, fmt.Errorf("%s: %w", req.Index(), db.ErrIndexNotFound)
		}
		return result.Page{}, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseSearchResult(raw, req.Index(), s.keyPrefix(req.Index()))
}

// --- Result parsing ---

func parseSearchResult(raw []rueidis.RedisMessage, index, keyPrefix string) (result.Page, error) {
	if len(raw) == 0 {
		return result.Page{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return result.Page{}, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return result.Page{}, nil
	}

	hits := make([]result.Hit, 0, (len(raw)-1)/3)
	// 3-stride: [total, key1, score1, fields1, key2, score2, fields2, ...]
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}

		fields, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}
		source := decodeSource(parseFieldPairs(fields))

		typ, id, ok := bulk.SplitDocumentID(strings.TrimPrefix(key, keyPrefix))
		if !ok {
			continue
		}
		hits = append(hits, result.NewHit(index, typ, id, score, source))
	}

	return result.Page{Total: int(total), Hits: hits}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// decodeSource reads the "$" JSON root returned for JSON indexes.
func decodeSource(fields map[string]string) map[string]any {
	root, ok := fields["$"]
	if !ok {
		return nil
	}
	var src map[string]any
	if err := json.Unmarshal([]byte(root), &src); err != nil {
		return nil
	}
	return withoutGeoShadows(src)
}

// --- Query building ---

// buildQuery combines the caller query with a type restriction. An empty query or
// db.MatchAll matches everything.
func buildQuery(query string, types []string) string {
	base := strings.TrimSpace(query)
	if base == db.MatchAll {
		base = ""
	}
	filter := buildTypeFilter(types)

	switch {
	case base == "" && filter == "":
		return db.MatchAll
	case base == "":
		return filter
	case filter == "":
		return base
	default:
		return "(" + base + ") " + filter
	}
}

func buildTypeFilter(types []string) string {
	if len(types) == 0 {
		return ""
	}
	escaped := make([]string, len(types))
	for i, t := range types {
		escaped[i] = tagEscaper.Replace(t)
	}
	return fmt.Sprintf("@%s:{%s}", bulk.TypeField, strings.Join(escaped, " | "))
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
	"|", "\\|",
)
