package redis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/searchsync/internal/db"
	"github.com/kailas-cloud/searchsync/internal/domain/bulk"
	"github.com/kailas-cloud/searchsync/internal/domain/search/request"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestContainsIgnoreCase(t *testing.T) {
	tests := []struct {
		s, sub string
		want   bool
	}{
		{"Index Already Exists", "index already exists", true},
		{"UNKNOWN INDEX NAME", "unknown index name", true},
		{"hello world", "world", true},
		{"short", "longer than input", false},
		{"exact", "exact", true},
		{"", "", true},
		{"notempty", "", true},
	}
	for _, tc := range tests {
		got := containsIgnoreCase(tc.s, tc.sub)
		if got != tc.want {
			t.Errorf("containsIgnoreCase(%q, %q) = %v, want %v", tc.s, tc.sub, got, tc.want)
		}
	}
}

func TestKeys(t *testing.T) {
	s := NewStoreForTest(nil)
	if got := s.indexName("places"); got != "searchsync:places" {
		t.Errorf("indexName = %q", got)
	}
	if got := s.docKey("places", "Place:1"); got != "searchsync:places:Place:1" {
		t.Errorf("docKey = %q", got)
	}
}

// --- json.go tests ---

func TestBulk_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(),
			mock.MatchFn(func(cmd []string) bool {
				return cmd[0] == "JSON.SET" &&
					cmd[1] == "searchsync:places:Place:1" &&
					cmd[2] == "$" &&
					strings.Contains(cmd[3], `"__geo_location":"2.3,48.8"`) &&
					strings.Contains(cmd[3], `"_type":"Place"`)
			}),
			mock.Match("DEL", "searchsync:places:Place:2"),
		).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			mock.Result(mock.RedisInt64(1)),
		})

	s := NewStoreForTest(c)
	resp, err := s.Bulk(context.Background(), []bulk.Item{
		bulk.Index("places", "Place", "1", map[string]any{
			"name":     "Cafe",
			"location": map[string]any{"lat": 48.8, "lon": 2.3},
		}),
		bulk.Delete("places", "Place", "2"),
	}, bulk.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Errors {
		t.Error("expected no item errors")
	}
	if len(resp.Items) != 2 || resp.Items[1].Action() != bulk.ActionDelete {
		t.Errorf("unexpected items: %+v", resp.Items)
	}
}

func TestBulk_ItemRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			mock.Result(mock.RedisError("ERR new objects must be created at the root")),
		})

	s := NewStoreForTest(c)
	resp, err := s.Bulk(context.Background(), []bulk.Item{
		bulk.Index("places", "Place", "1", map[string]any{"name": "a"}),
		bulk.Index("places", "Place", "2", map[string]any{"name": "b"}),
	}, bulk.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Errors || resp.Failed() != 1 {
		t.Errorf("expected one failed item, got %+v", resp)
	}
	if resp.Items[1].ID() != "Place:2" {
		t.Errorf("failed item id = %q", resp.Items[1].ID())
	}
}

func TestBulk_TransportError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{mock.ErrorResult(context.DeadlineExceeded)})

	s := NewStoreForTest(c)
	_, err := s.Bulk(context.Background(), []bulk.Item{bulk.Delete("places", "Place", "1")}, bulk.Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestBulk_Empty(t *testing.T) {
	s := NewStoreForTest(nil) // client not called
	resp, err := s.Bulk(context.Background(), nil, bulk.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Items) != 0 {
		t.Errorf("expected empty response, got %+v", resp)
	}
}

func TestGeoShadows(t *testing.T) {
	src := withGeoShadows(map[string]any{
		"location": map[string]any{"lat": 48.8, "lon": 2.3},
		"other":    map[string]any{"lat": "x", "lon": 1.0},
		"name":     "Cafe",
	})
	if src["__geo_location"] != "2.3,48.8" {
		t.Errorf("shadow = %v", src["__geo_location"])
	}
	if _, ok := src["__geo_other"]; ok {
		t.Error("non-numeric point must not get a shadow")
	}

	stripped := withoutGeoShadows(src)
	if _, ok := stripped["__geo_location"]; ok {
		t.Error("shadow not stripped")
	}
	if stripped["name"] != "Cafe" {
		t.Error("regular field lost")
	}
}

// --- index.go tests ---

func TestCreateIndex_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match(
			"FT.CREATE", "test:idx", "ON", "JSON", "PREFIX", "1", "test:",
			"SCHEMA", "$.field", "AS", "field", "TAG",
		)).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	sc := schema{
		Name:   "test:idx",
		Prefix: "test:",
		Attrs:  []attribute{{Path: "$.field", Alias: "field", Type: attrTag}},
	}
	if err := s.createIndex(context.Background(), sc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c)
	sc := schema{Name: "test:idx", Attrs: []attribute{{Path: "$.f", Alias: "f", Type: attrTag}}}
	err := s.createIndex(context.Background(), sc)
	if !errors.Is(err, db.ErrIndexExists) {
		t.Errorf("expected ErrIndexExists, got %v", err)
	}
}

func TestIndexExists_True(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "test:idx")).
		Return(mock.Result(mock.RedisArray(mock.RedisString("index_name"), mock.RedisString("test:idx"))))

	s := NewStoreForTest(c)
	exists, err := s.indexExists(context.Background(), "test:idx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Error("expected true")
	}
}

func TestIndexExists_False(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "test:idx")).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c)
	exists, err := s.indexExists(context.Background(), "test:idx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("expected false")
	}
}

func placesMapping() db.Mapping {
	return db.Mapping{
		Index: "places",
		Type:  "Place",
		Fields: []db.MappingField{
			{Name: "_type", Kind: db.FieldKeyword},
			{Name: "name", Kind: db.FieldText},
			{Name: "location", Kind: db.FieldGeoPoint},
		},
	}
}

func TestPutMapping_CreatesIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("FT.INFO", "searchsync:places")).
			Return(mock.Result(mock.RedisError("Unknown Index name"))),
		c.EXPECT().
			Do(gomock.Any(), mock.Match(
				"FT.CREATE", "searchsync:places", "ON", "JSON",
				"PREFIX", "1", "searchsync:places:",
				"SCHEMA",
				"$._type", "AS", "_type", "TAG",
				"$.name", "AS", "name", "TEXT",
				"$.__geo_location", "AS", "location", "GEO",
			)).
			Return(mock.Result(mock.RedisString("OK"))),
	)

	s := NewStoreForTest(c)
	if err := s.PutMapping(context.Background(), placesMapping()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPutMapping_AltersExistingIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "searchsync:places")).
		Return(mock.Result(mock.RedisArray(mock.RedisString("index_name"))))
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.ALTER" && cmd[2] == "SCHEMA" && cmd[3] == "ADD" && cmd[4] == "$._type"
		})).
		Return(mock.Result(mock.RedisError("Duplicate field in schema - _type")))
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.ALTER" && cmd[4] != "$._type"
		})).
		Return(mock.Result(mock.RedisString("OK"))).
		Times(2)

	s := NewStoreForTest(c)
	if err := s.PutMapping(context.Background(), placesMapping()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPutMapping_AlterError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "searchsync:places")).
		Return(mock.Result(mock.RedisArray(mock.RedisString("index_name"))))
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.ALTER" })).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	err := s.PutMapping(context.Background(), placesMapping())
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %v", err)
	}
}

func TestDeleteByQuery_Pages(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
				return cmd[0] == "FT.SEARCH" && cmd[1] == "searchsync:places" && cmd[2] == "*" && cmd[3] == "NOCONTENT"
			})).
			Return(mock.Result(mock.RedisArray(
				mock.RedisInt64(2),
				mock.RedisString("searchsync:places:Place:1"),
				mock.RedisString("searchsync:places:Place:2"),
			))),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("DEL", "searchsync:places:Place:1", "searchsync:places:Place:2")).
			Return(mock.Result(mock.RedisInt64(2))),
		c.EXPECT().
			Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })).
			Return(mock.Result(mock.RedisArray(mock.RedisInt64(0)))),
	)

	s := NewStoreForTest(c)
	if err := s.DeleteByQuery(context.Background(), "places", db.MatchAll); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteByQuery_UnknownIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })).
		Return(mock.Result(mock.RedisError("searchsync:places: no such index")))

	s := NewStoreForTest(c)
	if err := s.DeleteByQuery(context.Background(), "places", db.MatchAll); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRefreshAndFlush_NoCommands(t *testing.T) {
	s := NewStoreForTest(nil)
	if err := s.Refresh(context.Background(), "places"); err != nil {
		t.Errorf("Refresh: %v", err)
	}
	if err := s.Flush(context.Background(), "places"); err != nil {
		t.Errorf("Flush: %v", err)
	}
}

func TestSchemaCreateArgs_Validation(t *testing.T) {
	tag := attribute{Path: "$.f", Alias: "f", Type: attrTag}
	tests := []struct {
		name string
		sc   schema
	}{
		{"empty name", schema{Attrs: []attribute{tag}}},
		{"no fields", schema{Name: "test"}},
		{"duplicate alias", schema{Name: "test", Attrs: []attribute{tag, tag}}},
		{"empty path", schema{Name: "test", Attrs: []attribute{{Alias: "f", Type: attrTag}}}},
		{"unknown type", schema{Name: "test", Attrs: []attribute{{Path: "$.f", Alias: "f", Type: "VECTOR"}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.sc.createArgs(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSchemaFor(t *testing.T) {
	s := NewStoreForTest(nil)
	sc, err := s.schemaFor(db.Mapping{
		Index: "places",
		Type:  "Place",
		Fields: []db.MappingField{
			{Name: "_type", Kind: db.FieldKeyword},
			{Name: "address.city", Kind: db.FieldText},
			{Name: "location", Kind: db.FieldGeoPoint},
		},
	})
	if err != nil {
		t.Fatalf("schemaFor: %v", err)
	}

	want := "FT.CREATE searchsync:places ON JSON PREFIX 1 searchsync:places: SCHEMA " +
		"$._type AS _type TAG " +
		`$["address.city"] AS address_city TEXT ` +
		"$.__geo_location AS location GEO"
	if got := sc.String(); got != want {
		t.Errorf("schema:\n got %s\nwant %s", got, want)
	}
}

func TestSchemaFor_UnsupportedKind(t *testing.T) {
	s := NewStoreForTest(nil)
	_, err := s.schemaFor(db.Mapping{
		Index:  "places",
		Fields: []db.MappingField{{Name: "v", Kind: "vector"}},
	})
	if err == nil {
		t.Error("expected error for unsupported kind")
	}
}

func TestJSONPathAndAlias(t *testing.T) {
	if got := jsonPath("name"); got != "$.name" {
		t.Errorf("jsonPath(name) = %q", got)
	}
	if got := jsonPath("address.city"); got != `$["address.city"]` {
		t.Errorf("jsonPath(address.city) = %q", got)
	}
	if got := fieldAlias("address.city"); got != "address_city" {
		t.Errorf("fieldAlias = %q", got)
	}
}

func assertContains(t *testing.T, args []string, want string) {
	t.Helper()
	for _, a := range args {
		if a == want {
			return
		}
	}
	t.Errorf("expected %q in args %v", want, args)
}

// --- search.go tests ---

func mustRequest(t *testing.T, query string, opts request.Options) request.Request {
	t.Helper()
	req, err := request.New(query, opts, "places")
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return req
}

func TestSearch_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match(
			"FT.SEARCH", "searchsync:places", "(cafe) @_type:{Place}",
			"WITHSCORES", "LIMIT", "0", "10", "DIALECT", "2",
		)).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1),
			mock.RedisString("searchsync:places:Place:1"),
			mock.RedisString("0.85"),
			mock.RedisArray(
				mock.RedisString("$"),
				mock.RedisString(`{"_type":"Place","name":"Cafe","__geo_location":"2.3,48.8"}`),
			),
		)))

	s := NewStoreForTest(c)
	page, err := s.Search(context.Background(), mustRequest(t, "cafe", request.Options{Types: []string{"Place"}}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 1 || len(page.Hits) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
	h := page.Hits[0]
	if h.Index() != "places" || h.Type() != "Place" || h.ID() != "1" {
		t.Errorf("hit = %s/%s/%s", h.Index(), h.Type(), h.ID())
	}
	if h.Score() < 0.84 || h.Score() > 0.86 {
		t.Errorf("expected score ~0.85, got %f", h.Score())
	}
	if h.Source()["name"] != "Cafe" {
		t.Errorf("source = %v", h.Source())
	}
	if _, ok := h.Source()["__geo_location"]; ok {
		t.Error("geo shadow leaked into source")
	}
}

func TestSearch_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c)
	page, err := s.Search(context.Background(), mustRequest(t, "", request.Options{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Hits) != 0 {
		t.Errorf("expected 0 hits, got %d", len(page.Hits))
	}
}

func TestSearch_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.Search(context.Background(), mustRequest(t, "x", request.Options{}))
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %v", err)
	}
}

func TestSearch_UnknownIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })).
		Return(mock.Result(mock.RedisError("Unknown Index name")))

	s := NewStoreForTest(c)
	_, err := s.Search(context.Background(), mustRequest(t, "x", request.Options{}))
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		query string
		types []string
		want  string
	}{
		{"", nil, "*"},
		{"*", nil, "*"},
		{"cafe", nil, "cafe"},
		{"", []string{"Place"}, "@_type:{Place}"},
		{"cafe", []string{"Place", "User"}, "(cafe) @_type:{Place | User}"},
		{"x", []string{"my-type"}, `(x) @_type:{my\-type}`},
	}
	for _, tc := range tests {
		if got := buildQuery(tc.query, tc.types); got != tc.want {
			t.Errorf("buildQuery(%q, %v) = %q, want %q", tc.query, tc.types, got, tc.want)
		}
	}
}

// --- helpers ---

// isDBError is a test helper for checking wrapped db.Error.
func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}
