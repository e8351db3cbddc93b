package bulk

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestIndexItem(t *testing.T) {
	doc := map[string]any{"name": "Cafe"}
	it := Index("places", "Place", "1", doc)

	if it.Action() != ActionIndex {
		t.Errorf("Action() = %q", it.Action())
	}
	if it.Index() != "places" || it.Type() != "Place" || it.ID() != "1" {
		t.Errorf("got %s %s %s", it.Index(), it.Type(), it.ID())
	}
	if it.DocumentID() != "Place:1" {
		t.Errorf("DocumentID() = %q", it.DocumentID())
	}

	src := it.Source()
	if src[TypeField] != "Place" || src["name"] != "Cafe" {
		t.Errorf("Source() = %v", src)
	}
	if _, leaked := doc[TypeField]; leaked {
		t.Error("Source() must not mutate the document")
	}
}

func TestDeleteItem(t *testing.T) {
	it := Delete("places", "Place", "1")
	if it.Action() != ActionDelete {
		t.Errorf("Action() = %q", it.Action())
	}
	if it.Document() != nil {
		t.Errorf("Document() = %v, want nil", it.Document())
	}
}

func TestSplitDocumentID(t *testing.T) {
	typ, id, ok := SplitDocumentID("Place:a:b")
	if !ok || typ != "Place" || id != "a:b" {
		t.Errorf("got %q %q %v", typ, id, ok)
	}
	if _, _, ok := SplitDocumentID("noprefix"); ok {
		t.Error("expected ok=false without separator")
	}
	if _, _, ok := SplitDocumentID(":1"); ok {
		t.Error("expected ok=false for empty type")
	}
}

func TestEncodeNDJSON(t *testing.T) {
	items := []Item{
		Index("places", "Place", "1", map[string]any{"name": "Cafe"}),
		Delete("places", "Place", "2"),
	}
	out, err := EncodeNDJSON(items)
	if err != nil {
		t.Fatalf("EncodeNDJSON: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), out)
	}

	var h map[string]map[string]string
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatal(err)
	}
	if h["index"]["_index"] != "places" || h["index"]["_id"] != "Place:1" {
		t.Errorf("header = %v", h)
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &body); err != nil {
		t.Fatal(err)
	}
	if body["name"] != "Cafe" || body[TypeField] != "Place" {
		t.Errorf("body = %v", body)
	}

	var del map[string]map[string]string
	if err := json.Unmarshal([]byte(lines[2]), &del); err != nil {
		t.Fatal(err)
	}
	if del["delete"]["_id"] != "Place:2" {
		t.Errorf("delete header = %v", del)
	}
}

func TestResponseCounts(t *testing.T) {
	boom := errors.New("mapper_parsing_exception")
	r := Response{Errors: true, Items: []ItemResult{
		NewOK("Place:1", ActionIndex),
		NewError("Place:2", ActionIndex, boom),
		NewOK("Place:3", ActionDelete),
	}}
	if r.Failed() != 1 {
		t.Errorf("Failed() = %d", r.Failed())
	}
	if !errors.Is(r.FirstError(), boom) {
		t.Errorf("FirstError() = %v", r.FirstError())
	}
	if r.Items[1].Status() != StatusError || r.Items[0].Status() != StatusOK {
		t.Error("unexpected statuses")
	}
}
