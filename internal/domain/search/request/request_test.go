package request

import (
	"strings"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New(`{"match_all":{}}`, Options{}, "searchsync")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Index() != "searchsync" {
		t.Errorf("Index() = %q, want default index", r.Index())
	}
	if r.From() != DefaultFrom {
		t.Errorf("From() = %d", r.From())
	}
	if r.Size() != DefaultSize {
		t.Errorf("Size() = %d, want %d", r.Size(), DefaultSize)
	}
	if len(r.Types()) != 0 {
		t.Errorf("Types() = %v", r.Types())
	}
}

func TestNew_ExplicitOptions(t *testing.T) {
	info := struct{ user string }{"u1"}
	r, err := New("cafe", Options{Index: "places", Types: []string{"Place"}, From: 20, Size: 5, Info: info}, "default")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Index() != "places" || r.From() != 20 || r.Size() != 5 {
		t.Errorf("got index=%s from=%d size=%d", r.Index(), r.From(), r.Size())
	}
	if r.Types()[0] != "Place" {
		t.Errorf("Types() = %v", r.Types())
	}
	if r.Info() != info {
		t.Errorf("Info() = %v", r.Info())
	}
	if r.Query() != "cafe" {
		t.Errorf("Query() = %q", r.Query())
	}
}

func TestNew_SizeClamped(t *testing.T) {
	r, err := New("q", Options{Size: MaxSize + 1}, "idx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Size() != MaxSize {
		t.Errorf("Size() = %d, want %d", r.Size(), MaxSize)
	}
	if got := r.ClampSize(50).Size(); got != 50 {
		t.Errorf("ClampSize(50) = %d", got)
	}
	if got := r.ClampSize(0).Size(); got != MaxSize {
		t.Errorf("ClampSize(0) = %d, want unchanged", got)
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New("q", Options{}, ""); err == nil {
		t.Error("expected error without any index")
	}
	if _, err := New("q", Options{From: -1}, "idx"); err == nil {
		t.Error("expected error for negative from")
	}
	if _, err := New(strings.Repeat("x", MaxQueryLength+1), Options{}, "idx"); err == nil {
		t.Error("expected error for long query")
	}
}

func TestNew_TypesCloned(t *testing.T) {
	types := []string{"A"}
	r, _ := New("q", Options{Types: types}, "idx")
	types[0] = "B"
	if r.Types()[0] != "A" {
		t.Error("Types mutation leaked into request")
	}
}
