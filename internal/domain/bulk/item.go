package bulk

import (
	"strings"
)

// TypeField is the document key every engine stores the record type under.
const TypeField = "_type"

// Action is the kind of a bulk operation.
type Action string

// Bulk actions.
const (
	ActionIndex  Action = "index"
	ActionDelete Action = "delete"
)

// Item is one operation of a bulk submission (immutable value object).
type Item struct {
	action   Action
	index    string
	typ      string
	id       string
	document map[string]any
}

// Index creates an index (upsert) item carrying the projected document.
func Index(index, typ, id string, document map[string]any) Item {
	return Item{action: ActionIndex, index: index, typ: typ, id: id, document: document}
}

// Delete creates a delete item. Delete items carry no document.
func Delete(index, typ, id string) Item {
	return Item{action: ActionDelete, index: index, typ: typ, id: id}
}

// Action returns the operation kind.
func (i Item) Action() Action { return i.action }

// Index returns the target index name.
func (i Item) Index() string { return i.index }

// Type returns the record type name.
func (i Item) Type() string { return i.typ }

// ID returns the record id.
func (i Item) ID() string { return i.id }

// Document returns the projected document (nil for deletes).
func (i Item) Document() map[string]any { return i.document }

// DocumentID returns the engine document id, unique across the types of one index.
func (i Item) DocumentID() string { return DocumentID(i.typ, i.id) }

// Source returns a copy of the document with the type tag added.
func (i Item) Source() map[string]any {
	src := make(map[string]any, len(i.document)+1)
	for k, v := range i.document {
		src[k] = v
	}
	src[TypeField] = i.typ
	return src
}

// DocumentID joins a type name and a record id. Type names never contain ':'.
func DocumentID(typ, id string) string {
	return typ + ":" + id
}

// SplitDocumentID reverses DocumentID. ok is false for ids without a type prefix.
func SplitDocumentID(docID string) (typ, id string, ok bool) {
	typ, id, ok = strings.Cut(docID, ":")
	if !ok || typ == "" {
		return "", "", false
	}
	return typ, id, true
}

// Options are per-call bulk hints.
type Options struct {
	// Refresh asks the engine to make the writes visible to the next search.
	Refresh bool
}
