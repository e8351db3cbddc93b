package result

// Hit is a single engine-returned reference to a matching indexed document.
type Hit struct {
	index  string
	typ    string
	id     string
	score  float64
	source map[string]any
}

// NewHit creates a search hit.
func NewHit(index, typ, id string, score float64, source map[string]any) Hit {
	return Hit{index: index, typ: typ, id: id, score: score, source: source}
}

// Index returns the index the hit came from.
func (h Hit) Index() string { return h.index }

// Type returns the record type name of the hit.
func (h Hit) Type() string { return h.typ }

// ID returns the record identifier.
func (h Hit) ID() string { return h.id }

// Score returns the engine-assigned relevance score.
func (h Hit) Score() float64 { return h.score }

// Source returns the indexed document, when the engine returned it.
func (h Hit) Source() map[string]any { return h.source }

// Page is an ordered list of hits plus the engine-reported total.
type Page struct {
	Total int
	Hits  []Hit
}
