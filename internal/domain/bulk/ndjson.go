package bulk

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type header struct {
	Index string `json:"_index"`
	ID    string `json:"_id"`
}

// EncodeNDJSON renders items as bulk API lines: an action header per item followed
// by the document source for index items. Delete items have no body line.
func EncodeNDJSON(items []Item) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, it := range items {
		h := map[Action]header{it.action: {Index: it.index, ID: it.DocumentID()}}
		if err := enc.Encode(h); err != nil {
			return nil, fmt.Errorf("encode header for %s: %w", it.DocumentID(), err)
		}
		if it.action != ActionIndex {
			continue
		}
		if err := enc.Encode(it.Source()); err != nil {
			return nil, fmt.Errorf("encode document %s: %w", it.DocumentID(), err)
		}
	}
	return buf.Bytes(), nil
}
