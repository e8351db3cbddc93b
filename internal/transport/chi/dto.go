package chi

import (
	"github.com/kailas-cloud/searchsync/internal/domain/record"
	syncuc "github.com/kailas-cloud/searchsync/internal/usecase/sync"
)

// Error codes returned in ErrorResponse.Code.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "not_found"
	codeUnknownType      = "unknown_type"
	codeIndexNotFound    = "index_not_found"
	codeLookupFailed     = "lookup_failed"
	codeBulkFailed       = "bulk_failed"
	codeUnauthorized     = "unauthorized"
	codeInternalError    = "internal_error"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Index string   `json:"index,omitempty"`
	Types []string `json:"types,omitempty"`
	From  int      `json:"from,omitempty"`
	Size  int      `json:"size,omitempty"`
	Query string   `json:"query"`
	Info  any      `json:"info,omitempty"`
}

// RecordResponse is one record as returned by the API.
type RecordResponse struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// SearchResponse is the body of a successful POST /search.
type SearchResponse struct {
	Items []RecordResponse `json:"items"`
}

// SyncResult is the outcome of one type's synchronization.
type SyncResult struct {
	Type       string   `json:"type"`
	Streamed   int      `json:"streamed"`
	Indexed    int      `json:"indexed"`
	Failed     int      `json:"failed"`
	Batches    int      `json:"batches"`
	DurationMS int64    `json:"duration_ms"`
	BulkErrors []string `json:"bulk_errors,omitempty"`
}

// SyncResponse is the body of POST /sync and POST /sync/{type}.
type SyncResponse struct {
	Results []SyncResult `json:"results"`
	Error   string       `json:"error,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func recordToResponse(r record.Record) RecordResponse {
	return RecordResponse{Type: r.Type(), ID: r.ID(), Fields: r.Fields()}
}

func syncResultToResponse(r syncuc.Result) SyncResult {
	out := SyncResult{
		Type:       r.Type,
		Streamed:   r.Streamed,
		Indexed:    r.Indexed,
		Failed:     r.Failed,
		Batches:    r.Batches,
		DurationMS: r.Duration.Milliseconds(),
	}
	for _, err := range r.BulkErrors {
		out.BulkErrors = append(out.BulkErrors, err.Error())
	}
	return out
}
