package db

import "errors"

// Sentinel errors for engine operations.
var (
	ErrIndexNotFound = errors.New("db: index not found")
	ErrIndexExists   = errors.New("db: index already exists")
)

// Op constants name the failing engine call for error context.
// Redis drivers use the command names.
const (
	OpCreateIndex   = "FT.CREATE"
	OpAlterIndex    = "FT.ALTER"
	OpIndexInfo     = "FT.INFO"
	OpSearch        = "FT.SEARCH"
	OpJSONSet       = "JSON.SET"
	OpDel           = "DEL"
	OpBulk          = "bulk"
	OpQuery         = "search"
	OpPutMapping    = "put_mapping"
	OpRefresh       = "refresh"
	OpFlush         = "flush"
	OpDeleteByQuery = "delete_by_query"
	OpPing          = "ping"
	OpOpen          = "open"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
