package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing record. Lookups return it for absence.
	ErrNotFound = errors.New("not found")
	// ErrUnknownType signals a type name with no registered descriptor.
	ErrUnknownType = errors.New("unknown type")
	// ErrTypeAlreadyRegistered signals a duplicate descriptor registration.
	ErrTypeAlreadyRegistered = errors.New("type already registered")
	// ErrInvalidFieldSpec signals a malformed field specification.
	ErrInvalidFieldSpec = errors.New("invalid field spec")
	// ErrInvalidRecord signals a record without a usable identity.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrInvalidQuery signals malformed search parameters.
	ErrInvalidQuery = errors.New("invalid query")
)

// ProjectionError reports a custom transformation failure for one record.
type ProjectionError struct {
	Type string
	ID   string
	Path string
	Err  error
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("project %s/%s field %q: %v", e.Type, e.ID, e.Path, e.Err)
}

func (e *ProjectionError) Unwrap() error { return e.Err }

// StreamError reports a store read failure that aborted a type's synchronization.
type StreamError struct {
	Type string
	Err  error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream %s: %v", e.Type, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// BulkSubmissionError reports a rejected or failed bulk call. Item outcomes are not decomposed.
type BulkSubmissionError struct {
	Items int
	Err   error
}

func (e *BulkSubmissionError) Error() string {
	return fmt.Sprintf("bulk submission of %d items: %v", e.Items, e.Err)
}

func (e *BulkSubmissionError) Unwrap() error { return e.Err }

// LookupError reports a lookup strategy failure (not absence). It aborts a search.
type LookupError struct {
	Type string
	ID   string
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup %s/%s: %v", e.Type, e.ID, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// ConfigurationError reports a hit that cannot be resolved because its type is not registered.
type ConfigurationError struct {
	Type string
	Err  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration for type %q: %v", e.Type, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// NewConfigurationError wraps ErrUnknownType for the given type name.
func NewConfigurationError(typeName string) error {
	return &ConfigurationError{Type: typeName, Err: ErrUnknownType}
}
