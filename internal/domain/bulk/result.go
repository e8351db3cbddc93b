package bulk

// ItemStatus is the processing outcome of a single bulk item.
type ItemStatus string

// Bulk item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// ItemResult is the engine outcome of one item in a bulk call.
type ItemResult struct {
	id     string
	action Action
	status ItemStatus
	err    error
}

// NewOK creates a successful item result.
func NewOK(id string, action Action) ItemResult {
	return ItemResult{id: id, action: action, status: StatusOK}
}

// NewError creates a failed item result.
func NewError(id string, action Action, err error) ItemResult {
	return ItemResult{id: id, action: action, status: StatusError, err: err}
}

// ID returns the engine document id.
func (r ItemResult) ID() string { return r.id }

// Action returns the operation kind.
func (r ItemResult) Action() Action { return r.action }

// Status returns the processing outcome.
func (r ItemResult) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r ItemResult) Err() error { return r.err }

// Response is the engine response to one bulk call. It is treated as opaque
// except for the Errors flag and the failure count.
type Response struct {
	Errors bool
	Items  []ItemResult
}

// Failed returns the number of items the engine rejected.
func (r Response) Failed() int {
	n := 0
	for _, it := range r.Items {
		if it.status == StatusError {
			n++
		}
	}
	return n
}

// FirstError returns the first item error, or nil.
func (r Response) FirstError() error {
	for _, it := range r.Items {
		if it.err != nil {
			return it.err
		}
	}
	return nil
}
