package ledger

import (
	"errors"
	"fmt"
)

// ErrResourceNotFound marks a clean miss: the account resource or view target
// does not exist on chain. Scans treat it as end-of-range, not as a failure.
var ErrResourceNotFound = errors.New("ledger: resource not found")

// UpstreamError wraps transient ledger failures (network errors, timeouts,
// non-2xx responses). Callers resolve these via the stale-serve policy rather
// than surfacing them as hard errors.
type UpstreamError struct {
	Op     string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("ledger: %s: upstream status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("ledger: %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
