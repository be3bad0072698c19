package order

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates an ERP lookup by transaction id returned no rows. It
// aborts only the single order's update, never a whole batch or sweep.
var ErrNotFound = errors.New("order: no record matches transaction id")

// UpstreamError is a non-2xx response from the ERP or the WMS. It carries the
// HTTP status and response body for operator visibility, and is isolated at
// the nearest branch boundary (per warehouse in sweeps, per item in batches,
// per field update in webhook handling).
type UpstreamError struct {
	System     string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream returned HTTP %d: %s", e.System, e.StatusCode, e.Body)
}

// IsUpstream reports whether err wraps an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
