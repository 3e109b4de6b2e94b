package advisor

import (
	"errors"
	"fmt"
)

// ErrDisabled is returned by the disabled advisor. It is not a failure:
// callers show a notice and carry on.
var ErrDisabled = errors.New("advisor disabled: no API key configured")

// UnavailableError reports that the text-generation service could not
// produce advice for this request.
type UnavailableError struct {
	Reason string
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return "advisor unavailable: " + e.Reason
	}
	return fmt.Sprintf("advisor unavailable: %s: %v", e.Reason, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// IsUnavailable reports whether err is (or wraps) an *UnavailableError.
func IsUnavailable(err error) bool {
	var e *UnavailableError
	return errors.As(err, &e)
}
