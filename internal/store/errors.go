package store

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a task id with no stored record.
var ErrNotFound = errors.New("task not found")

// ErrTerminalConflict reports a patch that would set both completed and
// failed, which the data model forbids.
var ErrTerminalConflict = errors.New("completed and failed are mutually exclusive")

// UnavailableError wraps a failure of the primary store. The failover
// wrapper produces these so callers can distinguish "store down, served
// from fallback" from ordinary errors like ErrNotFound.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err is (or wraps) an UnavailableError.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}
