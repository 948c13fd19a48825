package task

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// TimeFormatError reports a time string that is not valid 24-hour "HH:MM".
//
// Validation rejects these at the entry gate, so the engine treats one
// surfacing from a stored task as a programming-invariant violation: it
// logs and skips that task's evaluation rather than routing around it.
type TimeFormatError struct {
	Value string
}

func (e *TimeFormatError) Error() string {
	return fmt.Sprintf("invalid time format %q: want HH:MM (24-hour)", e.Value)
}

// IsTimeFormatError reports whether err is (or wraps) a TimeFormatError.
func IsTimeFormatError(err error) bool {
	var tfe *TimeFormatError
	return errors.As(err, &tfe)
}

// ValidationError carries field-keyed messages for a rejected draft.
// It is surfaced to the caller for display, field by field, and never
// propagates past the entry boundary as an opaque failure.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field returns the message for a field, or "" when the field passed.
func (e *ValidationError) Field(name string) string {
	return e.Fields[name]
}

// AsValidationError unwraps err into a ValidationError, if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
