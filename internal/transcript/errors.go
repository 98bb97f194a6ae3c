package transcript

import (
	"fmt"
	"strings"
)

// ValidationError names the record and field that made a payload or an
// assembly unacceptable. The whole payload is rejected on the first
// violation; partial results are never produced.
type ValidationError struct {
	// Field is the offending JSON field, empty for cross-record violations.
	Field string
	// Record is the zero-based index of the offending record, -1 when the
	// violation spans the whole payload.
	Record int
	// Reason describes the violation.
	Reason string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("validation error")
	if e.Record >= 0 {
		fmt.Fprintf(&b, ": record %d", e.Record)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": field %q", e.Field)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}
