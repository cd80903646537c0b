package graph

import "fmt"

// ValidationError signals a violated precondition on a CRUD call
// (empty type, missing endpoint). "Not found" conditions are reported
// through boolean return values instead, so callers can treat them as
// ordinary control flow.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}
