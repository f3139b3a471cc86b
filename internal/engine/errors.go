package engine

import "fmt"

// InvalidContextError reports a caller contract violation: a required field
// of the order context is missing and no safe default exists. This is the
// only error class Evaluate surfaces; everything else fails closed per rule
// or per promotion.
type InvalidContextError struct {
	Field string
}

func (e *InvalidContextError) Error() string {
	return fmt.Sprintf("invalid order context: missing %s", e.Field)
}
