package helix

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrTooManyFilters       = errors.New("too many filters")
)

// UnsupportedOperationError is returned by Compile when a filter names an
// operation that is not legal for the resolved field's kind.
type UnsupportedOperationError struct {
	Property  string
	Operation string
	Kind      Kind
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("operation %q is not supported for %s property %q", e.Operation, e.Kind, e.Property)
}

func (e *UnsupportedOperationError) Is(target error) bool {
	return target == ErrUnsupportedOperation
}
