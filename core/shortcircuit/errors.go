package shortcircuit

import (
	"errors"
	"fmt"
)

// ErrIndeterminate matches every *IndeterminateFaultError.
var ErrIndeterminate = errors.New("indeterminate fault duty")

// IndeterminateFaultError reports a bus whose impedance path cannot be resolved.
type IndeterminateFaultError struct {
	Bus    int
	Reason string
}

func (e *IndeterminateFaultError) Error() string {
	return fmt.Sprintf("bus %d: indeterminate fault duty: %s", e.Bus, e.Reason)
}

func (e *IndeterminateFaultError) Is(target error) bool { return target == ErrIndeterminate }
