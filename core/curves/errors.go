package curves

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCurve matches every *UnknownCurveError.
	ErrUnknownCurve = errors.New("unknown curve")
	// ErrInvalidMultiple is returned for a multiple of pickup that is NaN or not positive.
	ErrInvalidMultiple = errors.New("multiple of pickup must be > 0")
	// ErrInvalidTMS is returned for a time multiplier that is NaN or not positive.
	ErrInvalidTMS = errors.New("time multiplier must be > 0")
)

// UnknownCurveError reports an unrecognised curve identifier.
type UnknownCurveError struct {
	ID string
}

func (e *UnknownCurveError) Error() string {
	return fmt.Sprintf("unknown curve %q", e.ID)
}

// Is makes errors.Is(err, ErrUnknownCurve) succeed.
func (e *UnknownCurveError) Is(target error) bool { return target == ErrUnknownCurve }
