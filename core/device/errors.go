package device

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig matches every ConfigurationError.
var ErrInvalidConfig = errors.New("invalid device configuration")

// ConfigurationError reports a device parameter rejected at creation time.
type ConfigurationError struct {
	Device string
	Field  string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Device == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Device, e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrInvalidConfig) hold for any ConfigurationError.
func (e *ConfigurationError) Is(target error) bool { return target == ErrInvalidConfig }

func configErr(device, field string, format string, args ...any) error {
	return &ConfigurationError{Device: device, Field: field, Err: fmt.Errorf(format, args...)}
}
