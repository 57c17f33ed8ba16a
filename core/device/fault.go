package device

import "fmt"

// FaultType selects which protection block of a relay applies.
type FaultType string

const (
	Phase  FaultType = "phase"
	Ground FaultType = "ground"
)

// ParseFaultType accepts exactly "phase" or "ground".
func ParseFaultType(s string) (FaultType, error) {
	switch FaultType(s) {
	case Phase, Ground:
		return FaultType(s), nil
	default:
		return "", fmt.Errorf("unknown fault type %q (want phase or ground)", s)
	}
}

func (f FaultType) String() string { return string(f) }

// TimedCode is the ANSI device number of the time-overcurrent element.
func (f FaultType) TimedCode() string {
	if f == Ground {
		return "51N"
	}
	return "51"
}

// InstCode is the ANSI device number of the instantaneous element.
func (f FaultType) InstCode() string {
	if f == Ground {
		return "50N"
	}
	return "50"
}
