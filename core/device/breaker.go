package device

import (
	"fmt"
	"math"
)

// BreakerType is the interrupting medium of a breaker.
type BreakerType string

const (
	VCB BreakerType = "VCB"
	ACB BreakerType = "ACB"
	OCB BreakerType = "OCB"
)

const (
	DefaultFrequencyHz = 60.0
	// DefaultMakingFactor relates the peak making capacity to the symmetrical
	// interrupting rating when none is given.
	DefaultMakingFactor = 2.5
)

// CircuitBreaker is the switching device a relay trips.
type CircuitBreaker struct {
	Name               string  `json:"name" yaml:"name"`
	Bus                int     `json:"bus" yaml:"bus"`
	RatedVoltageKV     float64 `json:"rated_voltage_kv" yaml:"rated_voltage_kv"`
	ContinuousCurrentA float64 `json:"continuous_current_a" yaml:"continuous_current_a"`

	InterruptingRatingKASym  float64 `json:"interrupting_rating_ka_sym" yaml:"interrupting_rating_ka_sym"`
	InterruptingRatingKAAsym float64 `json:"interrupting_rating_ka_asym,omitempty" yaml:"interrupting_rating_ka_asym,omitempty"`
	MakingCapacityKAPeak     float64 `json:"making_capacity_ka_peak,omitempty" yaml:"making_capacity_ka_peak,omitempty"`

	OperatingTimeCycles float64 `json:"operating_time_cycles" yaml:"operating_time_cycles"`
	// OperatingTimeMS overrides the cycle based operating time when set.
	OperatingTimeMS float64     `json:"operating_time_ms,omitempty" yaml:"operating_time_ms,omitempty"`
	FrequencyHz     float64     `json:"frequency_hz,omitempty" yaml:"frequency_hz,omitempty"`
	Type            BreakerType `json:"cb_type" yaml:"cb_type"`
}

// SetDefaults fills optional ratings.
func (cb *CircuitBreaker) SetDefaults() {
	if cb.FrequencyHz == 0 {
		cb.FrequencyHz = DefaultFrequencyHz
	}
	if cb.InterruptingRatingKAAsym == 0 {
		cb.InterruptingRatingKAAsym = cb.InterruptingRatingKASym
	}
	if cb.MakingCapacityKAPeak == 0 {
		cb.MakingCapacityKAPeak = DefaultMakingFactor * cb.InterruptingRatingKASym
	}
}

// Validate checks that every rating is positive.
func (cb CircuitBreaker) Validate() error {
	name := cb.Label()
	if cb.Bus < 0 {
		return configErr(name, "bus", "bus index must be non-negative, got %d", cb.Bus)
	}
	ratings := []struct {
		field string
		v     float64
	}{
		{"rated_voltage_kv", cb.RatedVoltageKV},
		{"continuous_current_a", cb.ContinuousCurrentA},
		{"interrupting_rating_ka_sym", cb.InterruptingRatingKASym},
		{"interrupting_rating_ka_asym", cb.InterruptingRatingKAAsym},
		{"making_capacity_ka_peak", cb.MakingCapacityKAPeak},
		{"frequency_hz", cb.FrequencyHz},
	}
	for _, r := range ratings {
		if !(r.v > 0) || math.IsInf(r.v, 0) {
			return configErr(name, r.field, "must be positive, got %v", r.v)
		}
	}
	if cb.OperatingTimeMS < 0 {
		return configErr(name, "operating_time_ms", "must be non-negative, got %v", cb.OperatingTimeMS)
	}
	if cb.OperatingTimeMS == 0 && !(cb.OperatingTimeCycles > 0) {
		return configErr(name, "operating_time_cycles", "must be positive, got %v", cb.OperatingTimeCycles)
	}
	switch cb.Type {
	case VCB, ACB, OCB:
	default:
		return configErr(name, "cb_type", "want VCB, ACB or OCB, got %q", cb.Type)
	}
	return nil
}

// OperatingTime is the mechanical opening time in seconds.
func (cb CircuitBreaker) OperatingTime() float64 {
	if cb.OperatingTimeMS > 0 {
		return cb.OperatingTimeMS / 1000
	}
	f := cb.FrequencyHz
	if f == 0 {
		f = DefaultFrequencyHz
	}
	return cb.OperatingTimeCycles / f
}

// CanInterrupt reports whether a symmetrical fault of faultKA is within rating.
func (cb CircuitBreaker) CanInterrupt(faultKA float64) bool {
	return faultKA <= cb.InterruptingRatingKASym
}

// CanMake reports whether a peak current of peakKA is within the making capacity.
func (cb CircuitBreaker) CanMake(peakKA float64) bool {
	making := cb.MakingCapacityKAPeak
	if making == 0 {
		making = DefaultMakingFactor * cb.InterruptingRatingKASym
	}
	return peakKA <= making
}

// Label is the breaker name or a positional fallback.
func (cb CircuitBreaker) Label() string {
	if cb.Name != "" {
		return cb.Name
	}
	return fmt.Sprintf("CB@bus%d", cb.Bus)
}
