package device

import (
	"fmt"
	"math"

	"github.com/kilianp07/relaycoord/core/curves"
)

// DefaultInstDelay is the fixed delay of an instantaneous element, in seconds.
const DefaultInstDelay = 0.05

// TimedElement is a time-overcurrent (51/51N) element. Pickup is in primary amperes.
type TimedElement struct {
	Pickup float64   `json:"pickup" yaml:"pickup"`
	Curve  curves.ID `json:"curve" yaml:"curve"`
	TMS    float64   `json:"tms" yaml:"tms"`
}

// InstElement is an instantaneous or definite-time (50/50N) element.
type InstElement struct {
	Pickup float64 `json:"pickup" yaml:"pickup"`
	// Delay in seconds; nil means DefaultInstDelay.
	Delay *float64 `json:"delay_s,omitempty" yaml:"delay_s,omitempty"`
}

// DelaySeconds returns the configured delay or the default.
func (e InstElement) DelaySeconds() float64 {
	if e.Delay == nil {
		return DefaultInstDelay
	}
	return *e.Delay
}

// Protection is the settings block used for one fault type.
type Protection struct {
	Timed *TimedElement `json:"timed,omitempty" yaml:"timed,omitempty"`
	Inst  *InstElement  `json:"inst,omitempty" yaml:"inst,omitempty"`
}

// TimedEnabled reports whether the time-overcurrent element has a pickup.
func (p Protection) TimedEnabled() bool { return p.Timed != nil && p.Timed.Pickup > 0 }

// InstEnabled reports whether the instantaneous element has a pickup.
func (p Protection) InstEnabled() bool { return p.Inst != nil && p.Inst.Pickup > 0 }

// Enabled reports whether any element of the block can trip.
func (p Protection) Enabled() bool { return p.TimedEnabled() || p.InstEnabled() }

func (p Protection) validate(device, block string) error {
	if t := p.Timed; t != nil {
		if t.Pickup < 0 || math.IsNaN(t.Pickup) || math.IsInf(t.Pickup, 0) {
			return configErr(device, block+".pickup", "must be non-negative, got %v", t.Pickup)
		}
		if t.Pickup > 0 {
			if _, err := curves.Lookup(t.Curve); err != nil {
				return &ConfigurationError{Device: device, Field: block + ".curve", Err: err}
			}
			if !(t.TMS > 0) || math.IsInf(t.TMS, 0) {
				return &ConfigurationError{Device: device, Field: block + ".tms",
					Err: fmt.Errorf("%w: got %v", curves.ErrInvalidTMS, t.TMS)}
			}
		}
	}
	if i := p.Inst; i != nil {
		if i.Pickup < 0 || math.IsNaN(i.Pickup) || math.IsInf(i.Pickup, 0) {
			return configErr(device, block+".inst_pickup", "must be non-negative, got %v", i.Pickup)
		}
		if d := i.DelaySeconds(); d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return configErr(device, block+".inst_delay", "must be non-negative, got %v", d)
		}
	}
	return nil
}

func (p Protection) clone() Protection {
	if p.Timed != nil {
		t := *p.Timed
		p.Timed = &t
	}
	if p.Inst != nil {
		i := *p.Inst
		if i.Delay != nil {
			d := *i.Delay
			i.Delay = &d
		}
		p.Inst = &i
	}
	return p
}

// Relay is an overcurrent relay fed by one CT and tripping one breaker.
type Relay struct {
	Name         string `json:"name" yaml:"name"`
	Manufacturer string `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty" yaml:"model,omitempty"`

	CT int `json:"ct" yaml:"ct"`
	CB int `json:"cb" yaml:"cb"`

	Phase  Protection `json:"phase" yaml:"phase"`
	Ground Protection `json:"ground" yaml:"ground"`
}

func (r Relay) clone() Relay {
	r.Phase = r.Phase.clone()
	r.Ground = r.Ground.clone()
	return r
}

// Protection returns the block matching ft.
func (r Relay) Protection(ft FaultType) Protection {
	if ft == Ground {
		return r.Ground
	}
	return r.Phase
}

// Label is the relay name or a positional fallback.
func (r Relay) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("Relay(ct=%d,cb=%d)", r.CT, r.CB)
}

// Validate checks both protection blocks. CT and CB references are checked
// by Table.AddRelay.
func (r Relay) Validate() error {
	name := r.Label()
	if err := r.Phase.validate(name, "phase"); err != nil {
		return err
	}
	return r.Ground.validate(name, "ground")
}
