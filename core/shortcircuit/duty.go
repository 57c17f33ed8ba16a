package shortcircuit

import (
	"fmt"
	"sort"

	"github.com/kilianp07/relaycoord/core/device"
)

// Case selects the IEC 60909 voltage factor and source power.
type Case string

const (
	CaseMax Case = "max"
	CaseMin Case = "min"
)

// ParseCase accepts "max" or "min"; empty means max.
func ParseCase(s string) (Case, error) {
	switch Case(s) {
	case "", CaseMax:
		return CaseMax, nil
	case CaseMin:
		return CaseMin, nil
	}
	return "", fmt.Errorf("unknown short-circuit case %q (want max or min)", s)
}

// BusDuty is the fault duty at one bus.
type BusDuty struct {
	Bus  int
	Name string
	VnKV float64
	// C is the voltage factor applied at this bus.
	C float64

	Ik3KA float64
	Ik1KA float64
	IpKA  float64
	RX    float64

	Z1 complex128
	Z0 complex128

	// Err is set when no duty could be computed. GroundErr is set when only
	// the single-line-to-ground duty is unavailable.
	Err       error
	GroundErr error
}

// Determinate reports whether the three-phase duty is usable.
func (d BusDuty) Determinate() bool { return d.Err == nil }

// Duty is the result of a short-circuit computation.
type Duty struct {
	Case    Case
	BaseMVA float64
	byBus   map[int]BusDuty
}

// Bus returns the duty computed for bus.
func (d Duty) Bus(bus int) (BusDuty, bool) {
	bd, ok := d.byBus[bus]
	return bd, ok
}

// Buses returns the bus indices in ascending order.
func (d Duty) Buses() []int {
	out := make([]int, 0, len(d.byBus))
	for b := range d.byBus {
		out = append(out, b)
	}
	sort.Ints(out)
	return out
}

// All returns every bus duty ordered by bus.
func (d Duty) All() []BusDuty {
	buses := d.Buses()
	out := make([]BusDuty, len(buses))
	for i, b := range buses {
		out[i] = d.byBus[b]
	}
	return out
}

// Current returns the fault current in amperes for ft at bus.
func (d Duty) Current(bus int, ft device.FaultType) (float64, error) {
	bd, ok := d.byBus[bus]
	if !ok {
		return 0, &IndeterminateFaultError{Bus: bus, Reason: "bus not in model"}
	}
	if bd.Err != nil {
		return 0, bd.Err
	}
	if ft == device.Ground {
		if bd.GroundErr != nil {
			return 0, bd.GroundErr
		}
		return bd.Ik1KA * 1000, nil
	}
	return bd.Ik3KA * 1000, nil
}

// MaxKA returns the largest determinate current of any fault type, in kA.
func (d Duty) MaxKA() float64 {
	var max float64
	for _, bd := range d.byBus {
		if bd.Err != nil {
			continue
		}
		if bd.Ik3KA > max {
			max = bd.Ik3KA
		}
		if bd.GroundErr == nil && bd.Ik1KA > max {
			max = bd.Ik1KA
		}
	}
	return max
}

// Indeterminate lists the buses without a three-phase duty.
func (d Duty) Indeterminate() []int {
	var out []int
	for _, b := range d.Buses() {
		if d.byBus[b].Err != nil {
			out = append(out, b)
		}
	}
	return out
}

// NewDuty builds a Duty from precomputed values. Used by callers that already
// hold fault levels, such as breaker checks against a known duty.
func NewDuty(c Case, baseMVA float64, buses ...BusDuty) Duty {
	d := Duty{Case: c, BaseMVA: baseMVA, byBus: make(map[int]BusDuty, len(buses))}
	for _, b := range buses {
		d.byBus[b.Bus] = b
	}
	return d
}
