package coordination

import (
	"fmt"

	"github.com/kilianp07/relaycoord/core/curves"
	"github.com/kilianp07/relaycoord/core/device"
)

// Trip is the response of one relay to one fault current.
type Trip struct {
	RelayCurrentA float64
	// Multiple of the time-overcurrent pickup; zero when the element is disabled.
	Multiple  float64
	Element   string
	Operation curves.Operation
	// TotalSeconds adds the breaker operating time to the relay time.
	TotalSeconds float64
	Saturated    bool
}

// EvaluateRelay computes the trip of r for a primary fault current of ft.
// Current and pickups are both referred to the CT secondary before forming
// the multiple. An operating instantaneous element decides the trip and the
// curve is not evaluated. A curve error is returned as is and no Trip is
// produced.
func EvaluateRelay(r device.Relay, ct device.CT, cb device.CircuitBreaker, ft device.FaultType, currentA float64) (Trip, error) {
	p := r.Protection(ft)
	trip := Trip{
		RelayCurrentA: ct.SecondaryCurrent(currentA),
		Saturated:     ct.Saturates(currentA),
	}

	var timed, inst curves.Operation
	if p.InstEnabled() && trip.RelayCurrentA >= ct.SecondaryCurrent(p.Inst.Pickup) {
		inst = curves.Trip(p.Inst.DelaySeconds())
	}
	if p.TimedEnabled() {
		trip.Multiple = trip.RelayCurrentA / ct.SecondaryCurrent(p.Timed.Pickup)
		if !inst.Operates {
			op, err := curves.Evaluate(p.Timed.Curve, trip.Multiple, p.Timed.TMS)
			if err != nil {
				return Trip{}, fmt.Errorf("relay %s %s element: %w", r.Label(), ft.TimedCode(), err)
			}
			timed = op
		}
	}

	op, instWins := curves.Combine(timed, inst)
	trip.Operation = op
	switch {
	case instWins:
		trip.Element = ft.InstCode()
	case op.Operates:
		trip.Element = ft.TimedCode()
	}
	if op.Operates {
		trip.TotalSeconds = op.Seconds + cb.OperatingTime()
	}
	return trip, nil
}
