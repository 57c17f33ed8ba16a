package curves

import (
	"fmt"
	"math"
	"strconv"
)

// NoTripMarker is the literal written wherever a device does not operate.
const NoTripMarker = "NO_TRIP"

// BoundaryTolerance is the width of the band above M = 1 treated as the pickup
// boundary. Inside it the formulas lose all precision, so the element is
// reported as not operating with Boundary set.
const BoundaryTolerance = 1e-6

// Operation is the outcome of evaluating a characteristic.
type Operation struct {
	Seconds  float64
	Operates bool
	// Boundary is set when the multiple sits inside the pickup boundary band.
	Boundary bool
}

// NoTrip is the non-operating outcome.
func NoTrip() Operation { return Operation{} }

// Trip returns an operating outcome after d seconds.
func Trip(d float64) Operation { return Operation{Seconds: d, Operates: true} }

func (o Operation) String() string {
	if !o.Operates {
		return NoTripMarker
	}
	return strconv.FormatFloat(o.Seconds, 'f', 4, 64)
}

// Evaluate returns the operating time of curve id at multiple m of pickup with
// time multiplier tms.
func Evaluate(id ID, m, tms float64) (Operation, error) {
	def, err := Lookup(id)
	if err != nil {
		return Operation{}, err
	}
	return def.Evaluate(m, tms)
}

// Evaluate applies the definition's formula.
func (d Definition) Evaluate(m, tms float64) (Operation, error) {
	if math.IsNaN(m) || m <= 0 {
		return Operation{}, fmt.Errorf("%w: got %v", ErrInvalidMultiple, m)
	}
	if math.IsNaN(tms) || tms <= 0 {
		return Operation{}, fmt.Errorf("%w: got %v", ErrInvalidTMS, tms)
	}
	if m <= 1 {
		return NoTrip(), nil
	}
	if m < 1+BoundaryTolerance {
		return Operation{Boundary: true}, nil
	}

	var t float64
	switch d.Family {
	case FamilyIEC:
		t = tms * d.K / (math.Pow(m, d.Alpha) - 1)
	case FamilyIEEE:
		t = tms * (d.K/(math.Pow(m, d.Alpha)-1) + d.C)
	case FamilyDefiniteTime:
		t = tms * d.Band
	default:
		return Operation{}, &UnknownCurveError{ID: string(d.ID)}
	}
	if math.IsInf(t, 0) || math.IsNaN(t) || t <= 0 {
		return Operation{Boundary: true}, nil
	}
	return Trip(t), nil
}

// Combine merges a time-overcurrent outcome with an instantaneous one. An
// operating instantaneous element always takes priority, whatever the curve
// time. instWins is true when the combined outcome comes from inst.
func Combine(timed, inst Operation) (op Operation, instWins bool) {
	switch {
	case inst.Operates:
		return inst, true
	case timed.Operates:
		return timed, false
	default:
		return Operation{Boundary: timed.Boundary}, false
	}
}
