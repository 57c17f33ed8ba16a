// Package tcc samples relay time-current characteristics for plotting.
package tcc

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/relaycoord/core/coordination"
	"github.com/kilianp07/relaycoord/core/device"
)

const (
	DefaultPoints = 500
	DefaultMinA   = 10.0
	DefaultMaxA   = 10000.0
	// MinSeconds and MaxSeconds bound the time axis.
	MinSeconds = 0.01
	MaxSeconds = 100.0
)

// Point is one operating point of a characteristic.
type Point struct {
	CurrentA float64 `json:"current_a"`
	Seconds  float64 `json:"seconds"`
}

// Curve is a sampled relay characteristic.
type Curve struct {
	Relay     string           `json:"relay"`
	Label     string           `json:"label"`
	FaultType device.FaultType `json:"fault_type"`
	Points    []Point          `json:"points"`
	// InstPickupA is zero when the relay has no instantaneous element.
	InstPickupA float64 `json:"inst_pickup_a,omitempty"`
	InstDelay   float64 `json:"inst_delay_s,omitempty"`
}

// Limits are the axis bounds of a chart.
type Limits struct {
	MinA, MaxA float64
	MinS, MaxS float64
}

// Sample evaluates r on n log-spaced currents between minA and maxA. Only
// operating points are kept.
func Sample(r device.Relay, ct device.CT, ft device.FaultType, minA, maxA float64, n int) (Curve, error) {
	if !(minA > 0) || !(maxA > minA) {
		return Curve{}, fmt.Errorf("invalid current range [%v, %v]", minA, maxA)
	}
	if n < 2 {
		return Curve{}, errors.New("need at least two sample points")
	}
	p := r.Protection(ft)
	c := Curve{Relay: r.Label(), Label: label(r, p, ft), FaultType: ft}
	if p.InstEnabled() {
		c.InstPickupA = p.Inst.Pickup
		c.InstDelay = p.Inst.DelaySeconds()
	}

	currents := floats.LogSpan(make([]float64, n), minA, maxA)
	for _, i := range currents {
		trip, err := coordination.EvaluateRelay(r, ct, device.CircuitBreaker{}, ft, i)
		if err != nil {
			return Curve{}, err
		}
		if trip.Operation.Operates {
			c.Points = append(c.Points, Point{CurrentA: i, Seconds: trip.Operation.Seconds})
		}
	}
	return c, nil
}

// SampleAll samples the listed relays of table. An empty list selects every relay.
func SampleAll(table *device.Table, relays []int, ft device.FaultType, minA, maxA float64, n int) ([]Curve, error) {
	if len(relays) == 0 {
		relays = make([]int, table.NumRelays())
		for i := range relays {
			relays[i] = i
		}
	}
	out := make([]Curve, 0, len(relays))
	for _, i := range relays {
		if i < 0 || i >= table.NumRelays() {
			return nil, fmt.Errorf("no relay with index %d", i)
		}
		c, err := Sample(table.Relay(i), table.RelayCT(i), ft, minA, maxA, n)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// AutoLimits narrows [minA, maxA] to half the lowest pickup and twice the
// highest instantaneous pickup of relays.
func AutoLimits(relays []device.Relay, ft device.FaultType, minA, maxA float64) Limits {
	lo, hi := math.Inf(1), 0.0
	for _, r := range relays {
		p := r.Protection(ft)
		if p.TimedEnabled() {
			lo = math.Min(lo, p.Timed.Pickup)
		}
		if p.InstEnabled() {
			hi = math.Max(hi, p.Inst.Pickup)
		}
	}
	l := Limits{MinA: minA, MaxA: maxA, MinS: MinSeconds, MaxS: MaxSeconds}
	if !math.IsInf(lo, 1) {
		l.MinA = math.Max(lo*0.5, minA)
	}
	if hi > 0 {
		l.MaxA = math.Min(hi*2, maxA)
	}
	return l
}

func label(r device.Relay, p device.Protection, ft device.FaultType) string {
	if p.TimedEnabled() {
		return fmt.Sprintf("%s - %s (%s)", r.Label(), ft.TimedCode(), p.Timed.Curve)
	}
	if p.InstEnabled() {
		return fmt.Sprintf("%s - %s", r.Label(), ft.InstCode())
	}
	return r.Label()
}
