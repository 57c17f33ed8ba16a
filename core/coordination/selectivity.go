package coordination

import (
	"sort"
)

// SelectivityStep is one relay in the trip sequence at a given current.
type SelectivityStep struct {
	FaultBus int      `json:"fault_bus"`
	CurrentA float64  `json:"current_a"`
	Relay    string   `json:"relay"`
	TripTime float64  `json:"trip_time_s"`
	Margin   *float64 `json:"margin_s,omitempty"`
	// Selective is always true for the first relay to trip.
	Selective bool `json:"selective"`
}

// CheckSelectivity orders the tripping relays of each (fault bus, current)
// scenario by trip time and reports the margin between successive relays.
// It ignores topology and is kept as a quick sanity view.
func CheckSelectivity(rows []Row, minMargin float64) []SelectivityStep {
	type key struct {
		bus int
		i   float64
	}
	groups := make(map[key][]Row)
	var keys []key
	for _, r := range rows {
		if !r.Numeric() {
			continue
		}
		k := key{r.FaultBus, r.CurrentA}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], r)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].bus != keys[j].bus {
			return keys[i].bus < keys[j].bus
		}
		return keys[i].i < keys[j].i
	})

	var out []SelectivityStep
	for _, k := range keys {
		g := groups[k]
		sort.SliceStable(g, func(i, j int) bool { return g[i].TripTime < g[j].TripTime })
		for i, r := range g {
			step := SelectivityStep{FaultBus: k.bus, CurrentA: k.i, Relay: r.Relay, TripTime: r.TripTime, Selective: true}
			if i > 0 {
				m := r.TripTime - g[i-1].TripTime
				step.Margin = &m
				step.Selective = m >= minMargin-marginTolerance
			}
			out = append(out, step)
		}
	}
	return out
}
