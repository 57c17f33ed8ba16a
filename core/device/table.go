package device

import (
	"fmt"
	"slices"
	"strings"
)

// Table owns the devices of one network. A device's index is its identity.
// Devices are validated by Add* and cannot change afterwards: every accessor
// returns a copy.
type Table struct {
	cts    []CT
	cbs    []CircuitBreaker
	relays []Relay
}

// NewTable returns an empty table.
func NewTable() *Table { return &Table{} }

// AddCT validates ct and appends it, returning its index.
func (t *Table) AddCT(ct CT) (int, error) {
	if ct.AccuracyClass == "" {
		ct.AccuracyClass = DefaultAccuracyClass
	}
	if ct.Name == "" {
		ct.Name = fmt.Sprintf("CT_%d", len(t.cts))
	}
	if err := ct.Validate(); err != nil {
		return -1, err
	}
	if _, dup := t.CTIndex(ct.Name); dup {
		return -1, configErr(ct.Name, "name", "duplicate CT name")
	}
	ct.Element = cloneInt(ct.Element)
	t.cts = append(t.cts, ct)
	return len(t.cts) - 1, nil
}

// AddCB validates cb, fills its optional ratings and appends it.
func (t *Table) AddCB(cb CircuitBreaker) (int, error) {
	cb.SetDefaults()
	if cb.Name == "" {
		cb.Name = fmt.Sprintf("CB_%d", len(t.cbs))
	}
	if err := cb.Validate(); err != nil {
		return -1, err
	}
	if _, dup := t.CBIndex(cb.Name); dup {
		return -1, configErr(cb.Name, "name", "duplicate breaker name")
	}
	t.cbs = append(t.cbs, cb)
	return len(t.cbs) - 1, nil
}

// AddRelay validates r, including its CT and CB references, and appends it.
func (t *Table) AddRelay(r Relay) (int, error) {
	if r.Name == "" {
		r.Name = fmt.Sprintf("Relay_%d", len(t.relays))
	}
	if r.CT < 0 || r.CT >= len(t.cts) {
		return -1, configErr(r.Name, "ct", "no CT with index %d", r.CT)
	}
	if r.CB < 0 || r.CB >= len(t.cbs) {
		return -1, configErr(r.Name, "cb", "no breaker with index %d", r.CB)
	}
	if err := r.Validate(); err != nil {
		return -1, err
	}
	if _, dup := t.RelayIndex(r.Name); dup {
		return -1, configErr(r.Name, "name", "duplicate relay name")
	}
	t.relays = append(t.relays, r.clone())
	return len(t.relays) - 1, nil
}

// NumCTs returns the number of CTs.
func (t *Table) NumCTs() int { return len(t.cts) }

// NumCBs returns the number of breakers.
func (t *Table) NumCBs() int { return len(t.cbs) }

// NumRelays returns the number of relays.
func (t *Table) NumRelays() int { return len(t.relays) }

// CT returns a copy of CT i.
func (t *Table) CT(i int) CT {
	c := t.cts[i]
	c.Element = cloneInt(c.Element)
	return c
}

// CB returns breaker i.
func (t *Table) CB(i int) CircuitBreaker { return t.cbs[i] }

// Relay returns a copy of relay i.
func (t *Table) Relay(i int) Relay { return t.relays[i].clone() }

// CTs returns a copy of every CT in index order.
func (t *Table) CTs() []CT {
	out := make([]CT, len(t.cts))
	for i := range t.cts {
		out[i] = t.CT(i)
	}
	return out
}

// CBs returns a copy of every breaker in index order.
func (t *Table) CBs() []CircuitBreaker { return slices.Clone(t.cbs) }

// Relays returns a copy of every relay in index order.
func (t *Table) Relays() []Relay {
	out := make([]Relay, len(t.relays))
	for i, r := range t.relays {
		out[i] = r.clone()
	}
	return out
}

// CTIndex looks a CT up by name.
func (t *Table) CTIndex(name string) (int, bool) {
	for i, c := range t.cts {
		if c.Name == name {
			return i, true
		}
	}
	return -1, false
}

// CBIndex looks a breaker up by name.
func (t *Table) CBIndex(name string) (int, bool) {
	for i, c := range t.cbs {
		if c.Name == name {
			return i, true
		}
	}
	return -1, false
}

// RelayIndex looks a relay up by name.
func (t *Table) RelayIndex(name string) (int, bool) {
	for i, r := range t.relays {
		if r.Name == name {
			return i, true
		}
	}
	return -1, false
}

// RelayCT returns the CT feeding relay i.
func (t *Table) RelayCT(i int) CT { return t.CT(t.relays[i].CT) }

// RelayCB returns the breaker tripped by relay i.
func (t *Table) RelayCB(i int) CircuitBreaker { return t.cbs[t.relays[i].CB] }

// Summary renders a human readable protection summary.
func (t *Table) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Protection summary: %d CTs, %d breakers, %d relays\n", len(t.cts), len(t.cbs), len(t.relays))
	for _, c := range t.cts {
		fmt.Fprintf(&b, "  CT    %-12s bus %-3d ratio %g/%g class %s\n",
			c.Name, c.Bus, c.PrimaryRating, c.SecondaryRating, c.accuracyClass())
	}
	for _, cb := range t.cbs {
		fmt.Fprintf(&b, "  CB    %-12s bus %-3d %s %gkV %gA Isc %gkA op %.1fms\n",
			cb.Name, cb.Bus, cb.Type, cb.RatedVoltageKV, cb.ContinuousCurrentA,
			cb.InterruptingRatingKASym, cb.OperatingTime()*1000)
	}
	for _, r := range t.relays {
		fmt.Fprintf(&b, "  Relay %-12s CT %s CB %s phase[%s] ground[%s]\n",
			r.Name, t.cts[r.CT].Name, t.cbs[r.CB].Name,
			describe(r.Phase), describe(r.Ground))
	}
	return b.String()
}

func describe(p Protection) string {
	var parts []string
	if p.TimedEnabled() {
		parts = append(parts, fmt.Sprintf("%gA %s TMS %g", p.Timed.Pickup, p.Timed.Curve, p.Timed.TMS))
	}
	if p.InstEnabled() {
		parts = append(parts, fmt.Sprintf("inst %gA +%gs", p.Inst.Pickup, p.Inst.DelaySeconds()))
	}
	if len(parts) == 0 {
		return "off"
	}
	return strings.Join(parts, ", ")
}
