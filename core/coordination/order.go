package coordination

import (
	"fmt"

	"github.com/kilianp07/relaycoord/core/device"
	"github.com/kilianp07/relaycoord/core/network"
)

// Placement locates a relay along the radial path from the source.
type Placement struct {
	Relay int
	// Zone is the root bus of the subtree the relay protects.
	Zone int
	// Position grows with electrical distance from the source.
	Position float64
	// LoadOnly relays only see faults at their own bus.
	LoadOnly bool
}

// Covers reports whether a fault at bus flows through the relay.
func (p Placement) Covers(topo *network.Topology, bus int) bool {
	if p.LoadOnly {
		return bus == p.Zone
	}
	return topo.InSubtree(p.Zone, bus)
}

// Order maps relays to their placement and backup.
type Order struct {
	topo   *network.Topology
	places map[int]Placement
	backup map[int]int
}

// Place computes the placement of every relay of table in topo. Relays whose
// CT cannot be located are skipped and reported in the returned warnings.
func Place(topo *network.Topology, m network.Model, table *device.Table) (*Order, []string) {
	o := &Order{topo: topo, places: make(map[int]Placement), backup: make(map[int]int)}
	var warnings []string
	for i, r := range table.Relays() {
		p, err := place(topo, m, table.CT(r.CT))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("relay %s not ordered: %v", r.Name, err))
			continue
		}
		p.Relay = i
		o.places[i] = p
	}
	for i, p := range o.places {
		best := -1
		for j, q := range o.places {
			if j == i || q.Position >= p.Position || q.LoadOnly {
				continue
			}
			if !topo.InSubtree(q.Zone, p.Zone) {
				continue
			}
			if best < 0 || q.Position > o.places[best].Position ||
				(q.Position == o.places[best].Position && j < best) {
				best = j
			}
		}
		if best >= 0 {
			o.backup[i] = best
		}
	}
	return o, warnings
}

func place(topo *network.Topology, m network.Model, ct device.CT) (Placement, error) {
	depth, ok := topo.Depth(ct.Bus)
	if !ok {
		return Placement{}, fmt.Errorf("bus %d is not fed by any source", ct.Bus)
	}
	d := float64(depth)
	if ct.Element == nil {
		return Placement{Zone: ct.Bus, Position: d}, nil
	}
	idx := *ct.Element
	var a, b int
	switch ct.ElementType {
	case device.ElementLoad:
		loads := m.Loads()
		if idx >= len(loads) {
			return Placement{}, fmt.Errorf("load %d does not exist", idx)
		}
		return Placement{Zone: ct.Bus, Position: d + 0.4, LoadOnly: true}, nil
	case device.ElementLine:
		lines := m.Lines()
		if idx >= len(lines) {
			return Placement{}, fmt.Errorf("line %d does not exist", idx)
		}
		a, b = lines[idx].FromBus, lines[idx].ToBus
	case device.ElementTrafo:
		trafos := m.Transformers()
		if idx >= len(trafos) {
			return Placement{}, fmt.Errorf("transformer %d does not exist", idx)
		}
		a, b = trafos[idx].HVBus, trafos[idx].LVBus
	default:
		return Placement{}, fmt.Errorf("unsupported element type %q", ct.ElementType)
	}

	var other int
	switch ct.Bus {
	case a:
		other = b
	case b:
		other = a
	default:
		return Placement{}, fmt.Errorf("%s %d is not connected to bus %d", ct.ElementType, idx, ct.Bus)
	}
	if parent, _ := topo.Parent(other); parent == ct.Bus {
		return Placement{Zone: other, Position: d + 0.25}, nil
	}
	if parent, _ := topo.Parent(ct.Bus); parent == other {
		return Placement{Zone: ct.Bus, Position: d - 0.25}, nil
	}
	return Placement{}, fmt.Errorf("%s %d is out of service in the radial tree", ct.ElementType, idx)
}

// Placement returns the placement of relay i.
func (o *Order) Placement(i int) (Placement, bool) {
	p, ok := o.places[i]
	return p, ok
}

// Backup returns the relay backing up relay i.
func (o *Order) Backup(i int) (int, bool) {
	b, ok := o.backup[i]
	return b, ok
}

// Covers reports whether relay i sees a fault at bus.
func (o *Order) Covers(i, bus int) bool {
	p, ok := o.places[i]
	return ok && p.Covers(o.topo, bus)
}
