package coordination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/relaycoord/core/curves"
	"github.com/kilianp07/relaycoord/core/device"
	"github.com/kilianp07/relaycoord/core/network"
)

// TestPlaceTransformerFeederChain orders relays on
// source(HV) -T1-> MV -L1-> END with a load at END.
func TestPlaceTransformerFeederChain(t *testing.T) {
	g := network.NewGrid()
	hv := g.AddBus("HV", 33)
	mv := g.AddBus("MV", 11)
	end := g.AddBus("END", 11)
	g.AddSource(network.Source{Name: "grid", Bus: hv, SkMaxMVA: 1000, RX: 0.1})
	t1 := g.AddTransformer(network.Transformer{Name: "T1", HVBus: hv, LVBus: mv, SnMVA: 20,
		VkPercent: 10, VkrPercent: 0.5, VectorGroup: "Dyn11"})
	l1 := g.AddLine(network.Line{Name: "L1", FromBus: mv, ToBus: end, LengthKM: 1, ROhmPerKM: 0.2, XOhmPerKM: 0.3})
	ld := g.AddLoad(network.Load{Name: "LD", Bus: end, PMW: 1})

	tbl := device.NewTable()
	cb, err := tbl.AddCB(breaker("CB", hv))
	require.NoError(t, err)
	add := func(name string, bus int, elem *int, et device.ElementType) int {
		ct, err := tbl.AddCT(device.CT{Name: "CT_" + name, Bus: bus, Element: elem, ElementType: et,
			PrimaryRating: 400, SecondaryRating: 1})
		require.NoError(t, err)
		i, err := tbl.AddRelay(device.Relay{Name: name, CT: ct, CB: cb, Phase: timed(100, curves.IECNormalInverse, 0.1)})
		require.NoError(t, err)
		return i
	}
	hvFeeder := add("T1_HV", hv, intp(t1), device.ElementTrafo)
	lvIncomer := add("T1_LV", mv, intp(t1), device.ElementTrafo)
	feeder := add("L1", mv, intp(l1), device.ElementLine)
	busEnd := add("END_BUS", end, nil, "")
	load := add("LOAD", end, intp(ld), device.ElementLoad)

	topo, err := network.BuildTopology(g)
	require.NoError(t, err)
	order, warnings := Place(topo, g, tbl)
	assert.Empty(t, warnings)

	p, ok := order.Placement(hvFeeder)
	require.True(t, ok)
	assert.Equal(t, mv, p.Zone)
	assert.Equal(t, 0.25, p.Position)
	p, _ = order.Placement(lvIncomer)
	assert.Equal(t, mv, p.Zone)
	assert.Equal(t, 0.75, p.Position)
	p, _ = order.Placement(load)
	assert.True(t, p.LoadOnly)

	backup := func(i int) int {
		b, ok := order.Backup(i)
		if !ok {
			return -1
		}
		return b
	}
	assert.Equal(t, -1, backup(hvFeeder))
	assert.Equal(t, hvFeeder, backup(lvIncomer))
	assert.Equal(t, lvIncomer, backup(feeder))
	assert.Equal(t, feeder, backup(busEnd))
	assert.Equal(t, busEnd, backup(load))

	assert.True(t, order.Covers(feeder, end))
	assert.False(t, order.Covers(feeder, mv))
	assert.True(t, order.Covers(load, end))
	assert.True(t, order.Covers(hvFeeder, end))
	assert.False(t, order.Covers(hvFeeder, hv))
}

func TestPlaceReportsUnplacedRelays(t *testing.T) {
	g := network.NewGrid()
	a := g.AddBus("A", 11)
	b := g.AddBus("B", 11)
	island := g.AddBus("I", 11)
	g.AddSource(network.Source{Bus: a, SkMaxMVA: 100, RX: 0.1})
	g.AddLine(network.Line{FromBus: a, ToBus: b, LengthKM: 1, ROhmPerKM: 0.1, XOhmPerKM: 0.1})

	tbl := device.NewTable()
	cb, _ := tbl.AddCB(breaker("CB", a))
	ct1, _ := tbl.AddCT(device.CT{Name: "CT1", Bus: island, PrimaryRating: 100, SecondaryRating: 1})
	// Line 0 does not touch bus "island".
	ct2, _ := tbl.AddCT(device.CT{Name: "CT2", Bus: island, Element: intp(0), ElementType: device.ElementLine,
		PrimaryRating: 100, SecondaryRating: 1})
	_, err := tbl.AddRelay(device.Relay{Name: "R1", CT: ct1, CB: cb})
	require.NoError(t, err)
	_, err = tbl.AddRelay(device.Relay{Name: "R2", CT: ct2, CB: cb})
	require.NoError(t, err)

	topo, err := network.BuildTopology(g)
	require.NoError(t, err)
	order, warnings := Place(topo, g, tbl)
	assert.Len(t, warnings, 2)
	_, ok := order.Placement(0)
	assert.False(t, ok)
}
