package coordination

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/relaycoord/core/curves"
	"github.com/kilianp07/relaycoord/core/device"
	"github.com/kilianp07/relaycoord/core/network"
)

func intp(v int) *int { return &v }

func breaker(name string, bus int) device.CircuitBreaker {
	return device.CircuitBreaker{Name: name, Bus: bus, RatedVoltageKV: 12, ContinuousCurrentA: 630,
		InterruptingRatingKASym: 25, OperatingTimeCycles: 3, Type: device.VCB}
}

func timed(pickup float64, c curves.ID, tms float64) device.Protection {
	return device.Protection{Timed: &device.TimedElement{Pickup: pickup, Curve: c, TMS: tms}}
}

// feederChain is source(bus0) -L0-> bus1 -L1-> bus2 with relay B on the
// source end of L0 and relay A on the bus1 end of L1, both on 200/5 CTs.
func feederChain(t *testing.T, tmsB float64) (*network.Grid, *device.Table) {
	t.Helper()
	return feederChainWithGround(t, tmsB, device.Protection{})
}

// feederChainWithGround is feederChain with ground settings on relay A.
func feederChainWithGround(t *testing.T, tmsB float64, groundA device.Protection) (*network.Grid, *device.Table) {
	t.Helper()
	g := network.NewGrid()
	b0 := g.AddBus("SRC", 11)
	b1 := g.AddBus("MID", 11)
	b2 := g.AddBus("END", 11)
	g.AddSource(network.Source{Name: "grid", Bus: b0, SkMaxMVA: 250, RX: 0.1, X0X1: 1, R0X0: 0.1})
	l0 := g.AddLine(network.Line{Name: "L0", FromBus: b0, ToBus: b1, LengthKM: 3, ROhmPerKM: 0.16, XOhmPerKM: 0.35,
		R0OhmPerKM: 0.48, X0OhmPerKM: 1.05})
	l1 := g.AddLine(network.Line{Name: "L1", FromBus: b1, ToBus: b2, LengthKM: 2, ROhmPerKM: 0.16, XOhmPerKM: 0.35,
		R0OhmPerKM: 0.48, X0OhmPerKM: 1.05})

	tbl := device.NewTable()
	ctB, err := tbl.AddCT(device.CT{Name: "CT_B", Bus: b0, Element: intp(l0), ElementType: device.ElementLine,
		PrimaryRating: 200, SecondaryRating: 5})
	require.NoError(t, err)
	ctA, err := tbl.AddCT(device.CT{Name: "CT_A", Bus: b1, Element: intp(l1), ElementType: device.ElementLine,
		PrimaryRating: 200, SecondaryRating: 5})
	require.NoError(t, err)
	cbB, err := tbl.AddCB(breaker("CB_B", b0))
	require.NoError(t, err)
	cbA, err := tbl.AddCB(breaker("CB_A", b1))
	require.NoError(t, err)

	_, err = tbl.AddRelay(device.Relay{Name: "A", CT: ctA, CB: cbA, Phase: timed(100, curves.IECNormalInverse, 0.2),
		Ground: groundA})
	require.NoError(t, err)
	_, err = tbl.AddRelay(device.Relay{Name: "B", CT: ctB, CB: cbB, Phase: timed(400, curves.IECNormalInverse, tmsB)})
	require.NoError(t, err)
	return g, tbl
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(Config{}, nil)
	require.NoError(t, err)
	return e
}

func rowFor(rows []Row, relay string, current float64) (Row, bool) {
	for _, r := range rows {
		if r.Relay == relay && r.CurrentA == current {
			return r, true
		}
	}
	return Row{}, false
}
