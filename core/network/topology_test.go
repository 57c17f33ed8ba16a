package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chain builds source -> b0 -trafo-> b1 -line-> b2 -line-> b3.
func chain() *Grid {
	g := NewGrid()
	b0 := g.AddBus("HV", 33)
	b1 := g.AddBus("MV", 11)
	b2 := g.AddBus("F1", 11)
	b3 := g.AddBus("F2", 11)
	g.AddSource(Source{Name: "grid", Bus: b0, SkMaxMVA: 500, RX: 0.1, X0X1: 1, R0X0: 0.1})
	g.AddTransformer(Transformer{Name: "T1", HVBus: b0, LVBus: b1, SnMVA: 20, VnHVKV: 33, VnLVKV: 11,
		VkPercent: 10, VkrPercent: 0.5, VectorGroup: "Dyn11"})
	g.AddLine(Line{Name: "L1", FromBus: b1, ToBus: b2, LengthKM: 2, ROhmPerKM: 0.2, XOhmPerKM: 0.35})
	g.AddLine(Line{Name: "L2", FromBus: b3, ToBus: b2, LengthKM: 1, ROhmPerKM: 0.2, XOhmPerKM: 0.35})
	return g
}

func TestBuildTopologyRadial(t *testing.T) {
	topo, err := BuildTopology(chain())
	require.NoError(t, err)
	assert.Equal(t, []int{0}, topo.Roots())

	d, ok := topo.Depth(3)
	require.True(t, ok)
	assert.Equal(t, 3, d)

	p, _ := topo.Parent(3)
	assert.Equal(t, 2, p)
	br, ok := topo.UpstreamBranch(3)
	require.True(t, ok)
	assert.Equal(t, BranchLine, br.Kind)
	assert.Equal(t, 1, br.Index)

	br, _ = topo.UpstreamBranch(1)
	assert.Equal(t, BranchTrafo, br.Kind)

	assert.True(t, topo.InSubtree(1, 3))
	assert.False(t, topo.InSubtree(3, 1))
	assert.Equal(t, []int{0, 1, 2, 3}, topo.PathFromSource(3))
	assert.Equal(t, []int{2}, topo.Children(1))
}

func TestBuildTopologyCycleIsMeshed(t *testing.T) {
	g := chain()
	g.AddLine(Line{Name: "tie", FromBus: 1, ToBus: 3, LengthKM: 1, ROhmPerKM: 0.1, XOhmPerKM: 0.1})
	_, err := BuildTopology(g)
	assert.ErrorIs(t, err, ErrMeshed)
}

func TestBuildTopologyTwoSourcesIsMeshed(t *testing.T) {
	g := chain()
	g.AddSource(Source{Name: "gen", Bus: 3, SkMaxMVA: 50, RX: 0.1})
	_, err := BuildTopology(g)
	assert.ErrorIs(t, err, ErrMeshed)
}

func TestBuildTopologyIsland(t *testing.T) {
	g := chain()
	island := g.AddBus("island", 0.4)
	topo, err := BuildTopology(g)
	require.NoError(t, err)
	assert.False(t, topo.Contains(island))
	assert.Nil(t, topo.PathFromSource(island))
}

func TestValidateUnknownBus(t *testing.T) {
	g := chain()
	g.AddLoad(Load{Name: "ghost", Bus: 42})
	assert.ErrorIs(t, Validate(g), ErrUnknownBus)
	_, err := BuildTopology(g)
	assert.ErrorIs(t, err, ErrUnknownBus)
}

func TestGridBusByName(t *testing.T) {
	g := chain()
	i, ok := g.BusByName("F1")
	assert.True(t, ok)
	assert.Equal(t, 2, i)
	_, ok = g.BusByName("nope")
	assert.False(t, ok)
}
