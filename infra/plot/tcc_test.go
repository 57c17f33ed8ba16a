package plot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/relaycoord/core/curves"
	"github.com/kilianp07/relaycoord/core/device"
	"github.com/kilianp07/relaycoord/core/tcc"
)

func sampleCurves(t *testing.T) []tcc.Curve {
	t.Helper()
	ct := device.CT{Name: "CT1", PrimaryRating: 200, SecondaryRating: 5}
	delay := 0.05
	r := device.Relay{
		Name: "R1",
		Phase: device.Protection{
			Timed: &device.TimedElement{Pickup: 200, Curve: curves.IECNormalInverse, TMS: 0.1},
			Inst:  &device.InstElement{Pickup: 2400, Delay: &delay},
		},
	}
	c, err := tcc.Sample(r, ct, device.Phase, 100, 10000, 50)
	require.NoError(t, err)
	return []tcc.Curve{c}
}

func TestRenderTCC(t *testing.T) {
	var buf bytes.Buffer
	err := RenderTCC(&buf, sampleCurves(t), Options{Title: "Feeder 1", FaultCurrentsA: []float64{4000}})
	require.NoError(t, err)
	html := buf.String()
	assert.Contains(t, html, "Feeder 1")
	assert.Contains(t, html, `"type":"log"`)
	assert.Contains(t, html, "R1 inst 2400 A")
	assert.Contains(t, html, "fault 4000 A")
	assert.Contains(t, html, "R1 - 51 (IEC_NI)")
}

func TestRenderTCCEmpty(t *testing.T) {
	assert.Error(t, RenderTCC(&bytes.Buffer{}, nil, Options{}))
}

func TestWriteTCCFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots", "phase.html")
	require.NoError(t, WriteTCCFile(path, sampleCurves(t), Options{}))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Time-current characteristics")
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults(nil)
	assert.Equal(t, tcc.DefaultMinA, o.Limits.MinA)
	assert.Equal(t, tcc.DefaultMaxA, o.Limits.MaxA)
	assert.Equal(t, tcc.MinSeconds, o.Limits.MinS)
	assert.Equal(t, 900, o.Width)
}
