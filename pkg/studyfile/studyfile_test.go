package studyfile

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/relaycoord/core/curves"
	"github.com/kilianp07/relaycoord/core/device"
	"github.com/kilianp07/relaycoord/core/network"
)

func TestLoadFeeder(t *testing.T) {
	s, err := Load("testdata/feeder.yaml", Options{FrequencyHz: 50})
	require.NoError(t, err)

	assert.Equal(t, "feeder", s.Name)
	require.Len(t, s.Grid.BusList, 3)
	require.Len(t, s.Grid.LineList, 2)
	assert.Equal(t, 1, s.Grid.LineList[1].FromBus)
	assert.Equal(t, 2, s.Grid.LineList[1].ToBus)
	assert.Equal(t, 2, s.Grid.LoadList[0].Bus)

	require.Len(t, s.Devices.CTs(), 2)
	ct := s.Devices.CT(1)
	require.NotNil(t, ct.Element)
	assert.Equal(t, 1, *ct.Element)
	assert.Equal(t, "10P20", ct.AccuracyClass)
	assert.Equal(t, device.DefaultAccuracyClass, s.Devices.CT(0).AccuracyClass)

	assert.Equal(t, 50.0, s.Devices.CB(0).FrequencyHz, "study frequency applied")
	assert.Equal(t, 60.0, s.Devices.CB(1).FrequencyHz, "breaker frequency kept")

	require.Len(t, s.Devices.Relays(), 2)
	r := s.Devices.Relay(1)
	assert.Equal(t, 1, r.CT)
	assert.Equal(t, 1, r.CB)
	assert.Equal(t, curves.IECNormalInverse, r.Phase.Timed.Curve)
	assert.InDelta(t, 0.05, r.Phase.Inst.DelaySeconds(), 1e-12)
	assert.True(t, r.Ground.TimedEnabled())
	assert.False(t, s.Devices.Relay(0).Phase.InstEnabled())

	topo, err := network.BuildTopology(s.Grid)
	require.NoError(t, err)
	d, ok := topo.Depth(2)
	require.True(t, ok)
	assert.Equal(t, 2, d)
}

func TestReadErrors(t *testing.T) {
	base := `buses:
  - {name: A, vn_kv: 11}
  - {name: B, vn_kv: 11}
cts:
  - {name: CT1, bus: A, primary_rating: 100, secondary_rating: 5}
breakers:
  - {name: CB1, bus: A, rated_voltage_kv: 12, continuous_current_a: 400, interrupting_rating_ka_sym: 20, operating_time_cycles: 3, cb_type: VCB}
`
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", "", "empty study file"},
		{"unknown key", "bogus: 1\n", "bogus"},
		{"unknown bus", base + "lines:\n  - {name: L, from: A, to: C, length_km: 1, r_ohm_per_km: 0.1, x_ohm_per_km: 0.1}\n", "unknown bus"},
		{"duplicate bus", "buses:\n  - {name: A, vn_kv: 11}\n  - {name: A, vn_kv: 11}\n", "duplicate bus"},
		{"unknown CT", base + "relays:\n  - {name: R, ct: X, cb: CB1}\n", `unknown CT "X"`},
		{"unknown CB", base + "relays:\n  - {name: R, ct: CT1, cb: X}\n", `unknown breaker "X"`},
		{"element type", "buses:\n  - {name: A, vn_kv: 11}\n  - {name: B, vn_kv: 11}\nlines:\n  - {name: L, from: A, to: B, length_km: 1, r_ohm_per_km: 0.1, x_ohm_per_km: 0.1}\ncts:\n  - {name: CT2, bus: A, element: L, primary_rating: 100, secondary_rating: 5}\n", "element_type"},
		{"missing element", "buses:\n  - {name: A, vn_kv: 11}\ncts:\n  - {name: CT2, bus: A, element: L9, element_type: line, primary_rating: 100, secondary_rating: 5}\n", `no line named "L9"`},
		{"test current", base + "test_currents: [100, 0]\n", "test current"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tc.doc), Options{})
			require.Error(t, err)
			if tc.want != "" {
				assert.Contains(t, err.Error(), tc.want)
			}
		})
	}
}

func TestReadBadCurve(t *testing.T) {
	doc := `buses:
  - {name: A, vn_kv: 11}
cts:
  - {name: CT1, bus: A, primary_rating: 100, secondary_rating: 5}
breakers:
  - {name: CB1, bus: A, rated_voltage_kv: 12, continuous_current_a: 400, interrupting_rating_ka_sym: 20, operating_time_cycles: 3, cb_type: VCB}
relays:
  - name: R
    ct: CT1
    cb: CB1
    phase:
      timed: {pickup: 100, curve: IEC_XX, tms: 0.1}
`
	_, err := Read(strings.NewReader(doc), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, curves.ErrUnknownCurve)
	var cfgErr *device.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}
