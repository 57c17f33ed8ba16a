package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/relaycoord/core/coordination"
	"github.com/kilianp07/relaycoord/core/device"
	coremetrics "github.com/kilianp07/relaycoord/core/metrics"
)

func sampleTable() *coordination.Table {
	ok, bad := 0.35, 0.1
	return &coordination.Table{
		FaultType: device.Phase,
		Ordering:  coordination.OrderingRadial,
		MinMargin: 0.3,
		Pairs: []coordination.Pair{
			{FaultType: device.Phase, FaultBus: 2, CurrentA: 4000, Downstream: "R1", Upstream: "R2", Margin: &ok, Verdict: coordination.Selective},
			{FaultType: device.Phase, FaultBus: 1, CurrentA: 6000, Downstream: "R2", Upstream: "R3", Margin: &bad, Verdict: coordination.Failure},
			{FaultType: device.Phase, FaultBus: 1, CurrentA: 6000, Downstream: "R4", Upstream: "R3", Verdict: coordination.Undefined},
		},
		Breakers: []coordination.BreakerCheck{
			{CB: "CB1", Bus: 2, FaultKA: 12, RatingKA: 25, Status: coordination.BreakerOK},
			{CB: "CB2", Bus: 1, FaultKA: 31.5, RatingKA: 25, Overduty: true, Status: coordination.BreakerOverduty},
		},
		FaultDuty: []coordination.BusFault{
			{Bus: 0, Name: "SRC", Ik3KA: 20.9, Ik1KA: 18.1, Status: "ok"},
			{Bus: 1, Name: "ISO", Status: "indeterminate"},
		},
	}
}

func TestPromSink_RecordStudy(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	now := time.Unix(1700000000, 0)
	require.NoError(t, sink.RecordStudy(coremetrics.StudyResult{
		StudyID: "id", Name: "plant", FaultType: device.Phase,
		Table: sampleTable(), Duration: 20 * time.Millisecond, Time: now,
	}))
	require.NoError(t, sink.RecordFailure(coremetrics.StudyFailure{Name: "plant", FaultType: device.Ground}))

	expected := `
# HELP relaycoord_studies_total Analyses run, by fault type and outcome
# TYPE relaycoord_studies_total counter
relaycoord_studies_total{fault_type="ground",outcome="failed"} 1
relaycoord_studies_total{fault_type="phase",outcome="completed"} 1
# HELP relaycoord_coordination_failures Non-selective pairs in the latest study
# TYPE relaycoord_coordination_failures gauge
relaycoord_coordination_failures{fault_type="phase",study="plant"} 1
# HELP relaycoord_breakers_overduty Breakers whose rating is exceeded in the latest study
# TYPE relaycoord_breakers_overduty gauge
relaycoord_breakers_overduty{fault_type="phase",study="plant"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"relaycoord_studies_total", "relaycoord_coordination_failures", "relaycoord_breakers_overduty"))

	assert.Equal(t, 1, testutil.CollectAndCount(sink.margins))
	assert.InDelta(t, 20.9, testutil.ToFloat64(sink.faultKA.WithLabelValues("SRC", "", "phase")), 1e-9)
	assert.InDelta(t, 18.1, testutil.ToFloat64(sink.faultKA.WithLabelValues("SRC", "", "ground")), 1e-9)
	// two series for SRC only; the indeterminate bus is skipped
	assert.Equal(t, 2, testutil.CollectAndCount(sink.faultKA))
	assert.Equal(t, float64(now.Unix()), testutil.ToFloat64(sink.lastStudy.WithLabelValues("plant")))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	b, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	require.NoError(t, a.RecordFailure(coremetrics.StudyFailure{FaultType: device.Phase}))
	require.NoError(t, b.RecordFailure(coremetrics.StudyFailure{FaultType: device.Phase}))
	assert.Equal(t, float64(2), testutil.ToFloat64(b.studies.WithLabelValues("phase", "failed")))
}

func TestPromSink_RecordFaultDuty(t *testing.T) {
	sink, err := NewPromSinkWithRegistry(prometheus.NewRegistry())
	require.NoError(t, err)
	require.NoError(t, sink.RecordFaultDuty(coremetrics.FaultDutyRecord{
		Case: "max",
		Buses: []coordination.BusFault{
			{Name: "B1", Ik3KA: 10, Status: "ground_indeterminate"},
		},
	}))
	assert.Equal(t, float64(10), testutil.ToFloat64(sink.faultKA.WithLabelValues("B1", "max", "phase")))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.faultKA))
}
