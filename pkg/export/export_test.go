package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/relaycoord/core/coordination"
	"github.com/kilianp07/relaycoord/core/device"
)

func table() *coordination.Table {
	m, dt := 0.35, 0.2
	return &coordination.Table{
		FaultType: device.Phase,
		Ordering:  coordination.OrderingRadial,
		MinMargin: 0.3,
		Rows: []coordination.Row{
			{FaultType: device.Phase, FaultBus: 2, CurrentA: 4000, Relay: "R1", CT: "CT1", CB: "CB1", Bus: 1,
				RelayCurrentA: 100, Multiple: 20, Element: "51", Operates: true, TripTime: 0.2, TotalTime: 0.25,
				BackupRelay: "R2", Margin: &m, Verdict: coordination.Selective},
			{FaultType: device.Phase, FaultBus: coordination.NoFaultBus, CurrentA: 100, Relay: "R2", CT: "CT2", CB: "CB2",
				RelayCurrentA: 1.25, Multiple: 0.5},
			{FaultType: device.Phase, FaultBus: 1, CurrentA: 100, Relay: "R3", CT: "CT3", CB: "CB3",
				Error: "relay R3 51 element: unknown curve"},
		},
		Pairs: []coordination.Pair{
			{FaultType: device.Phase, FaultBus: 2, CurrentA: 4000, Downstream: "R1", Upstream: "R2",
				DownstreamTime: &dt, Verdict: coordination.Undefined},
		},
		Breakers: []coordination.BreakerCheck{
			{CB: "CB1", Bus: 1, FaultKA: 12.5, RatingKA: 25, PeakKA: 31.2, MakingKA: 62.5, Status: coordination.BreakerOK},
		},
		FaultDuty: []coordination.BusFault{
			{Bus: 0, Name: "GRID", VnKV: 20, Ik3KA: 7.2169, Ik1KA: 7.1, IpKA: 18.1, RX: 0.1, Status: "ok"},
		},
	}
}

func readCSV(t *testing.T, data string) [][]string {
	t.Helper()
	recs, err := csv.NewReader(strings.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestWriteCoordinationCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCoordinationCSV(&buf, table().Rows))
	recs := readCSV(t, buf.String())
	require.Len(t, recs, 4)
	assert.Equal(t, "fault_type,fault_bus,current_a,relay,ct,cb,bus,relay_current_a,multiple,element,trip_time_s,total_time_s,backup_relay,margin_s,verdict,ct_saturated,error",
		strings.Join(recs[0], ","))
	assert.Equal(t, []string{"phase", "2", "4000", "R1", "CT1", "CB1", "1", "100", "20", "51", "0.2", "0.25", "R2", "0.35", "selective", "false", ""}, recs[1])
	assert.Equal(t, "", recs[2][1], "explicit current has no fault bus")
	assert.Equal(t, "NO_TRIP", recs[2][10])
	assert.Equal(t, "NO_TRIP", recs[2][11])
	assert.Equal(t, "", recs[3][10], "errored row has no time")
	assert.Contains(t, recs[3][16], "unknown curve")
}

func TestWritePairsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePairsCSV(&buf, table().Pairs))
	recs := readCSV(t, buf.String())
	require.Len(t, recs, 2)
	assert.Equal(t, PairHeader, recs[0])
	assert.Equal(t, []string{"phase", "2", "4000", "R1", "R2", "0.2", "NO_TRIP", "", "undefined", "", ""}, recs[1])
}

func TestWritePairsCSVEvaluationError(t *testing.T) {
	up := 1.2839
	pairs := []coordination.Pair{{
		FaultType: device.Phase, FaultBus: coordination.NoFaultBus, CurrentA: 2000,
		Downstream: "A", Upstream: "B", UpstreamTime: &up, Verdict: coordination.Undefined,
		DownstreamError: `relay A 51 element: unknown curve "IEC_XX"`,
	}}
	var buf bytes.Buffer
	require.NoError(t, WritePairsCSV(&buf, pairs))
	recs := readCSV(t, buf.String())
	require.Len(t, recs, 2)
	assert.Equal(t, "downstream_error", recs[0][9])
	assert.Equal(t, "upstream_error", recs[0][10])
	assert.Equal(t, "", recs[1][5], "errored relay has no time")
	assert.NotEqual(t, "NO_TRIP", recs[1][5])
	assert.Equal(t, "1.2839", recs[1][6])
	assert.Equal(t, "undefined", recs[1][8])
	assert.Contains(t, recs[1][9], "unknown curve")
	assert.Equal(t, "", recs[1][10])
}

func TestWriteBreakersAndShortCircuitCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBreakersCSV(&buf, table().Breakers))
	recs := readCSV(t, buf.String())
	assert.Equal(t, []string{"CB1", "1", "12.5", "25", "31.2", "62.5", "ok"}, recs[1])

	buf.Reset()
	require.NoError(t, WriteShortCircuitCSV(&buf, table().FaultDuty))
	recs = readCSV(t, buf.String())
	assert.Equal(t, "bus,name,vn_kv,ikss_ka,ik1_ka,ip_ka,rx,status", strings.Join(recs[0], ","))
	assert.Equal(t, []string{"0", "GRID", "20", "7.2169", "7.1", "18.1", "0.1", "ok"}, recs[1])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, table()))
	var back coordination.Table
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, coordination.OrderingRadial, back.Ordering)
	require.Len(t, back.Rows, 3)
	assert.InDelta(t, 0.35, *back.Rows[0].Margin, 1e-12)
}

func TestWriteDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteDir(dir, "feeder_phase", table(), Formats{CSV: true, JSON: true})
	require.NoError(t, err)
	require.Len(t, paths, 5)
	for _, p := range paths {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}
	assert.Equal(t, filepath.Join(dir, "feeder_phase_coordination.csv"), paths[0])

	paths, err = WriteDir(dir, "none", table(), Formats{})
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestWriteIndeterminateDutyIsEmpty(t *testing.T) {
	buses := []coordination.BusFault{
		{Bus: 1, Name: "ISO", VnKV: 11, Status: coordination.BusIndeterminate, Reason: "no source"},
		{Bus: 2, Name: "DELTA", VnKV: 11, Ik3KA: 5, IpKA: 12, RX: 0.2, Status: coordination.BusGroundIndeterminate},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteShortCircuitCSV(&buf, buses))
	recs := readCSV(t, buf.String())
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"1", "ISO", "11", "", "", "", "", "indeterminate"}, recs[1])
	assert.Equal(t, []string{"2", "DELTA", "11", "5", "", "12", "0.2", "ground_indeterminate"}, recs[2])

	checks := []coordination.BreakerCheck{
		{CB: "CB9", Bus: 1, RatingKA: 25, MakingKA: 62.5, Status: coordination.BreakerIndeterminate, Reason: "no source"},
	}
	buf.Reset()
	require.NoError(t, WriteBreakersCSV(&buf, checks))
	recs = readCSV(t, buf.String())
	require.Len(t, recs, 2)
	assert.Equal(t, []string{"CB9", "1", "", "25", "", "62.5", "indeterminate"}, recs[1])
}
