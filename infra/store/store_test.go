package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/relaycoord/core/coordination"
	"github.com/kilianp07/relaycoord/core/device"
	"github.com/kilianp07/relaycoord/core/results"
)

func sampleStudies(now time.Time) []results.Study {
	margin := 0.12
	failing := &coordination.Table{
		FaultType: device.Phase,
		Ordering:  coordination.OrderingRadial,
		MinMargin: 0.3,
		Rows:      []coordination.Row{{Relay: "R1", CT: "CT1", CB: "CB1", Operates: true, TripTime: 0.45}},
		Pairs: []coordination.Pair{{
			FaultType: device.Phase, Downstream: "R1", Upstream: "R2",
			Margin: &margin, Verdict: coordination.Failure,
		}},
	}
	clean := &coordination.Table{FaultType: device.Ground, Ordering: coordination.OrderingRadial}
	return []results.Study{
		results.NewStudy("run-1", "feeder", now, failing),
		results.NewStudy("run-1", "feeder", now.Add(time.Millisecond), clean),
		results.NewStudy("run-2", "plant", now.Add(time.Second), clean),
	}
}

func exerciseStore(t *testing.T, st results.Store) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	for _, s := range sampleStudies(now) {
		require.NoError(t, st.Append(ctx, s))
	}

	all, err := st.List(ctx, results.Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "run-1", all[0].ID)
	require.NotNil(t, all[0].Table)
	require.Len(t, all[0].Table.Pairs, 1)
	assert.InDelta(t, 0.12, *all[0].Table.Pairs[0].Margin, 1e-12)

	failing, err := st.List(ctx, results.Query{FailuresOnly: true})
	require.NoError(t, err)
	require.Len(t, failing, 1)
	assert.Equal(t, device.Phase, failing[0].FaultType)

	ground, err := st.List(ctx, results.Query{FaultType: device.Ground, Name: "plant"})
	require.NoError(t, err)
	require.Len(t, ground, 1)
	assert.Equal(t, "run-2", ground[0].ID)

	late, err := st.List(ctx, results.Query{Start: now.Add(500 * time.Millisecond)})
	require.NoError(t, err)
	assert.Len(t, late, 1)

	run, err := st.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, run, 2)

	_, err = st.Get(ctx, "missing")
	assert.ErrorIs(t, err, results.ErrNotFound)
}

func TestSQLiteStore_AppendQuery(t *testing.T) {
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "studies.db"))
	require.NoError(t, err)
	defer func() { _ = st.Close() }()
	exerciseStore(t, st)
}

func TestJSONLStore_AppendQuery(t *testing.T) {
	st, err := NewJSONLStore(filepath.Join(t.TempDir(), "out", "studies.jsonl"), Rotation{})
	require.NoError(t, err)
	defer func() { _ = st.Close() }()
	exerciseStore(t, st)
}

func TestJSONLStore_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studies.jsonl")
	st, err := NewJSONLStore(path, Rotation{MaxSizeMB: 1})
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	rows := make([]coordination.Row, 2000)
	for i := range rows {
		rows[i] = coordination.Row{Relay: "R", CT: "CT", CB: "CB", Operates: true, TripTime: 0.1}
	}
	big := &coordination.Table{FaultType: device.Phase, Rows: rows}
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		require.NoError(t, st.Append(ctx, results.NewStudy("run", "big", time.Now(), big)))
	}
	files, err := st.files()
	require.NoError(t, err)
	assert.Greater(t, len(files), 1, "expected rotated backups")

	all, err := st.List(ctx, results.Query{})
	require.NoError(t, err)
	assert.Len(t, all, 20)
}

func TestJSONLStore_CancelledContext(t *testing.T) {
	st, err := NewJSONLStore(filepath.Join(t.TempDir(), "studies.jsonl"), Rotation{})
	require.NoError(t, err)
	defer func() { _ = st.Close() }()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, st.Append(ctx, results.Study{ID: "x"}), context.Canceled)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	st, err := Open("sqlite", filepath.Join(dir, "s.db"), Rotation{})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, st)
	require.NoError(t, st.Close())

	st, err = Open("jsonl", filepath.Join(dir, "s.jsonl"), Rotation{MaxSizeMB: 2})
	require.NoError(t, err)
	js, ok := st.(*JSONLStore)
	require.True(t, ok)
	assert.Equal(t, 2, js.writer.MaxSize)
	require.NoError(t, st.Close())

	_, err = Open("jsonl", "", Rotation{})
	assert.Error(t, err)
	_, err = Open("mongo", "x", Rotation{})
	assert.Error(t, err)
}
