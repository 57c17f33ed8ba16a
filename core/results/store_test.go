package results

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/relaycoord/core/coordination"
	"github.com/kilianp07/relaycoord/core/device"
)

func TestNewStudySummarizes(t *testing.T) {
	tab := &coordination.Table{
		FaultType: device.Ground,
		Pairs: []coordination.Pair{
			{Verdict: coordination.Selective},
			{Verdict: coordination.Failure},
		},
	}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	s := NewStudy("id", "feeder", at, tab)
	assert.Equal(t, device.Ground, s.FaultType)
	assert.Equal(t, 1, s.Summary.Failures)
	assert.Equal(t, time.UTC, s.CreatedAt.Location())
}

func TestQueryMatch(t *testing.T) {
	now := time.Now()
	s := Study{Name: "a", CreatedAt: now, FaultType: device.Phase}

	assert.True(t, Query{}.Match(s))
	assert.True(t, Query{Start: now.Add(-time.Minute), End: now.Add(time.Minute)}.Match(s))
	assert.False(t, Query{Start: now.Add(time.Minute)}.Match(s))
	assert.False(t, Query{End: now.Add(-time.Minute)}.Match(s))
	assert.False(t, Query{Name: "b"}.Match(s))
	assert.False(t, Query{FaultType: device.Ground}.Match(s))
	assert.False(t, Query{FailuresOnly: true}.Match(s))

	s.Summary.Overduty = 1
	assert.True(t, Query{FailuresOnly: true}.Match(s))
}

func TestNopStore(t *testing.T) {
	var st Store = NopStore{}
	require.NoError(t, st.Append(context.Background(), Study{}))
	_, err := st.Get(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, st.Close())
}
