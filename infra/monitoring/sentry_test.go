package monitoring

import (
	"errors"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/relaycoord/config"
	coremon "github.com/kilianp07/relaycoord/core/monitoring"
)

func TestNewSentryMonitorWithoutDSN(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{})
	require.NoError(t, err)
	assert.IsType(t, coremon.NopMonitor{}, m)
}

func TestSentryMonitorCapturesTags(t *testing.T) {
	var (
		mu     sync.Mutex
		events []*sentry.Event
	)
	m, err := newSentryMonitor(sentry.ClientOptions{
		Dsn: "https://public@127.0.0.1/1",
		BeforeSend: func(ev *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
			return nil
		},
	}, map[string]string{"service": "relaycoord"})
	require.NoError(t, err)

	m.CaptureException(errors.New("study failed"), map[string]string{"study_id": "run-1"})
	m.CaptureException(nil, nil)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 1)
	assert.Equal(t, "run-1", events[0].Tags["study_id"])
	assert.Equal(t, "relaycoord", events[0].Tags["service"])
	require.NotEmpty(t, events[0].Exception)
	assert.Equal(t, "study failed", events[0].Exception[0].Value)
}

func TestSentryMonitorCapturesPanic(t *testing.T) {
	var (
		mu     sync.Mutex
		events []*sentry.Event
	)
	m, err := newSentryMonitor(sentry.ClientOptions{
		Dsn: "https://public@127.0.0.1/1",
		BeforeSend: func(ev *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
			return nil
		},
	}, nil)
	require.NoError(t, err)

	m.CapturePanic(errors.New("index out of range"), map[string]string{"fault_type": "ground"})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 1)
	assert.Equal(t, "ground", events[0].Tags["fault_type"])
	assert.Equal(t, sentry.LevelFatal, events[0].Level)
}
