package monitoring

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	errs    []error
	panics  []any
	tags    []map[string]string
	flushes int
}

func (r *recorder) CaptureException(err error, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
}

func (r *recorder) CapturePanic(v any, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panics = append(r.panics, v)
	r.tags = append(r.tags, tags)
}

func (r *recorder) Flush(time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes++
}

func TestCaptureException(t *testing.T) {
	rec := &recorder{}
	Init(rec)
	t.Cleanup(func() { Init(nil) })

	CaptureException(nil, nil)
	CaptureException(errors.New("boom"), map[string]string{"module": "app"})
	require.Len(t, rec.errs, 1)
	assert.Equal(t, "app", rec.tags[0]["module"])
}

func TestRecoverReportsAndRepanics(t *testing.T) {
	rec := &recorder{}
	Init(rec)
	t.Cleanup(func() { Init(nil) })

	assert.PanicsWithValue(t, "bad", func() {
		defer Recover(map[string]string{"fault_type": "phase"})
		panic("bad")
	})
	require.Len(t, rec.panics, 1)
	assert.Equal(t, "bad", rec.panics[0])
	assert.Equal(t, 1, rec.flushes)

	assert.NotPanics(t, func() {
		defer Recover(nil)
	})
	assert.Len(t, rec.panics, 1)
}

func TestNopByDefault(t *testing.T) {
	Init(nil)
	assert.IsType(t, NopMonitor{}, get())
	CaptureException(errors.New("ignored"), nil)
	Flush(time.Millisecond)
}
