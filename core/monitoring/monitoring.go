// Package monitoring reports unexpected errors and panics to an external
// tracker. The process-wide monitor discards everything until Init installs
// one.
package monitoring

import (
	"sync"
	"time"
)

// Monitor reports errors and panics.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	CapturePanic(v any, tags map[string]string)
	Flush(timeout time.Duration)
}

// NopMonitor discards everything.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) CapturePanic(any, map[string]string)       {}
func (NopMonitor) Flush(time.Duration)                       {}

var (
	mu      sync.RWMutex
	current Monitor = NopMonitor{}
)

// Init installs m as the process-wide monitor; nil restores the no-op one.
func Init(m Monitor) {
	if m == nil {
		m = NopMonitor{}
	}
	mu.Lock()
	current = m
	mu.Unlock()
}

func get() Monitor {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// CaptureException records err with optional tags. A nil err is ignored.
func CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	get().CaptureException(err, tags)
}

// Recover must be deferred directly. It reports a panic with tags, flushes
// and panics again.
func Recover(tags map[string]string) {
	if v := recover(); v != nil {
		m := get()
		m.CapturePanic(v, tags)
		m.Flush(2 * time.Second)
		panic(v)
	}
}

// Flush waits up to d for buffered reports to be sent.
func Flush(d time.Duration) { get().Flush(d) }
