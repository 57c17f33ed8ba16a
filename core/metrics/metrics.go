package metrics

import (
	"time"

	"github.com/kilianp07/relaycoord/core/coordination"
	"github.com/kilianp07/relaycoord/core/device"
)

// StudyResult is one completed analysis of a study run.
type StudyResult struct {
	StudyID   string
	Name      string
	FaultType device.FaultType
	Table     *coordination.Table
	Duration  time.Duration
	Time      time.Time
}

// MetricsSink records study results.
type MetricsSink interface {
	RecordStudy(res StudyResult) error
}

// StudyFailure describes an analysis that could not complete.
type StudyFailure struct {
	StudyID   string
	Name      string
	FaultType device.FaultType
	Err       string
	Time      time.Time
}

// FailureRecorder is implemented by sinks able to record failed analyses.
type FailureRecorder interface {
	RecordFailure(f StudyFailure) error
}

// FaultDutyRecord is a short-circuit computation outside a coordination study.
type FaultDutyRecord struct {
	StudyID string
	Case    string
	Buses   []coordination.BusFault
	Time    time.Time
}

// FaultDutyRecorder is implemented by sinks able to record bus fault levels.
type FaultDutyRecorder interface {
	RecordFaultDuty(rec FaultDutyRecord) error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) RecordStudy(StudyResult) error         { return nil }
func (NopSink) RecordFailure(StudyFailure) error       { return nil }
func (NopSink) RecordFaultDuty(FaultDutyRecord) error { return nil }

// MultiSink fans records out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink combines sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordStudy forwards to every sink, returning the first error.
func (m *MultiSink) RecordStudy(res StudyResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordStudy(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordFailure forwards to sinks implementing FailureRecorder.
func (m *MultiSink) RecordFailure(f StudyFailure) error {
	for _, s := range m.Sinks {
		if r, ok := s.(FailureRecorder); ok {
			if err := r.RecordFailure(f); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordFaultDuty forwards to sinks implementing FaultDutyRecorder.
func (m *MultiSink) RecordFaultDuty(rec FaultDutyRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(FaultDutyRecorder); ok {
			if err := r.RecordFaultDuty(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close releases sinks that hold resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
