package events

import (
	"time"

	"github.com/kilianp07/relaycoord/core/coordination"
	"github.com/kilianp07/relaycoord/core/device"
)

// Kind is the lifecycle stage of a study.
type Kind string

const (
	StudyStarted   Kind = "study_started"
	StudyCompleted Kind = "study_completed"
	StudyFailed    Kind = "study_failed"
)

// StudyEvent is published for each fault type analysed in a study run.
// Table is set only for StudyCompleted and Err only for StudyFailed.
type StudyEvent struct {
	Kind      Kind
	StudyID   string
	Name      string
	FaultType device.FaultType
	Table     *coordination.Table
	Duration  time.Duration
	Err       error
	Time      time.Time
}
