// Package mqtt defines the study notification published to an MQTT broker.
package mqtt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/relaycoord/core/coordination"
	"github.com/kilianp07/relaycoord/core/device"
	"github.com/kilianp07/relaycoord/core/results"
)

// StudyMessage is the JSON payload announcing a finished analysis. It carries
// the counts and the offending pairs and breakers, not the full table.
type StudyMessage struct {
	StudyID   string                      `json:"study_id"`
	Name      string                      `json:"name"`
	FaultType device.FaultType            `json:"fault_type"`
	CreatedAt time.Time                   `json:"created_at"`
	Ordering  coordination.Ordering       `json:"ordering,omitempty"`
	Summary   coordination.Summary        `json:"summary"`
	Failures  []coordination.Pair         `json:"failures,omitempty"`
	Overduty  []coordination.BreakerCheck `json:"overduty,omitempty"`
	Warnings  []string                    `json:"warnings,omitempty"`
}

// NewStudyMessage extracts the notification from a stored study.
func NewStudyMessage(s results.Study) StudyMessage {
	m := StudyMessage{
		StudyID:   s.ID,
		Name:      s.Name,
		FaultType: s.FaultType,
		CreatedAt: s.CreatedAt,
		Summary:   s.Summary,
	}
	if s.Table != nil {
		m.Ordering = s.Table.Ordering
		m.Failures = s.Table.Failures()
		m.Overduty = s.Table.Overduty()
		m.Warnings = s.Table.Warnings
	}
	return m
}

// Topic returns <prefix>/<name>/<fault type>. Characters reserved by MQTT
// are replaced in the study name.
func (m StudyMessage) Topic(prefix string) string {
	name := strings.NewReplacer("/", "_", "+", "_", "#", "_", " ", "_").Replace(m.Name)
	if name == "" {
		name = m.StudyID
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(prefix, "/"), name, m.FaultType)
}

// Publisher sends study notifications.
type Publisher interface {
	PublishStudy(ctx context.Context, msg StudyMessage) error
}

// NopPublisher drops notifications.
type NopPublisher struct{}

func (NopPublisher) PublishStudy(context.Context, StudyMessage) error { return nil }
