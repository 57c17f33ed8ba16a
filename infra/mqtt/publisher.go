package mqtt

import (
	"context"
	"sync"

	coremqtt "github.com/kilianp07/relaycoord/core/mqtt"
)

// Publisher mirrors the core mqtt.Publisher interface.
type Publisher = coremqtt.Publisher

// MockPublisher records notifications in memory. It is used in tests.
type MockPublisher struct {
	mu       sync.Mutex
	Messages []coremqtt.StudyMessage
	Err      error
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher { return &MockPublisher{} }

// PublishStudy records msg or returns the configured error.
func (m *MockPublisher) PublishStudy(ctx context.Context, msg coremqtt.StudyMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Messages = append(m.Messages, msg)
	return nil
}

// Published returns a copy of the recorded messages.
func (m *MockPublisher) Published() []coremqtt.StudyMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]coremqtt.StudyMessage(nil), m.Messages...)
}
