// Package results holds persisted study records and the Store abstraction
// implemented by infra/store.
package results

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/relaycoord/core/coordination"
	"github.com/kilianp07/relaycoord/core/device"
)

// ErrNotFound is returned by Get when no study matches.
var ErrNotFound = errors.New("study not found")

// Study is one analysed fault type of a study run.
type Study struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	CreatedAt time.Time            `json:"created_at"`
	FaultType device.FaultType     `json:"fault_type"`
	Summary   coordination.Summary `json:"summary"`
	Table     *coordination.Table  `json:"table,omitempty"`
}

// NewStudy builds a record from an analysis table.
func NewStudy(id, name string, at time.Time, t *coordination.Table) Study {
	s := Study{ID: id, Name: name, CreatedAt: at.UTC(), Table: t}
	if t != nil {
		s.FaultType = t.FaultType
		s.Summary = t.Summarize()
	}
	return s
}

// Query filters stored studies. Zero values match everything.
type Query struct {
	Start     time.Time
	End       time.Time
	Name      string
	FaultType device.FaultType
	// FailuresOnly keeps studies with at least one failed pair or overdutied breaker.
	FailuresOnly bool
}

// Match reports whether s satisfies q.
func (q Query) Match(s Study) bool {
	if !q.Start.IsZero() && s.CreatedAt.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && s.CreatedAt.After(q.End) {
		return false
	}
	if q.Name != "" && s.Name != q.Name {
		return false
	}
	if q.FaultType != "" && s.FaultType != q.FaultType {
		return false
	}
	if q.FailuresOnly && s.Summary.Failures == 0 && s.Summary.Overduty == 0 {
		return false
	}
	return true
}

// Store persists studies and supports querying.
type Store interface {
	Append(ctx context.Context, s Study) error
	List(ctx context.Context, q Query) ([]Study, error)
	// Get returns every fault type recorded under the run id.
	Get(ctx context.Context, id string) ([]Study, error)
	Close() error
}

// NopStore drops everything.
type NopStore struct{}

func (NopStore) Append(context.Context, Study) error { return nil }
func (NopStore) List(context.Context, Query) ([]Study, error) {
	return nil, nil
}
func (NopStore) Get(context.Context, string) ([]Study, error) { return nil, ErrNotFound }
func (NopStore) Close() error                                 { return nil }
