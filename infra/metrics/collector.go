package metrics

import (
	"context"

	"github.com/kilianp07/relaycoord/core/events"
	coremetrics "github.com/kilianp07/relaycoord/core/metrics"
	"github.com/kilianp07/relaycoord/infra/logger"
	"github.com/kilianp07/relaycoord/internal/eventbus"
)

// StartEventCollector subscribes to the study bus and records completed and
// failed analyses on sink. It stops when the context is canceled or the bus
// is closed. The returned channel is closed once the collector has exited.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[events.StudyEvent], sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	log := logger.New("metrics-collector")
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev); err != nil {
					log.Warnf("record %s for study %s: %v", ev.Kind, ev.StudyID, err)
				}
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev events.StudyEvent) error {
	switch ev.Kind {
	case events.StudyCompleted:
		return sink.RecordStudy(coremetrics.StudyResult{
			StudyID:   ev.StudyID,
			Name:      ev.Name,
			FaultType: ev.FaultType,
			Table:     ev.Table,
			Duration:  ev.Duration,
			Time:      ev.Time,
		})
	case events.StudyFailed:
		r, ok := sink.(coremetrics.FailureRecorder)
		if !ok {
			return nil
		}
		msg := ""
		if ev.Err != nil {
			msg = ev.Err.Error()
		}
		return r.RecordFailure(coremetrics.StudyFailure{
			StudyID:   ev.StudyID,
			Name:      ev.Name,
			FaultType: ev.FaultType,
			Err:       msg,
			Time:      ev.Time,
		})
	}
	return nil
}
