// Package app wires the analysis engines to storage, metrics, MQTT and
// exporters for study runs.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/relaycoord/config"
	"github.com/kilianp07/relaycoord/core/coordination"
	"github.com/kilianp07/relaycoord/core/events"
	coremetrics "github.com/kilianp07/relaycoord/core/metrics"
	"github.com/kilianp07/relaycoord/core/monitoring"
	coremqtt "github.com/kilianp07/relaycoord/core/mqtt"
	"github.com/kilianp07/relaycoord/core/network"
	"github.com/kilianp07/relaycoord/core/results"
	"github.com/kilianp07/relaycoord/infra/logger"
	"github.com/kilianp07/relaycoord/infra/metrics"
	"github.com/kilianp07/relaycoord/infra/mqtt"
	"github.com/kilianp07/relaycoord/infra/store"
	"github.com/kilianp07/relaycoord/internal/eventbus"
	"github.com/kilianp07/relaycoord/pkg/studyfile"
)

// drainTimeout bounds how long Close waits for pending metrics events.
const drainTimeout = 5 * time.Second

// Service runs coordination studies and distributes their results.
type Service struct {
	cfg    *config.Config
	engine *coordination.Engine
	store  results.Store
	sink   coremetrics.MetricsSink
	pub    coremqtt.Publisher
	bus    *eventbus.Bus[events.StudyEvent]
	log    logger.Logger

	now   func() time.Time
	newID func() string

	stopCollector context.CancelFunc
	collectorDone <-chan struct{}
}

// Option overrides a dependency of the service.
type Option func(*Service)

// WithStore replaces the configured result store.
func WithStore(s results.Store) Option { return func(svc *Service) { svc.store = s } }

// WithSink replaces the configured metrics sinks.
func WithSink(s coremetrics.MetricsSink) Option { return func(svc *Service) { svc.sink = s } }

// WithPublisher replaces the MQTT publisher.
func WithPublisher(p coremqtt.Publisher) Option { return func(svc *Service) { svc.pub = p } }

// WithLogger replaces the service logger.
func WithLogger(l logger.Logger) Option { return func(svc *Service) { svc.log = l } }

// WithClock sets the time source used for study timestamps.
func WithClock(now func() time.Time) Option { return func(svc *Service) { svc.now = now } }

// WithIDGenerator sets how study run IDs are generated.
func WithIDGenerator(f func() string) Option { return func(svc *Service) { svc.newID = f } }

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	svc := &Service{
		cfg:   cfg,
		bus:   eventbus.New[events.StudyEvent](),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(svc)
	}
	if svc.log == nil {
		svc.log = logger.New("service")
	}

	engine, err := coordination.NewEngine(cfg.Study.Coordination(), logger.New("coordination"))
	if err != nil {
		return nil, err
	}
	svc.engine = engine

	if svc.store == nil {
		st, err := store.Open(cfg.Store.Backend, cfg.Store.Path, store.Rotation{
			MaxSizeMB:  cfg.Store.MaxSizeMB,
			MaxBackups: cfg.Store.MaxBackups,
			MaxAgeDays: cfg.Store.MaxAgeDays,
			Compress:   cfg.Store.Compress,
		})
		if err != nil {
			return nil, fmt.Errorf("result store: %w", err)
		}
		svc.store = st
	}
	if svc.sink == nil {
		sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
		if err != nil {
			_ = svc.store.Close()
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
		svc.sink = sink
	}
	if svc.pub == nil {
		svc.pub = coremqtt.NopPublisher{}
		if cfg.MQTT.Enabled {
			p, err := mqtt.NewPahoPublisher(cfg.MQTT)
			if err != nil {
				_ = svc.store.Close()
				return nil, fmt.Errorf("mqtt publisher: %w", err)
			}
			svc.pub = p
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	svc.stopCollector = cancel
	svc.collectorDone = metrics.StartEventCollector(ctx, svc.bus, svc.sink)
	return svc, nil
}

// Events returns a subscription to study lifecycle events. It is closed by Close.
func (s *Service) Events() <-chan events.StudyEvent { return s.bus.Subscribe() }

// Report is the outcome of one study run.
type Report struct {
	StudyID string
	Name    string
	// Studies holds one record per fault type, in configured order.
	Studies []results.Study
	Files   []string
}

// Failures counts failed pairs over every fault type.
func (r *Report) Failures() int {
	n := 0
	for _, s := range r.Studies {
		n += s.Summary.Failures
	}
	return n
}

// Overduty counts overdutied breakers over every fault type.
func (r *Report) Overduty() int {
	n := 0
	for _, s := range r.Studies {
		n += s.Summary.Overduty
	}
	return n
}

// Run loads the study file at path and runs it.
func (s *Service) Run(ctx context.Context, path string) (*Report, error) {
	st, err := studyfile.Load(path, studyfile.Options{FrequencyHz: s.cfg.Study.FrequencyHz})
	if err != nil {
		monitoring.CaptureException(err, map[string]string{"module": "app", "file": path})
		return nil, err
	}
	return s.RunStudy(ctx, st)
}

// RunStudy analyses every configured fault type of st concurrently, then
// persists, publishes and exports the tables.
func (s *Service) RunStudy(ctx context.Context, st *studyfile.Study) (*Report, error) {
	fts, err := s.cfg.Study.ParsedFaultTypes()
	if err != nil {
		return nil, err
	}
	id := s.newID()
	currents := s.cfg.Study.TestCurrents
	if len(currents) == 0 {
		currents = st.TestCurrents
	}
	var model network.Model
	if st.Grid != nil && len(st.Grid.BusList) > 0 {
		model = st.Grid
	}
	s.log.Infof("study %s (%s): %d relays, %d fault types", st.Name, id, st.Devices.NumRelays(), len(fts))
	s.log.Debugf("%s", st.Devices.Summary())

	tables := make([]*coordination.Table, len(fts))
	g, gctx := errgroup.WithContext(ctx)
	for i, ft := range fts {
		g.Go(func() error {
			defer monitoring.Recover(map[string]string{"module": "app", "study_id": id, "fault_type": string(ft)})
			start := s.now()
			s.bus.Publish(events.StudyEvent{Kind: events.StudyStarted, StudyID: id, Name: st.Name, FaultType: ft, Time: start})
			t, err := s.analyze(gctx, model, st, coordination.Request{
				FaultType:  ft,
				Currents:   currents,
				FaultBuses: s.cfg.Study.FaultBuses,
			})
			if err != nil {
				err = fmt.Errorf("%s analysis: %w", ft, err)
				s.bus.Publish(events.StudyEvent{Kind: events.StudyFailed, StudyID: id, Name: st.Name, FaultType: ft, Err: err, Time: s.now()})
				if !errors.Is(err, context.Canceled) {
					monitoring.CaptureException(err, map[string]string{"module": "app", "study_id": id, "fault_type": string(ft)})
				}
				return err
			}
			tables[i] = t
			s.bus.Publish(events.StudyEvent{
				Kind:      events.StudyCompleted,
				StudyID:   id,
				Name:      st.Name,
				FaultType: ft,
				Table:     t,
				Duration:  s.now().Sub(start),
				Time:      s.now(),
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep := &Report{StudyID: id, Name: st.Name}
	at := s.now()
	for _, t := range tables {
		rec := results.NewStudy(id, st.Name, at, t)
		if err := s.store.Append(ctx, rec); err != nil {
			monitoring.CaptureException(err, map[string]string{"module": "store", "study_id": id})
			return nil, fmt.Errorf("store study: %w", err)
		}
		if err := s.pub.PublishStudy(ctx, coremqtt.NewStudyMessage(rec)); err != nil {
			s.log.Warnf("publish study %s %s: %v", id, rec.FaultType, err)
		}
		rep.Studies = append(rep.Studies, rec)

		files, err := s.exportTable(st, t)
		rep.Files = append(rep.Files, files...)
		if err != nil {
			return rep, err
		}
	}
	s.log.Infof("study %s done: %d failures, %d breakers overduty, %d files", id, rep.Failures(), rep.Overduty(), len(rep.Files))
	return rep, nil
}

func (s *Service) analyze(ctx context.Context, m network.Model, st *studyfile.Study, req coordination.Request) (*coordination.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.engine.Analyze(m, st.Devices, req)
}

// Close stops the metrics collector after it has drained pending events and
// releases the store, publisher and sinks.
func (s *Service) Close() error {
	s.bus.Close()
	select {
	case <-s.collectorDone:
	case <-time.After(drainTimeout):
		s.log.Warnf("metrics collector did not drain within %s", drainTimeout)
	}
	s.stopCollector()
	if d, ok := s.pub.(interface{ Disconnect() }); ok {
		d.Disconnect()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	return s.store.Close()
}
