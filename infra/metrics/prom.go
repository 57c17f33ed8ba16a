package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/relaycoord/core/coordination"
	coremetrics "github.com/kilianp07/relaycoord/core/metrics"
)

// PromSink records study outcomes in Prometheus metrics.
type PromSink struct {
	studies   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	margins   *prometheus.HistogramVec
	failures  *prometheus.GaugeVec
	overduty  *prometheus.GaugeVec
	faultKA   *prometheus.GaugeVec
	lastStudy *prometheus.GaugeVec
}

// NewPromSink registers study metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		studies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relaycoord_studies_total",
			Help: "Analyses run, by fault type and outcome",
		}, []string{"fault_type", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "relaycoord_study_duration_seconds",
			Help:    "Wall time of one coordination analysis",
			Buckets: prometheus.DefBuckets,
		}, []string{"fault_type"}),
		margins: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "relaycoord_pair_margin_seconds",
			Help:    "Time margin between a relay and its backup",
			Buckets: []float64{-1, -0.3, 0, 0.1, 0.2, 0.3, 0.4, 0.5, 1, 2, 5},
		}, []string{"fault_type"}),
		failures: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "relaycoord_coordination_failures",
			Help: "Non-selective pairs in the latest study",
		}, []string{"study", "fault_type"}),
		overduty: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "relaycoord_breakers_overduty",
			Help: "Breakers whose rating is exceeded in the latest study",
		}, []string{"study", "fault_type"}),
		faultKA: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "relaycoord_bus_fault_current_ka",
			Help: "Initial symmetrical short-circuit current per bus",
		}, []string{"bus", "case", "fault_type"}),
		lastStudy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "relaycoord_last_study_timestamp_seconds",
			Help: "Unix time of the latest completed study",
		}, []string{"study"}),
	}
	var err error
	if s.studies, err = register(reg, s.studies); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.margins, err = register(reg, s.margins); err != nil {
		return nil, err
	}
	if s.failures, err = register(reg, s.failures); err != nil {
		return nil, err
	}
	if s.overduty, err = register(reg, s.overduty); err != nil {
		return nil, err
	}
	if s.faultKA, err = register(reg, s.faultKA); err != nil {
		return nil, err
	}
	if s.lastStudy, err = register(reg, s.lastStudy); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordStudy updates the counters and gauges from a completed analysis.
func (s *PromSink) RecordStudy(res coremetrics.StudyResult) error {
	ft := res.FaultType.String()
	s.studies.WithLabelValues(ft, "completed").Inc()
	s.duration.WithLabelValues(ft).Observe(res.Duration.Seconds())
	if res.Table == nil {
		return nil
	}
	for _, p := range res.Table.Pairs {
		if p.Margin != nil {
			s.margins.WithLabelValues(ft).Observe(*p.Margin)
		}
	}
	sum := res.Table.Summarize()
	s.failures.WithLabelValues(res.Name, ft).Set(float64(sum.Failures))
	s.overduty.WithLabelValues(res.Name, ft).Set(float64(sum.Overduty))
	s.lastStudy.WithLabelValues(res.Name).Set(float64(res.Time.Unix()))
	for _, b := range res.Table.FaultDuty {
		s.setBus(b.Name, "", b.Ik3KA, b.Ik1KA, b.Status)
	}
	return nil
}

// RecordFailure counts an analysis that could not complete.
func (s *PromSink) RecordFailure(f coremetrics.StudyFailure) error {
	s.studies.WithLabelValues(f.FaultType.String(), "failed").Inc()
	return nil
}

// RecordFaultDuty sets the per-bus fault current gauges.
func (s *PromSink) RecordFaultDuty(rec coremetrics.FaultDutyRecord) error {
	for _, b := range rec.Buses {
		s.setBus(b.Name, rec.Case, b.Ik3KA, b.Ik1KA, b.Status)
	}
	return nil
}

func (s *PromSink) setBus(bus, scCase string, ik3, ik1 float64, status string) {
	if status == coordination.BusIndeterminate {
		return
	}
	s.faultKA.WithLabelValues(bus, scCase, "phase").Set(ik3)
	if status == coordination.BusOK {
		s.faultKA.WithLabelValues(bus, scCase, "ground").Set(ik1)
	}
}
