package coordination

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	relayEvaluations *prometheus.CounterVec
	pairVerdicts     *prometheus.CounterVec
	breakerChecks    *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
)

func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, *prometheus.CounterVec, *prometheus.HistogramVec) {
	evals := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_evaluations_total",
			Help: "Relay trip evaluations by operating element",
		},
		[]string{"fault_type", "element"},
	)
	verdicts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coordination_pair_verdicts_total",
			Help: "Relay pair verdicts",
		},
		[]string{"fault_type", "verdict"},
	)
	breakers := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breaker_duty_checks_total",
			Help: "Breaker interrupting duty checks by status",
		},
		[]string{"status"},
	)
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coordination_analysis_duration_seconds",
			Help:    "Wall time of one coordination analysis",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"fault_type"},
	)
	return evals, verdicts, breakers, dur
}

func init() {
	relayEvaluations, pairVerdicts, breakerChecks, analysisDuration = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers the analysis metrics on reg.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(relayEvaluations, pairVerdicts, breakerChecks, analysisDuration)
}

// ResetMetrics recreates the collectors for tests and registers them on reg
// when it is not nil.
func ResetMetrics(reg prometheus.Registerer) {
	relayEvaluations, pairVerdicts, breakerChecks, analysisDuration = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}

func observeTable(t *Table) {
	ft := string(t.FaultType)
	for _, r := range t.Rows {
		el := r.Element
		switch {
		case r.Error != "":
			el = "error"
		case el == "":
			el = "none"
		}
		relayEvaluations.WithLabelValues(ft, el).Inc()
	}
	for _, p := range t.Pairs {
		pairVerdicts.WithLabelValues(ft, string(p.Verdict)).Inc()
	}
	for _, b := range t.Breakers {
		breakerChecks.WithLabelValues(string(b.Status)).Inc()
	}
}
