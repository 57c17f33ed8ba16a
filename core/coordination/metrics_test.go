package coordination

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/relaycoord/core/device"
)

func TestMetricsRegistration(t *testing.T) {
	ResetMetrics(nil)
	t.Cleanup(func() { ResetMetrics(nil) })
	reg := prometheus.NewRegistry()
	MustRegisterMetrics(reg)

	g, tbl := feederChain(t, 0.1)
	if _, err := newEngine(t).Analyze(g, tbl, Request{FaultType: device.Phase, Currents: []float64{2000, 50}}); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	expected := `
# HELP coordination_pair_verdicts_total Relay pair verdicts
# TYPE coordination_pair_verdicts_total counter
coordination_pair_verdicts_total{fault_type="phase",verdict="coordination_failure"} 1
coordination_pair_verdicts_total{fault_type="phase",verdict="undefined"} 1
`
	if err := testutil.CollectAndCompare(pairVerdicts, strings.NewReader(expected)); err != nil {
		t.Fatalf("unexpected verdict metrics: %v", err)
	}
	if got := testutil.ToFloat64(relayEvaluations.WithLabelValues("phase", "none")); got != 2 {
		t.Fatalf("expected 2 non-operating evaluations, got %v", got)
	}
	if got := testutil.ToFloat64(breakerChecks.WithLabelValues("ok")); got != 2 {
		t.Fatalf("expected 2 breaker checks, got %v", got)
	}
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	for _, n := range []string{"relay_evaluations_total", "coordination_pair_verdicts_total",
		"breaker_duty_checks_total", "coordination_analysis_duration_seconds"} {
		if !names[n] {
			t.Errorf("metric %s not registered", n)
		}
	}
}
