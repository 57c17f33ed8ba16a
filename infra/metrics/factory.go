package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/relaycoord/core/factory"
	coremetrics "github.com/kilianp07/relaycoord/core/metrics"
)

// init registers the built-in metrics sinks. "nop" is provided by core/metrics.
func init() {
	coremetrics.MustRegisterMetricsSink("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	})

	coremetrics.MustRegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c struct {
			URL    string `json:"url"`
			Token  string `json:"token"`
			Org    string `json:"org"`
			Bucket string `json:"bucket"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})
}
