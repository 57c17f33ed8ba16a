package metrics

import "github.com/kilianp07/relaycoord/core/factory"

// Config defines the metrics sinks of a study run.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks" yaml:"sinks" koanf:"sinks"`
	// PrometheusAddr, when set, exposes /metrics on this address.
	PrometheusAddr string `json:"prometheus_addr" yaml:"prometheus_addr" koanf:"prometheus_addr"`
}
