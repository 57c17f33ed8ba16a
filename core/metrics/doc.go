// Package metrics defines the sinks that record study outcomes for
// observability. Sinks such as PromSink and InfluxSink live in infra/metrics
// and are built from configuration through the sink registry; several
// configured sinks are combined in a MultiSink.
package metrics
