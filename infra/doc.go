// Package infra holds the adapters behind the core interfaces: result
// stores, metrics sinks, the MQTT publisher, Sentry, logging and chart
// rendering. Core packages never import infra.
package infra
