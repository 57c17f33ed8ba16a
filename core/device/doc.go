// Package device models the protective devices attached to a network:
// current transformers, circuit breakers and overcurrent relays.
//
// Devices are validated once when they are added to a Table. Analysis code
// reads them back by index and never re-validates them.
package device
