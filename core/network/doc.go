// Package network is the read-only view of the electrical network consumed by
// the short-circuit and coordination engines.
//
// Model is the boundary: any topology store can implement it. Grid is an
// in-memory implementation used by the study file loader and by tests.
package network
