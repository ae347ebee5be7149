// Package sim drives a shallow water model through time: it owns the state,
// steps it with the configured integrator and hands snapshots to observers at
// the configured output cadence.
package sim
