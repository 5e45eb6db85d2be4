// Package otel bridges engine metrics into OpenTelemetry as observable
// instruments. A single registered callback reads one snapshot per
// collection cycle.
package otel
