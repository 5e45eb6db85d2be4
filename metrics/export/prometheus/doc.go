// Package prometheus renders engine metrics in the Prometheus text
// exposition format. The exporter reads lock-free snapshots and writes the
// format by hand, so no client library dependency is needed.
package prometheus
