// Package metrics defines the events recorded after each scheduling run and
// the sink interfaces that persist them. Sinks such as the Prometheus and
// InfluxDB implementations in infra/metrics are registered by type name and
// combined with NewMultiSink when several are configured.
package metrics
