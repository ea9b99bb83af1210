// Package metrics defines the sinks that record relay activity.
//
// A sink implements MetricsSink for relay publishes and may implement
// ConnectRecorder for broker connection attempts. Sinks are built from
// configuration through NewMetricsSink; several configured sinks are
// combined into a MultiSink. Implementations live in infra/metrics.
package metrics
