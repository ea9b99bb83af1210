// Package infra holds the adapters behind the core capabilities: the paho
// MQTT connection, zerolog logging, Prometheus and InfluxDB sinks and Sentry
// monitoring. Packages here depend on core, never the reverse.
package infra
