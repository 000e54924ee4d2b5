// Package infra holds the adapters around the scheduling core: CSV loaders,
// report writers, metrics sinks, the MQTT schedule publisher, logging and
// error monitoring. They depend on core interfaces, never the reverse.
package infra
