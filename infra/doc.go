// Package infra contains technical adapters: the ground-control HTTP and
// offline clients, MQTT and NATS status publishers, metrics exporters and the
// zerolog logger. These packages depend only on the interfaces defined in
// the core packages.
package infra
