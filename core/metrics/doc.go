// Package metrics defines the sink contracts used to observe catering trips
// and fleet occupancy. Implementations live in infra/metrics and can be
// combined with a MultiSink.
package metrics
