package metrics

import coremetrics "github.com/kilianp07/catering/core/metrics"

// MultiSink fanouts trip results to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordTripResult forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordTripResult(res coremetrics.TripResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordTripResult(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordFleetSize forwards fleet size metrics when supported by the sink.
func (m *MultiSink) RecordFleetSize(total, busy int) error {
	for _, s := range m.Sinks {
		if fr, ok := s.(coremetrics.FleetSizeRecorder); ok {
			if err := fr.RecordFleetSize(total, busy); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordDelivery forwards delivery summaries when supported by the sink.
func (m *MultiSink) RecordDelivery(rec coremetrics.DeliveryRecord) error {
	for _, s := range m.Sinks {
		if dr, ok := s.(coremetrics.DeliveryRecorder); ok {
			if err := dr.RecordDelivery(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
