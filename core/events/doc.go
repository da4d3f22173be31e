// Package events defines what the catering core emits on the event bus.
//
// Available event types:
//   - FleetSnapshotEvent: the fleet after a state change
//   - TripEvent: a vehicle trip changed phase or ended
//   - DeliveryEvent: catering for an aircraft started or finished
package events
