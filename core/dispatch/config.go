package dispatch

import (
	"fmt"
	"time"
)

// Config tunes the orchestrator. Durations are given in milliseconds so they
// can be set from yaml, json and environment variables alike.
type Config struct {
	GlobalFleetLimit   int     `json:"global_fleet_limit"`
	PerFlightLimit     int     `json:"per_flight_limit"`
	InitialVehicles    int     `json:"initial_vehicles"`
	VehicleType        string  `json:"vehicle_type"`
	MovementSpeed      float64 `json:"movement_speed"`
	ConflictRetryCount int     `json:"conflict_retry_count"`
	ConflictBackoffMS  int     `json:"conflict_backoff_ms"`
	PollIntervalMS     int     `json:"poll_interval_ms"`
	TransitUnitMS      int     `json:"transit_unit_ms"`
	ServiceDwellMS     int     `json:"service_dwell_ms"`
}

// SetDefaults applies the values used at the airport today.
func (c *Config) SetDefaults() {
	if c.GlobalFleetLimit == 0 {
		c.GlobalFleetLimit = 5
	}
	if c.PerFlightLimit == 0 {
		c.PerFlightLimit = 2
	}
	if c.InitialVehicles == 0 {
		c.InitialVehicles = c.GlobalFleetLimit
	}
	if c.VehicleType == "" {
		c.VehicleType = "catering"
	}
	if c.MovementSpeed == 0 {
		c.MovementSpeed = 10
	}
	if c.ConflictRetryCount == 0 {
		c.ConflictRetryCount = 30
	}
	if c.ConflictBackoffMS == 0 {
		c.ConflictBackoffMS = 2000
	}
	if c.PollIntervalMS == 0 {
		c.PollIntervalMS = 1000
	}
	if c.TransitUnitMS == 0 {
		c.TransitUnitMS = 1000
	}
	if c.ServiceDwellMS == 0 {
		c.ServiceDwellMS = 5000
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.GlobalFleetLimit < 1 {
		return fmt.Errorf("global_fleet_limit must be positive")
	}
	if c.PerFlightLimit < 1 {
		return fmt.Errorf("per_flight_limit must be positive")
	}
	if c.InitialVehicles < 0 {
		return fmt.Errorf("initial_vehicles must not be negative")
	}
	if c.MovementSpeed <= 0 {
		return fmt.Errorf("movement_speed must be positive")
	}
	if c.ConflictRetryCount < 1 {
		return fmt.Errorf("conflict_retry_count must be at least 1")
	}
	if c.ConflictBackoffMS < 0 || c.PollIntervalMS < 0 || c.TransitUnitMS < 0 || c.ServiceDwellMS < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

func (c Config) ConflictBackoff() time.Duration { return ms(c.ConflictBackoffMS) }
func (c Config) PollInterval() time.Duration    { return ms(c.PollIntervalMS) }
func (c Config) TransitUnit() time.Duration     { return ms(c.TransitUnitMS) }
func (c Config) ServiceDwell() time.Duration    { return ms(c.ServiceDwellMS) }

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// Tuning holds the parameters an operator may change at runtime.
type Tuning struct {
	ConflictRetryCount int     `json:"conflict_retry_count"`
	MovementSpeed      float64 `json:"movement_speed"`
	NumberOfVehicles   int     `json:"number_of_vehicles"`
}

// Validate rejects values the orchestrator cannot run with.
func (t Tuning) Validate() error {
	if t.ConflictRetryCount < 1 {
		return fmt.Errorf("conflict_retry_count must be at least 1")
	}
	if t.MovementSpeed <= 0 {
		return fmt.Errorf("movement_speed must be positive")
	}
	if t.NumberOfVehicles < 0 {
		return fmt.Errorf("number_of_vehicles must not be negative")
	}
	return nil
}
