package types

import "gonum.org/v1/gonum/spatial/r3"

// VelocityCommand is a linear plus yaw-rate setpoint sent to the vehicle.
type VelocityCommand struct {
	Linear   r3.Vec
	AngularZ float64
}

// IsZero reports whether the command is the zero-velocity stabilize command.
func (c VelocityCommand) IsZero() bool {
	return c == VelocityCommand{}
}
