package types

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Odometry is a pose/velocity telemetry message in the external frame, as
// received from the vehicle.
type Odometry struct {
	Position        r3.Vec
	Orientation     quat.Number // Real is w; Imag, Jmag, Kmag are x, y, z
	LinearVelocity  r3.Vec
	AngularVelocity r3.Vec
}

// Pose is the vehicle state in the controller's operating frame.
// Angles are radians.
type Pose struct {
	Position        r3.Vec
	Roll            float64
	Pitch           float64
	Yaw             float64
	LinearVelocity  r3.Vec
	AngularVelocity r3.Vec
}

// Attitude is IMU telemetry. It is stored but not used by the control loop.
type Attitude struct {
	Orientation        quat.Number
	AngularVelocity    r3.Vec
	LinearAcceleration r3.Vec
}

// Status is vehicle health telemetry, passed through to operators.
type Status struct {
	BatteryPercent    int32
	Flying            bool
	TemperatureC      float64
	WifiStrength      int32
	FlightTimeSeconds float64
}
