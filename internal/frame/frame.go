// Package frame converts telemetry and commands between the vehicle's
// external frame and the controller's operating frame.
//
// The two frames differ by a rotation of pi about the x axis: y and z
// change sign, and so do pitch and yaw. The conversion is its own inverse.
package frame

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/eytandecker/flightctl/pkg/types"
)

// Normalize converts an external-frame odometry message into a Pose in the
// operating frame. It must be applied exactly once, on ingestion.
func Normalize(odom types.Odometry) types.Pose {
	roll, pitch, yaw := EulerFromQuaternion(odom.Orientation)
	return types.Pose{
		Position:        flipYZ(odom.Position),
		Roll:            roll,
		Pitch:           -pitch,
		Yaw:             -yaw,
		LinearVelocity:  flipYZ(odom.LinearVelocity),
		AngularVelocity: flipYZ(odom.AngularVelocity),
	}
}

// Denormalize is the inverse of Normalize.
func Denormalize(p types.Pose) types.Odometry {
	return types.Odometry{
		Position:        flipYZ(p.Position),
		Orientation:     QuaternionFromEuler(p.Roll, -p.Pitch, -p.Yaw),
		LinearVelocity:  flipYZ(p.LinearVelocity),
		AngularVelocity: flipYZ(p.AngularVelocity),
	}
}

// ToExternal converts an operating-frame velocity command into the frame
// the vehicle expects.
func ToExternal(cmd types.VelocityCommand) types.VelocityCommand {
	return types.VelocityCommand{
		Linear:   flipYZ(cmd.Linear),
		AngularZ: -cmd.AngularZ,
	}
}

func flipYZ(v r3.Vec) r3.Vec {
	return r3.Vec{X: v.X, Y: -v.Y, Z: -v.Z}
}

// EulerFromQuaternion returns roll, pitch and yaw (static x-y-z axes) for q.
// q is normalized first; a zero quaternion is treated as the identity.
func EulerFromQuaternion(q quat.Number) (roll, pitch, yaw float64) {
	n := quat.Abs(q)
	if n == 0 {
		return 0, 0, 0
	}
	q = quat.Scale(1/n, q)
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag

	roll = math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))

	// cos(pitch) comes from the first rotation-matrix column rather than
	// from sinp, so pitch stays accurate at gimbal lock.
	pitch = pitchFrom(2*(w*y-z*x), math.Hypot(1-2*(y*y+z*z), 2*(x*y+w*z)))
	yaw = math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))
	return roll, pitch, yaw
}

// pitchFrom returns the pitch whose sine and cosine are proportional to
// sinp and cosp. Rounding can push sinp just outside [-1, 1].
func pitchFrom(sinp, cosp float64) float64 {
	switch {
	case sinp >= 1:
		return math.Pi / 2
	case sinp <= -1:
		return -math.Pi / 2
	}
	return math.Atan2(sinp, math.Abs(cosp))
}

// QuaternionFromEuler is the inverse of EulerFromQuaternion.
func QuaternionFromEuler(roll, pitch, yaw float64) quat.Number {
	sr, cr := math.Sincos(roll / 2)
	sp, cp := math.Sincos(pitch / 2)
	sy, cy := math.Sincos(yaw / 2)
	return quat.Number{
		Real: cr*cp*cy + sr*sp*sy,
		Imag: sr*cp*cy - cr*sp*sy,
		Jmag: cr*sp*cy + sr*cp*sy,
		Kmag: cr*cp*sy - sr*sp*cy,
	}
}
