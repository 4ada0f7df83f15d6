// Package control computes tracking errors against goals and selects
// look-ahead targets along a trajectory.
package control

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/eytandecker/flightctl/pkg/types"
)

// AxisMask selects which axes an error computation covers.
type AxisMask uint8

const (
	AxisX AxisMask = 1 << iota
	AxisY
	AxisZ
	AxisHeading

	AxisNone AxisMask = 0
	AxisAll           = AxisX | AxisY | AxisZ | AxisHeading
)

// Has reports whether every axis in a is set in m.
func (m AxisMask) Has(a AxisMask) bool {
	return m&a == a
}

func (m AxisMask) String() string {
	var b strings.Builder
	for _, a := range []struct {
		axis AxisMask
		name byte
	}{{AxisX, 'x'}, {AxisY, 'y'}, {AxisZ, 'z'}, {AxisHeading, 'w'}} {
		if m.Has(a.axis) {
			b.WriteByte(a.name)
		}
	}
	return b.String()
}

// ParseAxisMask converts a string such as "xyzw" into an AxisMask. Heading
// may be written as 'w' or 'h'.
func ParseAxisMask(s string) (AxisMask, error) {
	var m AxisMask
	for _, r := range strings.ToLower(s) {
		switch r {
		case 'x':
			m |= AxisX
		case 'y':
			m |= AxisY
		case 'z':
			m |= AxisZ
		case 'w', 'h':
			m |= AxisHeading
		default:
			return AxisNone, fmt.Errorf("unknown axis %q in mask %q", r, s)
		}
	}
	return m, nil
}

// Goal is a target state. Heading is radians in the operating frame.
type Goal struct {
	X       float64
	Y       float64
	Z       float64
	Heading float64
}

// ErrorVector holds goal minus current per axis. Axes outside Mask are zero.
type ErrorVector struct {
	X       float64
	Y       float64
	Z       float64
	Heading float64 // (-pi, pi]

	// Distance is the planar norm of (X, Y).
	Distance float64
	Mask     AxisMask
}

// ComputeError returns the error between goal and the current pose for the
// axes in mask.
func ComputeError(goal Goal, current types.Pose, mask AxisMask) ErrorVector {
	ev := ErrorVector{Mask: mask}
	if mask.Has(AxisX) {
		ev.X = goal.X - current.Position.X
	}
	if mask.Has(AxisY) {
		ev.Y = goal.Y - current.Position.Y
	}
	if mask.Has(AxisZ) {
		ev.Z = goal.Z - current.Position.Z
	}
	if mask.Has(AxisHeading) {
		ev.Heading = HeadingError(goal.Heading, current.Yaw)
	}
	ev.Distance = r2.Norm(r2.Vec{X: ev.X, Y: ev.Y})
	return ev
}

// Within reports whether every masked axis is inside its tolerance. The
// planar axes are checked together through Distance.
func (ev ErrorVector) Within(position, heading float64) bool {
	if (ev.Mask.Has(AxisX) || ev.Mask.Has(AxisY)) && ev.Distance > position {
		return false
	}
	if ev.Mask.Has(AxisZ) && math.Abs(ev.Z) > position {
		return false
	}
	if ev.Mask.Has(AxisHeading) && math.Abs(ev.Heading) > heading {
		return false
	}
	return true
}

// HeadingError returns the shortest signed turn from current to target.
func HeadingError(target, current float64) float64 {
	return NormalizeAngle(target - current)
}

// NormalizeAngle wraps a into (-pi, pi].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
