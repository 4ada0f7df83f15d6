package types

import "gonum.org/v1/gonum/spatial/r2"

// Waypoint is a planar target in the mission frame. Heading is radians.
type Waypoint struct {
	X       float64
	Y       float64
	Heading float64
}

// Planar returns the waypoint position as a 2-D vector.
func (w Waypoint) Planar() r2.Vec {
	return r2.Vec{X: w.X, Y: w.Y}
}

// Trajectory is an ordered sequence of waypoints.
type Trajectory []Waypoint

// Clone returns a copy that does not share backing storage with t.
func (t Trajectory) Clone() Trajectory {
	if t == nil {
		return nil
	}
	out := make(Trajectory, len(t))
	copy(out, t)
	return out
}
