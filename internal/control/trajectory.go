package control

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/eytandecker/flightctl/pkg/types"
)

// NextLookahead scans traj from index from and returns the first waypoint
// at least threshold away from pos. It reports false when the end of the
// trajectory is reached without finding one.
func NextLookahead(traj types.Trajectory, from int, pos r2.Vec, threshold float64) (int, bool) {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(traj); i++ {
		if r2.Norm(r2.Sub(traj[i].Planar(), pos)) >= threshold {
			return i, true
		}
	}
	return -1, false
}

// HeadingToward returns the bearing from pos to traj[index]. index must be
// a valid index into traj.
func HeadingToward(traj types.Trajectory, index int, pos r2.Vec) float64 {
	d := r2.Sub(traj[index].Planar(), pos)
	return math.Atan2(d.Y, d.X)
}
