package mission

import "fmt"

// Phase is a step of the flight sequence.
type Phase int

const (
	Ascend Phase = iota
	OrientToHeading1
	OrientToHeading2
	FollowTrajectory
	Land
	Terminated
)

func (p Phase) String() string {
	switch p {
	case Ascend:
		return "ascend"
	case OrientToHeading1:
		return "orient_heading_1"
	case OrientToHeading2:
		return "orient_heading_2"
	case FollowTrajectory:
		return "follow_trajectory"
	case Land:
		return "land"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Done reports whether no further ticks are processed in p.
func (p Phase) Done() bool {
	return p == Land || p == Terminated
}
