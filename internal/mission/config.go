package mission

import (
	"math"
	"time"

	"github.com/eytandecker/flightctl/internal/control"
	"github.com/eytandecker/flightctl/internal/pid"
)

// Config holds flight sequence parameters. Angles are radians.
type Config struct {
	TargetAltitude   float64
	YawGain          float64
	Tick             time.Duration
	Timeout          time.Duration
	Precision        float64
	HeadingThreshold float64

	// AscendAxes are the axes that must settle before the climb ends. Z is
	// always included; x, y and heading are held at the takeoff pose.
	AscendAxes control.AxisMask

	// Heading1 and Heading2 are relative to the yaw recorded after ascent.
	Heading1 float64
	Heading2 float64

	AscendDwell  time.Duration
	OrientDwell  time.Duration
	TimeoutDwell time.Duration

	FollowTrajectory bool
	Lookahead        float64

	PIDX       pid.Gains
	PIDY       pid.Gains
	PIDZ       pid.Gains
	PIDHeading pid.Gains
}

// DefaultConfig returns the stock mission: climb to 0.5 m, turn to +90 and
// -90 degrees, land.
func DefaultConfig() Config {
	return Config{
		TargetAltitude:   0.5,
		YawGain:          0.8,
		Tick:             50 * time.Millisecond,
		Timeout:          300 * time.Second,
		Precision:        0.1,
		HeadingThreshold: 10 * math.Pi / 180,
		AscendAxes:       control.AxisZ,
		Heading1:         math.Pi / 2,
		Heading2:         -math.Pi / 2,
		AscendDwell:      2 * time.Second,
		OrientDwell:      3 * time.Second,
		TimeoutDwell:     2 * time.Second,
		Lookahead:        0.1,
		PIDX:             pid.Gains{Kp: 0.3, Ki: 0.1, Kd: 0, Limit: 0.5},
		PIDY:             pid.Gains{Kp: 0.3, Ki: 0.1, Kd: 0, Limit: 0.5},
		PIDZ:             pid.Gains{Kp: 1.15, Ki: 0.4, Kd: 0, Limit: 0.5},
		PIDHeading:       pid.Gains{Kp: 0.9, Ki: 0.3, Kd: 0, Limit: 0.5},
	}
}
