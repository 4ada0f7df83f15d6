package mission

import "github.com/eytandecker/flightctl/pkg/types"

// Integrals are the accumulated PID integral terms per axis.
type Integrals struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
	Heading float64 `json:"heading"`
}

// Report is a point-in-time view of the sequencer.
type Report struct {
	MissionID       string                `json:"mission_id"`
	Phase           string                `json:"phase"`
	Dwelling        bool                  `json:"dwelling"`
	ElapsedSeconds  float64               `json:"elapsed_seconds"`
	TimedOut        bool                  `json:"timed_out"`
	TrajectoryIndex int                   `json:"trajectory_index"`
	LastCommand     types.VelocityCommand `json:"last_command"`
	Integrals       Integrals             `json:"integrals"`
}

// Report returns a snapshot. It is safe to call while Run is active.
func (s *Sequencer) Report() Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Report{
		MissionID:       s.id,
		Phase:           s.phase.String(),
		Dwelling:        s.dwell != nil,
		ElapsedSeconds:  s.elapsed.Seconds(),
		TimedOut:        s.timedOut,
		TrajectoryIndex: s.target,
		LastCommand:     s.lastCommand,
		Integrals: Integrals{
			X:       s.x.Integral(),
			Y:       s.y.Integral(),
			Z:       s.z.Integral(),
			Heading: s.heading.Integral(),
		},
	}
}
