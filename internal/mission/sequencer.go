// Package mission drives the flight sequence: climb, turn to two headings,
// optionally follow a trajectory, and land.
package mission

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/eytandecker/flightctl/internal/control"
	"github.com/eytandecker/flightctl/internal/pid"
	"github.com/eytandecker/flightctl/pkg/types"
)

// ErrAborted is wrapped by the error Run returns when the mission is interrupted.
var ErrAborted = errors.New("mission aborted")

// StateReader is implemented by state.Store.
type StateReader interface {
	Pose() (types.Pose, bool)
	Trajectory() (types.Trajectory, bool)
}

// CommandSink is implemented by link.Client.
type CommandSink interface {
	SendVelocity(types.VelocityCommand) error
	Takeoff() error
	Land() error
	EmergencyStop() error
}

// Deregisterer is implemented by link.Feed.
type Deregisterer interface {
	Unsubscribe() error
}

// WithInitialPhase starts the sequence in p instead of Ascend.
func WithInitialPhase(p Phase) func(*Sequencer) {
	return func(s *Sequencer) {
		s.phase = p
	}
}

// WithMissionID overrides the generated mission identifier.
func WithMissionID(id string) func(*Sequencer) {
	return func(s *Sequencer) {
		s.id = id
	}
}

// WithDeregisterer sets what is unsubscribed from telemetry once the
// mission ends.
func WithDeregisterer(d Deregisterer) func(*Sequencer) {
	return func(s *Sequencer) {
		s.dereg = d
	}
}

type dwell struct {
	until time.Time
	then  func(now time.Time)
}

// Sequencer is the flight state machine. Step advances it by one tick and
// Run drives Step from a ticker.
type Sequencer struct {
	cfg   Config
	state StateReader
	sink  CommandSink
	dereg Deregisterer
	id    string
	dt    float64

	x, y, z, heading *pid.Controller

	mu          sync.Mutex
	phase       Phase
	dwell       *dwell
	start       time.Time
	elapsed     time.Duration
	tookOff     bool
	timedOut    bool
	warnedPose  bool
	ref         types.Pose
	origin      types.Pose
	traj        types.Trajectory
	target      int
	lastCommand types.VelocityCommand
}

// New creates a Sequencer. PID controllers are built once here and keep
// their state across phases until ResetControllers is called.
func New(cfg Config, st StateReader, sink CommandSink, options ...func(*Sequencer)) *Sequencer {
	s := &Sequencer{
		cfg:     cfg,
		state:   st,
		sink:    sink,
		id:      uuid.NewString(),
		dt:      cfg.Tick.Seconds(),
		x:       pid.New(cfg.PIDX),
		y:       pid.New(cfg.PIDY),
		z:       pid.New(cfg.PIDZ),
		heading: pid.New(cfg.PIDHeading),
		phase:   Ascend,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Phase returns the active phase.
func (s *Sequencer) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// ResetControllers zeroes the integral and previous error of every axis.
func (s *Sequencer) ResetControllers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range []*pid.Controller{s.x, s.y, s.z, s.heading} {
		c.Reset()
	}
}

// Run ticks the sequencer every cfg.Tick until it lands or ctx is done.
// Cancelling ctx stops the motors, lands, and returns a *types.MissionError
// wrapping ErrAborted and the cancel cause.
func (s *Sequencer) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()

	log.Printf("mission: %s starting in %s (tick %s, timeout %s)", s.id, s.Phase(), s.cfg.Tick, s.cfg.Timeout)
	log.Printf("mission: gains x=%+v y=%+v z=%+v heading=%+v", s.x.Gains(), s.y.Gains(), s.z.Gains(), s.heading.Gains())

	now := time.Now()
	for {
		if ctx.Err() != nil {
			return s.abort(ctx)
		}
		if !s.Step(now) {
			s.deregister()
			log.Printf("mission: %s finished in %s", s.id, s.Phase())
			return nil
		}
		select {
		case <-ctx.Done():
			return s.abort(ctx)
		case now = <-ticker.C:
		}
	}
}

// Step runs one control tick at now and reports whether the mission is
// still active.
func (s *Sequencer) Step(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase.Done() {
		return false
	}
	if s.start.IsZero() {
		s.start = now
	}
	s.elapsed = now.Sub(s.start)

	if !s.timedOut && s.elapsed > s.cfg.Timeout {
		s.timedOut = true
		log.Printf("mission: timeout after %s in %s, landing", s.elapsed.Round(time.Millisecond), s.phase)
		s.stabilize()
		s.beginDwell(now, s.cfg.TimeoutDwell, func(time.Time) {
			s.land()
			s.setPhase(Terminated)
		})
	}

	if s.dwell != nil {
		if now.Before(s.dwell.until) {
			return true
		}
		d := s.dwell
		s.dwell = nil
		log.Printf("mission: dwell complete in %s", s.phase)
		d.then(now)
		return !s.phase.Done()
	}

	pose := s.pose()
	switch s.phase {
	case Ascend:
		s.ascend(now, pose)
	case OrientToHeading1:
		s.orient(now, pose, s.cfg.Heading1, func(time.Time) {
			s.setPhase(OrientToHeading2)
		})
	case OrientToHeading2:
		s.orient(now, pose, s.cfg.Heading2, s.afterOrient)
	case FollowTrajectory:
		s.follow(now, pose)
	}
	return !s.phase.Done()
}

func (s *Sequencer) ascend(now time.Time, pose types.Pose) {
	if !s.tookOff {
		s.tookOff = true
		s.origin = pose
		s.signal("takeoff", s.sink.Takeoff)
	}

	axes := s.cfg.AscendAxes | control.AxisZ
	goal := control.Goal{
		X:       s.origin.Position.X,
		Y:       s.origin.Position.Y,
		Z:       s.cfg.TargetAltitude,
		Heading: s.origin.Yaw,
	}
	ev := control.ComputeError(goal, pose, axes)
	if ev.Within(s.cfg.Precision, s.cfg.HeadingThreshold) {
		log.Printf("mission: reached altitude %.2f m", pose.Position.Z)
		s.stabilize()
		s.beginDwell(now, s.cfg.AscendDwell, func(time.Time) {
			s.ref = s.pose()
			log.Printf("mission: reference yaw %.3f rad at (%.2f, %.2f)", s.ref.Yaw, s.ref.Position.X, s.ref.Position.Y)
			s.setPhase(OrientToHeading1)
		})
		return
	}

	cmd := types.VelocityCommand{Linear: r3.Vec{Z: s.z.Update(goal.Z, pose.Position.Z, s.dt)}}
	if axes.Has(control.AxisX) {
		cmd.Linear.X = s.x.Update(goal.X, pose.Position.X, s.dt)
	}
	if axes.Has(control.AxisY) {
		cmd.Linear.Y = s.y.Update(goal.Y, pose.Position.Y, s.dt)
	}
	if axes.Has(control.AxisHeading) {
		cmd.AngularZ = s.heading.Update(pose.Yaw+ev.Heading, pose.Yaw, s.dt)
	}
	s.command(cmd)
}

func (s *Sequencer) orient(now time.Time, pose types.Pose, heading float64, then func(time.Time)) {
	// Targets are offsets added to the reference yaw. The sign is deliberate;
	// subtracting the reference would turn away from the requested heading.
	goal := control.Goal{Heading: s.ref.Yaw + heading}
	ev := control.ComputeError(goal, pose, control.AxisHeading)
	if ev.Within(0, s.cfg.HeadingThreshold) {
		log.Printf("mission: reached heading %.3f rad in %s", pose.Yaw, s.phase)
		s.stabilize()
		s.beginDwell(now, s.cfg.OrientDwell, then)
		return
	}
	s.command(types.VelocityCommand{AngularZ: s.cfg.YawGain * ev.Heading})
}

func (s *Sequencer) afterOrient(time.Time) {
	if !s.cfg.FollowTrajectory {
		s.land()
		s.setPhase(Land)
		return
	}
	traj, _ := s.state.Trajectory()
	s.traj = traj
	s.target = 0
	log.Printf("mission: following trajectory of %d waypoints", len(traj))
	s.setPhase(FollowTrajectory)
}

// follow tracks the look-ahead waypoint. Waypoints are in the mission frame,
// whose origin is the position recorded after ascent.
func (s *Sequencer) follow(now time.Time, pose types.Pose) {
	pos := r2.Vec{X: pose.Position.X - s.ref.Position.X, Y: pose.Position.Y - s.ref.Position.Y}
	idx, ok := control.NextLookahead(s.traj, s.target, pos, s.cfg.Lookahead)
	if !ok {
		log.Printf("mission: end of trajectory at (%.2f, %.2f)", pos.X, pos.Y)
		s.stabilize()
		s.beginDwell(now, s.cfg.OrientDwell, func(time.Time) {
			s.land()
			s.setPhase(Land)
		})
		return
	}
	s.target = idx

	wp := s.traj[idx]
	bearing := control.HeadingToward(s.traj, idx, pos)
	yawErr := control.HeadingError(s.ref.Yaw+bearing, pose.Yaw)
	s.command(types.VelocityCommand{
		Linear:   r3.Vec{X: s.x.Update(wp.X, pos.X, s.dt), Y: s.y.Update(wp.Y, pos.Y, s.dt)},
		AngularZ: s.heading.Update(pose.Yaw+yawErr, pose.Yaw, s.dt),
	})
}

func (s *Sequencer) abort(ctx context.Context) error {
	cause := context.Cause(ctx)

	s.mu.Lock()
	phase := s.phase
	log.Printf("mission: interrupted in %s: %v", phase, cause)
	s.dwell = nil
	s.signal("emergency stop", s.sink.EmergencyStop)
	s.land()
	s.setPhase(Terminated)
	s.mu.Unlock()

	s.deregister()
	return &types.MissionError{
		Phase:   phase.String(),
		Message: "interrupted",
		Err:     fmt.Errorf("%w: %w", ErrAborted, cause),
	}
}

// pose returns the latest pose, or the zero pose before the first update.
func (s *Sequencer) pose() types.Pose {
	pose, ok := s.state.Pose()
	if !ok && !s.warnedPose {
		s.warnedPose = true
		log.Printf("mission: no pose yet, using origin")
	}
	return pose
}

func (s *Sequencer) beginDwell(now time.Time, d time.Duration, then func(time.Time)) {
	log.Printf("mission: dwell %s in %s", d, s.phase)
	s.dwell = &dwell{until: now.Add(d), then: then}
}

func (s *Sequencer) setPhase(p Phase) {
	if p == s.phase {
		return
	}
	log.Printf("mission: %s -> %s", s.phase, p)
	s.phase = p
}

func (s *Sequencer) stabilize() {
	s.command(types.VelocityCommand{})
}

func (s *Sequencer) land() {
	s.signal("land", s.sink.Land)
}

func (s *Sequencer) command(cmd types.VelocityCommand) {
	s.lastCommand = cmd
	if err := s.sink.SendVelocity(cmd); err != nil {
		log.Printf("mission: send velocity: %v", err)
	}
}

func (s *Sequencer) signal(name string, send func() error) {
	if err := send(); err != nil {
		log.Printf("mission: send %s: %v", name, err)
	}
}

func (s *Sequencer) deregister() {
	if s.dereg == nil {
		return
	}
	if err := s.dereg.Unsubscribe(); err != nil {
		log.Printf("mission: unsubscribe telemetry: %v", err)
	}
}
