package state

import (
	"fmt"
	"time"

	"github.com/eytandecker/flightctl/internal/frame"
	"github.com/eytandecker/flightctl/pkg/types"
)

// Channel identifies one telemetry stream held by the Store.
type Channel int

const (
	ChannelPose Channel = iota
	ChannelAttitude
	ChannelStatus
	ChannelTrajectory
)

func (c Channel) String() string {
	switch c {
	case ChannelPose:
		return "pose"
	case ChannelAttitude:
		return "attitude"
	case ChannelStatus:
		return "status"
	case ChannelTrajectory:
		return "trajectory"
	default:
		return fmt.Sprintf("Channel(%d)", int(c))
	}
}

// Store is a concurrent-safe cache of the latest snapshot per telemetry
// channel. Each channel has its own lock, so a pose write never waits on a
// status read. Only the last write is kept.
type Store struct {
	pose       slot[types.Pose]
	attitude   slot[types.Attitude]
	status     slot[types.Status]
	trajectory slot[types.Trajectory]

	staleThreshold time.Duration
	now            func() time.Time
}

// NewStore creates a Store with the given stale threshold.
// A zero threshold disables staleness checking.
func NewStore(staleThreshold time.Duration) *Store {
	return &Store{staleThreshold: staleThreshold, now: time.Now}
}

// UpdateOdometry converts an external-frame odometry message into the
// operating frame and stores it as the current pose.
func (s *Store) UpdateOdometry(odom types.Odometry) {
	s.pose.store(frame.Normalize(odom), s.now())
}

// UpdateAttitude stores the latest IMU reading.
func (s *Store) UpdateAttitude(att types.Attitude) {
	s.attitude.store(att, s.now())
}

// UpdateStatus stores the latest vehicle status.
func (s *Store) UpdateStatus(st types.Status) {
	s.status.store(st, s.now())
}

// UpdateTrajectory replaces the stored trajectory. The slice is copied, so
// the caller may reuse it.
func (s *Store) UpdateTrajectory(traj types.Trajectory) {
	s.trajectory.store(traj.Clone(), s.now())
}

// Pose returns the latest pose. ok is false until the first update.
func (s *Store) Pose() (pose types.Pose, ok bool) {
	v, at := s.pose.load()
	return v, !at.IsZero()
}

// Attitude returns the latest IMU reading. ok is false until the first update.
func (s *Store) Attitude() (types.Attitude, bool) {
	v, at := s.attitude.load()
	return v, !at.IsZero()
}

// Status returns the latest vehicle status. ok is false until the first update.
func (s *Store) Status() (types.Status, bool) {
	v, at := s.status.load()
	return v, !at.IsZero()
}

// Trajectory returns the latest trajectory. ok is false until the first
// update. The returned slice must not be modified.
func (s *Store) Trajectory() (types.Trajectory, bool) {
	v, at := s.trajectory.load()
	return v, !at.IsZero()
}

// LastUpdated returns the time of the most recent update on ch, or zero if
// the channel was never written.
func (s *Store) LastUpdated(ch Channel) time.Time {
	switch ch {
	case ChannelPose:
		_, at := s.pose.load()
		return at
	case ChannelAttitude:
		_, at := s.attitude.load()
		return at
	case ChannelStatus:
		_, at := s.status.load()
		return at
	case ChannelTrajectory:
		_, at := s.trajectory.load()
		return at
	default:
		return time.Time{}
	}
}

// FreshPose returns the latest pose, or ErrStale if none has been received
// or its age exceeds the stale threshold.
func (s *Store) FreshPose() (types.Pose, error) {
	v, at := s.pose.load()
	if err := s.checkFresh(ChannelPose, at); err != nil {
		return types.Pose{}, err
	}
	return v, nil
}

// FreshStatus is FreshPose for the status channel.
func (s *Store) FreshStatus() (types.Status, error) {
	v, at := s.status.load()
	if err := s.checkFresh(ChannelStatus, at); err != nil {
		return types.Status{}, err
	}
	return v, nil
}

func (s *Store) checkFresh(ch Channel, at time.Time) error {
	if at.IsZero() {
		return fmt.Errorf("%w: no %s received", ErrStale, ch)
	}
	if s.staleThreshold > 0 {
		if age := s.now().Sub(at); age > s.staleThreshold {
			return fmt.Errorf("%w: %s is %s old", ErrStale, ch, age.Round(time.Millisecond))
		}
	}
	return nil
}
