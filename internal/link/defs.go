package link

import "fmt"

// Channel identifies a telemetry stream the vehicle can push.
type Channel uint32

const (
	ChannelOdometry   Channel = 1
	ChannelIMU        Channel = 2
	ChannelStatus     Channel = 3
	ChannelTrajectory Channel = 4
)

// TelemetryChannels is the ordered set of channels the feed subscribes to.
var TelemetryChannels = []Channel{ChannelOdometry, ChannelIMU, ChannelStatus, ChannelTrajectory}

func (c Channel) String() string {
	switch c {
	case ChannelOdometry:
		return "odometry"
	case ChannelIMU:
		return "imu"
	case ChannelStatus:
		return "status"
	case ChannelTrajectory:
		return "trajectory"
	default:
		return fmt.Sprintf("Channel(%d)", uint32(c))
	}
}

// Validate returns ErrUnknownChannel for channels outside TelemetryChannels.
func (c Channel) Validate() error {
	for _, known := range TelemetryChannels {
		if c == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrUnknownChannel, uint32(c))
}
