package link

import (
	"encoding/binary"
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/eytandecker/flightctl/pkg/types"
)

// waypointSize is x, y, heading as float64.
const waypointSize = 3 * 8

// maxWaypoints bounds a trajectory payload so a corrupt count cannot force
// a huge allocation.
const maxWaypoints = 10000

func floats(vals []any) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = v.(float64)
	}
	return out
}

// ParseOdometryPayload decodes an ODOMETRY payload in OdometryFields order.
// Values stay in the external frame.
func ParseOdometryPayload(data []byte) (types.Odometry, error) {
	raw, err := decodeFields(data, OdometryFields)
	if err != nil {
		return types.Odometry{}, err
	}
	v := floats(raw)
	return types.Odometry{
		Position:        r3.Vec{X: v[0], Y: v[1], Z: v[2]},
		Orientation:     quat.Number{Real: v[6], Imag: v[3], Jmag: v[4], Kmag: v[5]},
		LinearVelocity:  r3.Vec{X: v[7], Y: v[8], Z: v[9]},
		AngularVelocity: r3.Vec{X: v[10], Y: v[11], Z: v[12]},
	}, nil
}

// ParseIMUPayload decodes an IMU payload in IMUFields order.
func ParseIMUPayload(data []byte) (types.Attitude, error) {
	raw, err := decodeFields(data, IMUFields)
	if err != nil {
		return types.Attitude{}, err
	}
	v := floats(raw)
	return types.Attitude{
		Orientation:        quat.Number{Real: v[3], Imag: v[0], Jmag: v[1], Kmag: v[2]},
		AngularVelocity:    r3.Vec{X: v[4], Y: v[5], Z: v[6]},
		LinearAcceleration: r3.Vec{X: v[7], Y: v[8], Z: v[9]},
	}, nil
}

// ParseStatusPayload decodes a STATUS payload in StatusFields order.
func ParseStatusPayload(data []byte) (types.Status, error) {
	v, err := decodeFields(data, StatusFields)
	if err != nil {
		return types.Status{}, err
	}
	return types.Status{
		BatteryPercent:    v[0].(int32),
		Flying:            v[1].(int32) != 0,
		TemperatureC:      v[2].(float64),
		WifiStrength:      v[3].(int32),
		FlightTimeSeconds: v[4].(float64),
	}, nil
}

// ParseTrajectoryPayload decodes a TRAJECTORY payload: a uint32 waypoint
// count followed by count (x, y, heading) float64 triples.
func ParseTrajectoryPayload(data []byte) (types.Trajectory, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("trajectory payload too short: got %d bytes, need 4", len(data))
	}
	count := int(binary.LittleEndian.Uint32(data[0:4]))
	if count > maxWaypoints {
		return nil, fmt.Errorf("trajectory has %d waypoints, limit is %d", count, maxWaypoints)
	}
	if need := 4 + count*waypointSize; len(data) < need {
		return nil, fmt.Errorf("trajectory payload too short: got %d bytes, need %d", len(data), need)
	}

	traj := make(types.Trajectory, count)
	for i := range traj {
		off := 4 + i*waypointSize
		traj[i] = types.Waypoint{
			X:       readFloat64(data[off:]),
			Y:       readFloat64(data[off+8:]),
			Heading: readFloat64(data[off+16:]),
		}
	}
	return traj, nil
}

// EncodeTrajectoryPayload is the inverse of ParseTrajectoryPayload. The
// vehicle side of the link sends trajectories; this controller only decodes
// them, so the encoder serves simulators and tests.
func EncodeTrajectoryPayload(traj types.Trajectory) []byte {
	buf := make([]byte, 0, 4+len(traj)*waypointSize)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(traj))) //nolint:gosec // bounded by maxWaypoints on decode
	for _, wp := range traj {
		buf = appendFloat64(buf, wp.X)
		buf = appendFloat64(buf, wp.Y)
		buf = appendFloat64(buf, wp.Heading)
	}
	return buf
}

// EncodeVelocityPayload packs vx, vy, vz, wz as float64. The command must
// already be in the external frame.
func EncodeVelocityPayload(cmd types.VelocityCommand) []byte {
	buf := make([]byte, 0, 4*8)
	buf = appendFloat64(buf, cmd.Linear.X)
	buf = appendFloat64(buf, cmd.Linear.Y)
	buf = appendFloat64(buf, cmd.Linear.Z)
	buf = appendFloat64(buf, cmd.AngularZ)
	return buf
}

// ParseVelocityPayload is the inverse of EncodeVelocityPayload. Only the
// vehicle side decodes velocity commands; simulators and tests use it to
// check what the controller sent.
func ParseVelocityPayload(data []byte) (types.VelocityCommand, error) {
	if len(data) < 4*8 {
		return types.VelocityCommand{}, fmt.Errorf("velocity payload too short: got %d bytes, need %d", len(data), 4*8)
	}
	return types.VelocityCommand{
		Linear:   r3.Vec{X: readFloat64(data[0:]), Y: readFloat64(data[8:]), Z: readFloat64(data[16:])},
		AngularZ: readFloat64(data[24:]),
	}, nil
}

func readFloat64(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b[:8]))
}

func appendFloat64(b []byte, v float64) []byte {
	return binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
}
