package link

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/eytandecker/flightctl/pkg/types"
)

func packFloats(vals ...float64) []byte {
	buf := make([]byte, 0, len(vals)*8)
	for _, v := range vals {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	return buf
}

func odometryPayload() []byte {
	return packFloats(
		1.0, 2.0, 3.0, // position
		0.0, 0.0, 0.7071, 0.7071, // orientation x y z w
		0.1, 0.2, 0.3, // linear velocity
		0.01, 0.02, 0.03, // angular velocity
	)
}

func statusPayload(battery, flying int32, temp float64, wifi int32, flightTime float64) []byte {
	buf := binary.LittleEndian.AppendUint32(nil, uint32(battery))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(flying))
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(temp))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(wifi))
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(flightTime))
	return buf
}

func TestParseOdometryPayload(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{name: "valid payload", data: odometryPayload()},
		{name: "truncated payload returns error", data: make([]byte, 50), wantErr: true},
		{name: "empty payload returns error", data: []byte{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			odom, err := ParseOdometryPayload(tt.data)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, odom.Position)
			assert.Equal(t, quat.Number{Real: 0.7071, Kmag: 0.7071}, odom.Orientation)
			assert.Equal(t, r3.Vec{X: 0.1, Y: 0.2, Z: 0.3}, odom.LinearVelocity)
			assert.Equal(t, r3.Vec{X: 0.01, Y: 0.02, Z: 0.03}, odom.AngularVelocity)
		})
	}
}

func TestParseIMUPayload(t *testing.T) {
	data := packFloats(0.1, 0.2, 0.3, 0.9, 1, 2, 3, 0, 0, 9.81)
	att, err := ParseIMUPayload(data)
	require.NoError(t, err)
	assert.Equal(t, quat.Number{Real: 0.9, Imag: 0.1, Jmag: 0.2, Kmag: 0.3}, att.Orientation)
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, att.AngularVelocity)
	assert.Equal(t, r3.Vec{Z: 9.81}, att.LinearAcceleration)

	_, err = ParseIMUPayload(data[:40])
	assert.Error(t, err)
}

func TestParseStatusPayload(t *testing.T) {
	st, err := ParseStatusPayload(statusPayload(76, 1, 48.5, 90, 33.25))
	require.NoError(t, err)
	assert.Equal(t, types.Status{
		BatteryPercent:    76,
		Flying:            true,
		TemperatureC:      48.5,
		WifiStrength:      90,
		FlightTimeSeconds: 33.25,
	}, st)

	st, err = ParseStatusPayload(statusPayload(5, 0, 20, 10, 0))
	require.NoError(t, err)
	assert.False(t, st.Flying)

	_, err = ParseStatusPayload(make([]byte, 10))
	assert.Error(t, err)
}

func TestTrajectoryPayloadRoundTrip(t *testing.T) {
	traj := types.Trajectory{{X: 0, Y: 0, Heading: 0}, {X: 0.5, Y: -0.5, Heading: 1.57}}
	got, err := ParseTrajectoryPayload(EncodeTrajectoryPayload(traj))
	require.NoError(t, err)
	assert.Equal(t, traj, got)

	empty, err := ParseTrajectoryPayload(EncodeTrajectoryPayload(nil))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestParseTrajectoryPayloadErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "missing count", data: []byte{1, 0}},
		{name: "count exceeds data", data: binary.LittleEndian.AppendUint32(nil, 2)},
		{name: "count over limit", data: binary.LittleEndian.AppendUint32(nil, maxWaypoints+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTrajectoryPayload(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestVelocityPayloadRoundTrip(t *testing.T) {
	cmd := types.VelocityCommand{Linear: r3.Vec{X: 0.1, Y: -0.2, Z: 0.3}, AngularZ: -0.4}
	data := EncodeVelocityPayload(cmd)
	require.Len(t, data, 32)

	got, err := ParseVelocityPayload(data)
	require.NoError(t, err)
	assert.Equal(t, cmd, got)

	_, err = ParseVelocityPayload(data[:31])
	assert.Error(t, err)
}
