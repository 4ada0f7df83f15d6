package link

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldValue(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		dt      DataType
		want    any
		wantErr bool
	}{
		{
			name: "float64 altitude",
			data: func() []byte {
				b := make([]byte, 8)
				binary.LittleEndian.PutUint64(b, math.Float64bits(0.5))
				return b
			}(),
			dt:   DataTypeFloat64,
			want: 0.5,
		},
		{
			name: "float64 negative",
			data: func() []byte {
				b := make([]byte, 8)
				binary.LittleEndian.PutUint64(b, math.Float64bits(-1.57))
				return b
			}(),
			dt:   DataTypeFloat64,
			want: -1.57,
		},
		{
			name: "int32 negative",
			data: func() []byte {
				b := make([]byte, 4)
				binary.LittleEndian.PutUint32(b, 0xFFFFFFFF)
				return b
			}(),
			dt:   DataTypeInt32,
			want: int32(-1),
		},
		{
			name:    "float64 insufficient bytes",
			data:    make([]byte, 4),
			dt:      DataTypeFloat64,
			wantErr: true,
		},
		{
			name:    "int32 insufficient bytes",
			data:    make([]byte, 2),
			dt:      DataTypeInt32,
			wantErr: true,
		},
		{
			name:    "unsupported type",
			data:    make([]byte, 8),
			dt:      DataType(9),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFieldValue(tt.data, tt.dt)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLayoutSizes(t *testing.T) {
	assert.Equal(t, 13*8, LayoutSize(OdometryFields))
	assert.Equal(t, 10*8, LayoutSize(IMUFields))
	assert.Equal(t, 3*4+2*8, LayoutSize(StatusFields))
}

func TestChannelValidate(t *testing.T) {
	for _, ch := range TelemetryChannels {
		assert.NoError(t, ch.Validate(), ch.String())
	}
	assert.ErrorIs(t, Channel(0).Validate(), ErrUnknownChannel)
	assert.Equal(t, "Channel(77)", Channel(77).String())
}
