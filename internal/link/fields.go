package link

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DataType represents the wire encoding of a payload field.
type DataType int

const (
	DataTypeFloat64 DataType = iota
	DataTypeInt32
)

// FieldDef describes one field of a fixed-layout telemetry payload.
type FieldDef struct {
	Name     string
	Unit     string
	DataType DataType
	Size     int
}

func float64Field(name, unit string) FieldDef {
	return FieldDef{Name: name, Unit: unit, DataType: DataTypeFloat64, Size: 8}
}

func int32Field(name, unit string) FieldDef {
	return FieldDef{Name: name, Unit: unit, DataType: DataTypeInt32, Size: 4}
}

// Payload layouts. The order determines the byte layout on the wire.
var (
	OdometryFields = []FieldDef{
		float64Field("POSITION X", "meters"),
		float64Field("POSITION Y", "meters"),
		float64Field("POSITION Z", "meters"),
		float64Field("ORIENTATION X", "quaternion"),
		float64Field("ORIENTATION Y", "quaternion"),
		float64Field("ORIENTATION Z", "quaternion"),
		float64Field("ORIENTATION W", "quaternion"),
		float64Field("LINEAR VELOCITY X", "meters/second"),
		float64Field("LINEAR VELOCITY Y", "meters/second"),
		float64Field("LINEAR VELOCITY Z", "meters/second"),
		float64Field("ANGULAR VELOCITY X", "radians/second"),
		float64Field("ANGULAR VELOCITY Y", "radians/second"),
		float64Field("ANGULAR VELOCITY Z", "radians/second"),
	}

	IMUFields = []FieldDef{
		float64Field("ORIENTATION X", "quaternion"),
		float64Field("ORIENTATION Y", "quaternion"),
		float64Field("ORIENTATION Z", "quaternion"),
		float64Field("ORIENTATION W", "quaternion"),
		float64Field("ANGULAR VELOCITY X", "radians/second"),
		float64Field("ANGULAR VELOCITY Y", "radians/second"),
		float64Field("ANGULAR VELOCITY Z", "radians/second"),
		float64Field("LINEAR ACCELERATION X", "meters/second^2"),
		float64Field("LINEAR ACCELERATION Y", "meters/second^2"),
		float64Field("LINEAR ACCELERATION Z", "meters/second^2"),
	}

	StatusFields = []FieldDef{
		int32Field("BATTERY PERCENTAGE", "percent"),
		int32Field("IS FLYING", "bool"),
		float64Field("TEMPERATURE", "celsius"),
		int32Field("WIFI STRENGTH", "percent"),
		float64Field("FLIGHT TIME", "seconds"),
	}
)

// LayoutSize returns the number of bytes a payload with the given layout occupies.
func LayoutSize(fields []FieldDef) int {
	n := 0
	for _, f := range fields {
		n += f.Size
	}
	return n
}

// ParseFieldValue decodes raw bytes into a typed value based on the DataType.
func ParseFieldValue(data []byte, dt DataType) (any, error) {
	switch dt {
	case DataTypeFloat64:
		if len(data) < 8 {
			return nil, fmt.Errorf("float64 requires 8 bytes, got %d", len(data))
		}
		bits := binary.LittleEndian.Uint64(data[:8])
		return math.Float64frombits(bits), nil
	case DataTypeInt32:
		if len(data) < 4 {
			return nil, fmt.Errorf("int32 requires 4 bytes, got %d", len(data))
		}
		return int32(binary.LittleEndian.Uint32(data[:4])), nil //nolint:gosec // intentional reinterpretation of binary-encoded signed int32
	default:
		return nil, fmt.Errorf("unsupported data type: %d", dt)
	}
}

// decodeFields decodes a payload laid out as fields, returning one value
// per field in order.
func decodeFields(data []byte, fields []FieldDef) ([]any, error) {
	if need := LayoutSize(fields); len(data) < need {
		return nil, fmt.Errorf("payload too short: got %d bytes, need %d", len(data), need)
	}
	vals := make([]any, len(fields))
	offset := 0
	for i, f := range fields {
		v, err := ParseFieldValue(data[offset:offset+f.Size], f.DataType)
		if err != nil {
			return nil, fmt.Errorf("parse field %q: %w", f.Name, err)
		}
		vals[i] = v
		offset += f.Size
	}
	return vals, nil
}
