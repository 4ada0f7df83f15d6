package link

import (
	"encoding/binary"
	"fmt"
)

const (
	HeaderSize      = 16
	ProtocolVersion = 1

	// Controller to vehicle.
	MsgOpen        = 0x0001
	MsgClose       = 0x0002
	MsgSubscribe   = 0x0003
	MsgUnsubscribe = 0x0004
	MsgHeartbeat   = 0x0005
	MsgVelocity    = 0x0010
	MsgTakeoff     = 0x0011
	MsgLand        = 0x0012
	MsgEmergency   = 0x0013

	// Vehicle to controller.
	MsgOdometry   = 0x0100
	MsgIMU        = 0x0101
	MsgStatus     = 0x0102
	MsgTrajectory = 0x0103
	MsgException  = 0x01FF
)

// Header represents a link message header.
type Header struct {
	Size    uint32
	Version uint32
	Type    uint32
	ID      uint32
}

// EncodeHeader builds a 16-byte little-endian header for a link message.
// The Size field is set to HeaderSize + payloadSize.
func EncodeHeader(msgType, msgID uint32, payloadSize int) []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(HeaderSize)+uint32(payloadSize)) //nolint:gosec // payloads are far below 4 GiB
	binary.LittleEndian.PutUint32(buf[4:8], ProtocolVersion)
	binary.LittleEndian.PutUint32(buf[8:12], msgType)
	binary.LittleEndian.PutUint32(buf[12:16], msgID)
	return buf
}

// DecodeHeader parses a 16-byte little-endian header from raw bytes.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("header too short: got %d bytes, need %d", len(data), HeaderSize)
	}
	h := Header{
		Size:    binary.LittleEndian.Uint32(data[0:4]),
		Version: binary.LittleEndian.Uint32(data[4:8]),
		Type:    binary.LittleEndian.Uint32(data[8:12]),
		ID:      binary.LittleEndian.Uint32(data[12:16]),
	}
	if h.Size < HeaderSize {
		return Header{}, fmt.Errorf("header size field %d smaller than header", h.Size)
	}
	return h, nil
}
