package link

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"go.bug.st/serial"

	"github.com/eytandecker/flightctl/internal/frame"
	"github.com/eytandecker/flightctl/pkg/types"
)

// Config holds vehicle link configuration. When SerialPort is set the link
// runs over that serial device instead of TCP.
type Config struct {
	Host       string
	Port       int
	Timeout    time.Duration
	AppName    string
	SerialPort string
	BaudRate   int
}

// ConnectionState represents the client's connection lifecycle.
type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return fmt.Sprintf("ConnectionState(%d)", int32(s))
	}
}

// Client manages the byte stream to the vehicle. Writes are serialized;
// reads are expected from a single goroutine.
type Client struct {
	config Config
	conn   io.ReadWriteCloser
	state  atomic.Int32
	mu     sync.Mutex
	nextID atomic.Uint32
}

// NewClient creates a new link client.
func NewClient(cfg Config) *Client {
	c := &Client{config: cfg}
	c.state.Store(int32(StateDisconnected))
	return c
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

// Connect opens the transport and sends the OPEN message.
func (c *Client) Connect(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	if err := c.connectWithConn(ctx, conn); err != nil {
		_ = conn.Close()
		return err
	}
	return nil
}

func (c *Client) dial(ctx context.Context) (io.ReadWriteCloser, error) {
	if c.config.SerialPort != "" {
		port, err := serial.Open(c.config.SerialPort, &serial.Mode{
			BaudRate: c.config.BaudRate,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		})
		if err != nil {
			return nil, fmt.Errorf("link open serial %s: %w", c.config.SerialPort, err)
		}
		return port, nil
	}

	addr := net.JoinHostPort(c.config.Host, fmt.Sprint(c.config.Port))
	dialer := net.Dialer{Timeout: c.config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		var netErr net.Error
		switch {
		case errors.Is(err, syscall.ECONNREFUSED):
			return nil, fmt.Errorf("%w: %s: %w", ErrConnectionRefused, addr, err)
		case errors.As(err, &netErr) && netErr.Timeout():
			return nil, fmt.Errorf("%w: %s: %w", ErrTimeout, addr, err)
		}
		return nil, fmt.Errorf("link dial %s: %w", addr, err)
	}
	return conn, nil
}

// connectWithConn performs the connection handshake on an existing stream.
// This is separated from Connect to allow testing with net.Pipe().
func (c *Client) connectWithConn(ctx context.Context, conn io.ReadWriteCloser) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("link connect: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Store(int32(StateConnecting))
	c.conn = conn

	appNameBytes := append([]byte(c.config.AppName), 0)
	if err := c.sendMessageLocked(MsgOpen, appNameBytes); err != nil {
		c.conn = nil
		c.state.Store(int32(StateDisconnected))
		return fmt.Errorf("link open: %w", err)
	}

	c.state.Store(int32(StateConnected))
	return nil
}

// Close sends a CLOSE message and shuts down the transport.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	// Best-effort CLOSE message; the peer may already be gone.
	_ = c.sendMessageLocked(MsgClose, nil)

	err := c.conn.Close()
	c.conn = nil
	c.state.Store(int32(StateDisconnected))
	return err
}

// sendMessage sends a framed message (header + payload) over the connection.
// Thread-safe: acquires the mutex.
func (c *Client) sendMessage(msgType uint32, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sendMessageLocked(msgType, payload)
}

// sendMessageLocked sends a message; caller must hold c.mu.
func (c *Client) sendMessageLocked(msgType uint32, payload []byte) error {
	if c.conn == nil {
		return ErrNotConnected
	}

	id := c.nextID.Add(1)
	frameBuf := append(EncodeHeader(msgType, id, len(payload)), payload...)
	if _, err := c.conn.Write(frameBuf); err != nil {
		return fmt.Errorf("write message 0x%04x: %w", msgType, err)
	}
	return nil
}

// ReadNext reads the next complete framed message from the vehicle.
func (c *Client) ReadNext() (Header, []byte, error) {
	return c.readMessage()
}

func (c *Client) readMessage() (Header, []byte, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return Header{}, nil, ErrNotConnected
	}

	headerBuf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(conn, headerBuf); err != nil {
		return Header{}, nil, fmt.Errorf("read header: %w", err)
	}

	h, err := DecodeHeader(headerBuf)
	if err != nil {
		return Header{}, nil, err
	}

	payloadSize := h.Size - HeaderSize
	if payloadSize == 0 {
		return h, nil, nil
	}

	payload := make([]byte, payloadSize)
	if _, err := io.ReadFull(conn, payload); err != nil {
		return Header{}, nil, fmt.Errorf("read payload: %w", err)
	}
	return h, payload, nil
}

// Subscribe asks the vehicle to start pushing the given telemetry channel.
func (c *Client) Subscribe(ch Channel) error {
	if err := ch.Validate(); err != nil {
		return err
	}
	return c.sendMessage(MsgSubscribe, binary.LittleEndian.AppendUint32(nil, uint32(ch)))
}

// Unsubscribe stops the given telemetry channel.
func (c *Client) Unsubscribe(ch Channel) error {
	if err := ch.Validate(); err != nil {
		return err
	}
	return c.sendMessage(MsgUnsubscribe, binary.LittleEndian.AppendUint32(nil, uint32(ch)))
}

// Heartbeat sends a keepalive.
func (c *Client) Heartbeat() error {
	return c.sendMessage(MsgHeartbeat, nil)
}

// SendVelocity converts cmd to the external frame and sends it.
func (c *Client) SendVelocity(cmd types.VelocityCommand) error {
	return c.sendMessage(MsgVelocity, EncodeVelocityPayload(frame.ToExternal(cmd)))
}

// Takeoff sends the takeoff signal.
func (c *Client) Takeoff() error {
	return c.sendMessage(MsgTakeoff, nil)
}

// Land sends the land signal.
func (c *Client) Land() error {
	return c.sendMessage(MsgLand, nil)
}

// EmergencyStop sends the emergency motor stop signal.
func (c *Client) EmergencyStop() error {
	return c.sendMessage(MsgEmergency, nil)
}
