package link

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/eytandecker/flightctl/pkg/types"
)

// TelemetrySink is implemented by state.Store.
// Defined here (consuming side) to avoid import cycles.
type TelemetrySink interface {
	UpdateOdometry(types.Odometry)
	UpdateAttitude(types.Attitude)
	UpdateStatus(types.Status)
	UpdateTrajectory(types.Trajectory)
}

// FeedConfig holds configuration for the Feed.
type FeedConfig struct {
	HeartbeatInterval time.Duration
}

// DefaultFeedConfig returns a FeedConfig with sensible defaults.
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{HeartbeatInterval: time.Second}
}

// Feed subscribes to vehicle telemetry and writes every decoded message
// into a TelemetrySink.
type Feed struct {
	client *Client
	sink   TelemetrySink
	cfg    FeedConfig
}

// NewFeed creates a Feed backed by the given client and sink.
func NewFeed(client *Client, sink TelemetrySink, cfg FeedConfig) *Feed {
	return &Feed{client: client, sink: sink, cfg: cfg}
}

// Subscribe requests every channel in TelemetryChannels.
func (f *Feed) Subscribe() error {
	for _, ch := range TelemetryChannels {
		if err := f.client.Subscribe(ch); err != nil {
			return err
		}
	}
	return nil
}

// Unsubscribe deregisters from every telemetry channel. All channels are
// attempted even if one fails.
func (f *Feed) Unsubscribe() error {
	var errs []error
	for _, ch := range TelemetryChannels {
		if err := f.client.Unsubscribe(ch); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Start blocks, dispatching inbound telemetry and sending periodic
// heartbeats. It exits when ctx is cancelled or the connection is closed.
func (f *Feed) Start(ctx context.Context) error {
	interval := f.cfg.HeartbeatInterval
	if interval == 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	done := make(chan error, 1)
	go f.readLoop(done)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-done:
			return err
		case <-ticker.C:
			if err := f.client.Heartbeat(); err != nil {
				return err
			}
		}
	}
}

// readLoop reads messages from the vehicle and dispatches them to the sink.
func (f *Feed) readLoop(done chan<- error) {
	for {
		h, data, err := f.client.ReadNext()
		if err != nil {
			done <- err
			return
		}
		f.dispatch(h, data)
	}
}

func (f *Feed) dispatch(h Header, data []byte) {
	switch h.Type {
	case MsgOdometry:
		odom, err := ParseOdometryPayload(data)
		if err != nil {
			log.Printf("link: parse odometry payload: %v", err)
			return
		}
		f.sink.UpdateOdometry(odom)
	case MsgIMU:
		att, err := ParseIMUPayload(data)
		if err != nil {
			log.Printf("link: parse imu payload: %v", err)
			return
		}
		f.sink.UpdateAttitude(att)
	case MsgStatus:
		st, err := ParseStatusPayload(data)
		if err != nil {
			log.Printf("link: parse status payload: %v", err)
			return
		}
		f.sink.UpdateStatus(st)
	case MsgTrajectory:
		traj, err := ParseTrajectoryPayload(data)
		if err != nil {
			log.Printf("link: parse trajectory payload: %v", err)
			return
		}
		f.sink.UpdateTrajectory(traj)
	case MsgException:
		log.Printf("link: received exception message (id=%d)", h.ID)
	}
}
