package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eytandecker/flightctl/internal/config"
	"github.com/eytandecker/flightctl/internal/link"
	internalmcp "github.com/eytandecker/flightctl/internal/mcp"
	"github.com/eytandecker/flightctl/internal/mission"
	"github.com/eytandecker/flightctl/internal/state"
)

func main() {
	if err := run(); err != nil {
		log.Printf("flightctl: exited: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	ctx, cancel := context.WithCancelCause(sigCtx)
	defer cancel(nil)

	store := state.NewStore(cfg.Telemetry.StaleThreshold)
	if cfg.Flight.MissionFile != "" {
		m, err := config.LoadMission(cfg.Flight.MissionFile)
		if err != nil {
			return err
		}
		store.UpdateTrajectory(m.Trajectory)
		log.Printf("flightctl: loaded mission %q (%d waypoints)", m.Name, len(m.Trajectory))
	}

	client := link.NewClient(link.Config{
		Host:       cfg.Link.Host,
		Port:       cfg.Link.Port,
		Timeout:    cfg.Link.Timeout,
		AppName:    cfg.Link.AppName,
		SerialPort: cfg.Link.SerialPort,
		BaudRate:   cfg.Link.BaudRate,
	})
	if err := connectWithBackoff(ctx, client); err != nil {
		return err
	}
	defer client.Close()

	feed := link.NewFeed(client, store, link.FeedConfig{HeartbeatInterval: cfg.Link.Heartbeat})
	if err := feed.Subscribe(); err != nil {
		return fmt.Errorf("subscribe telemetry: %w", err)
	}

	// Losing the feed mid-flight is treated like an operator interrupt.
	go func() {
		if err := feed.Start(ctx); err != nil && ctx.Err() == nil {
			log.Printf("link: feed stopped: %v", err)
			cancel(fmt.Errorf("telemetry feed: %w", err))
		}
	}()

	seq := mission.New(missionConfig(cfg), store, client, mission.WithDeregisterer(feed))

	if cfg.MCP.Enabled {
		srv := internalmcp.NewServer(store, seq, cancel, internalmcp.WithLink(client))
		go func() {
			if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("mcp: server exited: %v", err)
			}
		}()
	}

	err := seq.Run(ctx)
	cancel(nil)
	return err
}

// connectWithBackoff dials the vehicle, retrying with exponential backoff
// (1s → 30s cap) until it succeeds or ctx is done.
func connectWithBackoff(ctx context.Context, client *link.Client) error {
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		err := client.Connect(ctx)
		if err == nil {
			log.Printf("link: connected (%s)", client.State())
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Printf("link: connect failed: %v (retrying in %s)", err, backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func missionConfig(cfg config.Config) mission.Config {
	f := cfg.Flight
	return mission.Config{
		TargetAltitude:   f.TargetAltitude,
		YawGain:          f.YawGain,
		Tick:             f.Tick,
		Timeout:          f.Timeout,
		Precision:        f.Precision,
		HeadingThreshold: f.HeadingThreshold,
		AscendAxes:       f.AscendAxes,
		Heading1:         f.Heading1,
		Heading2:         f.Heading2,
		AscendDwell:      f.AscendDwell,
		OrientDwell:      f.OrientDwell,
		TimeoutDwell:     f.TimeoutDwell,
		FollowTrajectory: f.FollowTrajectory,
		Lookahead:        f.Lookahead,
		PIDX:             cfg.PID.X,
		PIDY:             cfg.PID.Y,
		PIDZ:             cfg.PID.Z,
		PIDHeading:       cfg.PID.Heading,
	}
}
