package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/eytandecker/flightctl/internal/link"
	"github.com/eytandecker/flightctl/internal/mission"
	"github.com/eytandecker/flightctl/internal/state"
	"github.com/eytandecker/flightctl/pkg/types"
)

// ErrOperatorAbort is the cancel cause passed to the abort function.
var ErrOperatorAbort = errors.New("operator abort")

// StateReader is the subset of state.Store used by the MCP server.
type StateReader interface {
	FreshPose() (types.Pose, error)
	FreshStatus() (types.Status, error)
}

// Reporter is implemented by mission.Sequencer.
type Reporter interface {
	Report() mission.Report
}

// LinkStatus is implemented by link.Client.
type LinkStatus interface {
	State() link.ConnectionState
}

// WithLink makes the server report LINK_NOT_CONNECTED while the vehicle
// link is down.
func WithLink(l LinkStatus) func(*Server) {
	return func(s *Server) {
		s.link = l
	}
}

// Server wraps the MCP SDK server and exposes the running mission as tools.
type Server struct {
	sdk     *mcpsdk.Server
	state   StateReader
	mission Reporter
	link    LinkStatus
	abort   func(cause error)
}

// NewServer creates a Server and registers the get_flight_state and
// abort_mission tools. abort receives the cancel cause for the mission
// context.
func NewServer(st StateReader, rep Reporter, abort func(cause error), options ...func(*Server)) *Server {
	s := &Server{
		sdk: mcpsdk.NewServer(&mcpsdk.Implementation{
			Name:    "flightctl",
			Version: "1.0.0",
		}, nil),
		state:   st,
		mission: rep,
		abort:   abort,
	}
	for _, opt := range options {
		opt(s)
	}

	mcpsdk.AddTool(s.sdk, &mcpsdk.Tool{
		Name:        "get_flight_state",
		Description: "Returns the mission phase and the latest vehicle pose, optionally with vehicle status.",
	}, s.handleGetFlightState)
	mcpsdk.AddTool(s.sdk, &mcpsdk.Tool{
		Name:        "abort_mission",
		Description: "Stops the motors and lands the vehicle immediately. The mission cannot be resumed.",
	}, s.handleAbortMission)
	return s
}

// Run starts the MCP server over stdio and blocks until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	return s.sdk.Run(ctx, &mcpsdk.StdioTransport{})
}

// Connect connects the server to an existing transport (used in tests).
func (s *Server) Connect(ctx context.Context, t mcpsdk.Transport) (*mcpsdk.ServerSession, error) {
	return s.sdk.Connect(ctx, t, nil)
}

type getFlightStateInput struct {
	IncludeStatus bool `json:"include_status,omitempty"`
}

type abortMissionInput struct {
	Reason string `json:"reason,omitempty"`
}

// PoseResponse is the vehicle pose in the operating frame.
type PoseResponse struct {
	X       float64 `json:"x_m"`
	Y       float64 `json:"y_m"`
	Z       float64 `json:"z_m"`
	Roll    float64 `json:"roll_deg"`
	Pitch   float64 `json:"pitch_deg"`
	Yaw     float64 `json:"yaw_deg"`
	VX      float64 `json:"vx_mps"`
	VY      float64 `json:"vy_mps"`
	VZ      float64 `json:"vz_mps"`
	YawRate float64 `json:"yaw_rate_dps"`
}

// StatusResponse is the vehicle health snapshot.
type StatusResponse struct {
	BatteryPercent    int32   `json:"battery_pct"`
	Flying            bool    `json:"flying"`
	TemperatureC      float64 `json:"temperature_c"`
	WifiStrength      int32   `json:"wifi_strength"`
	FlightTimeSeconds float64 `json:"flight_time_s"`
}

// FlightStateResponse is the JSON payload returned by get_flight_state.
type FlightStateResponse struct {
	Mission   mission.Report  `json:"mission"`
	Pose      PoseResponse    `json:"pose"`
	Status    *StatusResponse `json:"status,omitempty"`
	Timestamp string          `json:"timestamp"`
}

// AbortResponse is the JSON payload returned by abort_mission.
type AbortResponse struct {
	Aborted   bool   `json:"aborted"`
	MissionID string `json:"mission_id"`
	Phase     string `json:"phase"`
	Reason    string `json:"reason"`
	Timestamp string `json:"timestamp"`
}

// UnavailableResponse is returned when flight state cannot be provided.
type UnavailableResponse struct {
	Available   bool   `json:"available"`
	Error       string `json:"error"`
	Code        string `json:"code"`
	Recoverable bool   `json:"recoverable"`
	Suggestion  string `json:"suggestion"`
	Timestamp   string `json:"timestamp"`
}

func (s *Server) handleGetFlightState(
	ctx context.Context,
	req *mcpsdk.CallToolRequest,
	input getFlightStateInput,
) (*mcpsdk.CallToolResult, any, error) {
	if s.link != nil && s.link.State() != link.StateConnected {
		return s.errorResult(link.ErrNotConnected), nil, nil
	}

	pose, err := s.state.FreshPose()
	if err != nil {
		return s.errorResult(err), nil, nil
	}

	resp := FlightStateResponse{
		Mission:   s.mission.Report(),
		Pose:      poseResponse(pose),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if input.IncludeStatus {
		st, err := s.state.FreshStatus()
		if err != nil {
			return s.errorResult(err), nil, nil
		}
		resp.Status = &StatusResponse{
			BatteryPercent:    st.BatteryPercent,
			Flying:            st.Flying,
			TemperatureC:      st.TemperatureC,
			WifiStrength:      st.WifiStrength,
			FlightTimeSeconds: st.FlightTimeSeconds,
		}
	}
	return jsonResult(resp)
}

func (s *Server) handleAbortMission(
	ctx context.Context,
	req *mcpsdk.CallToolRequest,
	input abortMissionInput,
) (*mcpsdk.CallToolResult, any, error) {
	reason := input.Reason
	if reason == "" {
		reason = "requested by operator"
	}

	rep := s.mission.Report()
	log.Printf("mcp: abort requested in %s: %s", rep.Phase, reason)
	s.abort(fmt.Errorf("%w: %s", ErrOperatorAbort, reason))

	return jsonResult(AbortResponse{
		Aborted:   true,
		MissionID: rep.MissionID,
		Phase:     rep.Phase,
		Reason:    reason,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func poseResponse(p types.Pose) PoseResponse {
	return PoseResponse{
		X:       p.Position.X,
		Y:       p.Position.Y,
		Z:       p.Position.Z,
		Roll:    degrees(p.Roll),
		Pitch:   degrees(p.Pitch),
		Yaw:     degrees(p.Yaw),
		VX:      p.LinearVelocity.X,
		VY:      p.LinearVelocity.Y,
		VZ:      p.LinearVelocity.Z,
		YawRate: degrees(p.AngularVelocity.Z),
	}
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

func jsonResult(v any) (*mcpsdk.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, err
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, nil, nil
}

func (s *Server) errorResult(err error) *mcpsdk.CallToolResult {
	resp := UnavailableResponse{
		Available: false,
		Error:     err.Error(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	switch {
	case errors.Is(err, state.ErrStale):
		resp.Code = "DATA_STALE"
		resp.Recoverable = true
		resp.Suggestion = "Wait for the vehicle to send fresh telemetry."
	case errors.Is(err, link.ErrNotConnected):
		resp.Code = "LINK_NOT_CONNECTED"
		resp.Recoverable = true
		resp.Suggestion = "Check that the vehicle is powered and reachable."
	default:
		resp.Code = "UNKNOWN_ERROR"
		resp.Recoverable = false
		resp.Suggestion = "Check application logs for details."
	}

	data, _ := json.Marshal(resp)
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
		IsError: true,
	}
}
