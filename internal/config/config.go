package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/eytandecker/flightctl/internal/control"
	"github.com/eytandecker/flightctl/internal/pid"
)

// Config holds all application configuration.
type Config struct {
	Link      LinkConfig
	Telemetry TelemetryConfig
	Flight    FlightConfig
	PID       PIDConfig
	MCP       MCPConfig
}

// LinkConfig holds vehicle link settings. A non-empty SerialPort selects the
// serial transport instead of TCP.
type LinkConfig struct {
	Host       string
	Port       int
	Timeout    time.Duration
	AppName    string
	SerialPort string
	BaudRate   int
	Heartbeat  time.Duration
}

// TelemetryConfig holds telemetry freshness settings.
type TelemetryConfig struct {
	StaleThreshold time.Duration
}

// FlightConfig holds mission parameters. Angles are stored in radians; the
// environment supplies them in degrees.
type FlightConfig struct {
	TargetAltitude   float64
	YawGain          float64
	Tick             time.Duration
	Timeout          time.Duration
	Precision        float64
	HeadingThreshold float64
	AscendAxes       control.AxisMask
	Heading1         float64
	Heading2         float64
	AscendDwell      time.Duration
	OrientDwell      time.Duration
	TimeoutDwell     time.Duration
	FollowTrajectory bool
	Lookahead        float64
	MissionFile      string
}

// PIDConfig holds per-axis controller gains.
type PIDConfig struct {
	X       pid.Gains
	Y       pid.Gains
	Z       pid.Gains
	Heading pid.Gains
}

// MCPConfig controls the operator surface on stdio.
type MCPConfig struct {
	Enabled bool
}

// Load reads configuration from environment variables, falling back to defaults.
func Load() Config {
	return Config{
		Link: LinkConfig{
			Host:       getEnvString("LINK_HOST", "192.168.10.1"),
			Port:       getEnvInt("LINK_PORT", 8890),
			Timeout:    getEnvDuration("LINK_TIMEOUT", 10*time.Second),
			AppName:    getEnvString("LINK_APP_NAME", "flightctl"),
			SerialPort: getEnvString("LINK_SERIAL_PORT", ""),
			BaudRate:   getEnvInt("LINK_BAUD_RATE", 115200),
			Heartbeat:  getEnvDuration("LINK_HEARTBEAT", time.Second),
		},
		Telemetry: TelemetryConfig{
			StaleThreshold: getEnvDuration("TELEMETRY_STALE_THRESHOLD", time.Second),
		},
		Flight: FlightConfig{
			TargetAltitude:   getEnvFloat("FLIGHT_TARGET_ALTITUDE", 0.5),
			YawGain:          getEnvFloat("FLIGHT_YAW_GAIN", 0.8),
			Tick:             getEnvDuration("FLIGHT_TICK", 50*time.Millisecond),
			Timeout:          getEnvDuration("FLIGHT_TIMEOUT", 300*time.Second),
			Precision:        getEnvFloat("FLIGHT_PRECISION", 0.1),
			HeadingThreshold: radians(getEnvFloat("FLIGHT_HEADING_THRESHOLD_DEG", 10)),
			AscendAxes:       getEnvAxes("FLIGHT_ASCEND_AXES", control.AxisZ),
			Heading1:         radians(getEnvFloat("FLIGHT_HEADING_1_DEG", 90)),
			Heading2:         radians(getEnvFloat("FLIGHT_HEADING_2_DEG", -90)),
			AscendDwell:      getEnvDuration("FLIGHT_ASCEND_DWELL", 2*time.Second),
			OrientDwell:      getEnvDuration("FLIGHT_ORIENT_DWELL", 3*time.Second),
			TimeoutDwell:     getEnvDuration("FLIGHT_TIMEOUT_DWELL", 2*time.Second),
			FollowTrajectory: getEnvBool("FLIGHT_FOLLOW_TRAJECTORY", false),
			Lookahead:        getEnvFloat("FLIGHT_LOOKAHEAD", 0.1),
			MissionFile:      getEnvString("FLIGHT_MISSION_FILE", ""),
		},
		PID: PIDConfig{
			X:       getEnvGains("PID_X", pid.Gains{Kp: 0.3, Ki: 0.1, Kd: 0, Limit: 0.5}),
			Y:       getEnvGains("PID_Y", pid.Gains{Kp: 0.3, Ki: 0.1, Kd: 0, Limit: 0.5}),
			Z:       getEnvGains("PID_Z", pid.Gains{Kp: 1.15, Ki: 0.4, Kd: 0, Limit: 0.5}),
			Heading: getEnvGains("PID_HEADING", pid.Gains{Kp: 0.9, Ki: 0.3, Kd: 0, Limit: 0.5}),
		},
		MCP: MCPConfig{
			Enabled: getEnvBool("MCP_ENABLED", false),
		},
	}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// getEnvAxes parses an axis mask such as "xyz".
func getEnvAxes(key string, defaultVal control.AxisMask) control.AxisMask {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	m, err := control.ParseAxisMask(v)
	if err != nil {
		return defaultVal
	}
	return m
}

// getEnvGains parses "kp,ki,kd,limit".
func getEnvGains(key string, defaultVal pid.Gains) pid.Gains {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	g, err := parseGains(v)
	if err != nil {
		return defaultVal
	}
	return g
}

func parseGains(s string) (pid.Gains, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return pid.Gains{}, fmt.Errorf("gains %q: want kp,ki,kd,limit", s)
	}
	var vals [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return pid.Gains{}, fmt.Errorf("gains %q: %w", s, err)
		}
		vals[i] = f
	}
	return pid.Gains{Kp: vals[0], Ki: vals[1], Kd: vals[2], Limit: vals[3]}, nil
}
