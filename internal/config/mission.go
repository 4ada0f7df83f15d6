package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/eytandecker/flightctl/pkg/types"
)

// ErrEmptyMission is returned when a mission file has no waypoints.
var ErrEmptyMission = errors.New("mission has no waypoints")

// Mission is a named trajectory loaded from a YAML file.
type Mission struct {
	Name       string
	Trajectory types.Trajectory
}

type missionFile struct {
	Name      string `yaml:"name"`
	Waypoints []struct {
		X       float64 `yaml:"x"`
		Y       float64 `yaml:"y"`
		Heading float64 `yaml:"heading"` // degrees
	} `yaml:"waypoints"`
}

// LoadMission reads a mission file. Waypoints are in the mission frame, in
// file order.
func LoadMission(path string) (Mission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Mission{}, fmt.Errorf("read mission: %w", err)
	}
	return ParseMission(data)
}

// ParseMission decodes mission YAML.
func ParseMission(data []byte) (Mission, error) {
	var f missionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Mission{}, fmt.Errorf("parse mission: %w", err)
	}
	if len(f.Waypoints) == 0 {
		return Mission{}, ErrEmptyMission
	}

	traj := make(types.Trajectory, len(f.Waypoints))
	for i, wp := range f.Waypoints {
		traj[i] = types.Waypoint{X: wp.X, Y: wp.Y, Heading: radians(wp.Heading)}
	}
	return Mission{Name: f.Name, Trajectory: traj}, nil
}
