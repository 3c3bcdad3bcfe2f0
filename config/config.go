// Package config loads the engine's numeric thresholds. A Config is a plain
// value: behavior units copy it at construction and never see later edits.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nstehr/vimy/vimy-stp/model"
)

// ErrInvalid is returned when a config file parses but cannot be used.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	LogLevel   string           `yaml:"log_level"`
	Field      model.Field      `yaml:"field"`
	Assignment AssignmentConfig `yaml:"defender_assignment"`
	Navigation NavigationConfig `yaml:"navigation"`
	Tactics    TacticsConfig    `yaml:"tactics"`
}

type AssignmentConfig struct {
	// TooCloseThreshold is the distance (m) under which a pass defender is
	// considered redundant with a reserved blocking point.
	TooCloseThreshold float64 `yaml:"too_close_threshold"`
	// CreaseThreatDistance is the distance (m) from the friendly goal center
	// inside which a threat is covered by crease defenders.
	CreaseThreatDistance float64 `yaml:"crease_threat_distance"`
	// PassDefenderStandoff is how far (m) in front of a threat, toward the
	// ball, a pass defender blocks the lane.
	PassDefenderStandoff float64 `yaml:"pass_defender_standoff"`
}

type NavigationConfig struct {
	RobotObstacleInflationFactor float64 `yaml:"robot_obstacle_inflation_factor"`
}

type TacticsConfig struct {
	// ResetOnReassign clears latched tactic state when a role slot is stepped
	// with a different robot than the previous tick.
	ResetOnReassign      bool    `yaml:"reset_on_reassign"`
	MoveTolerance        float64 `yaml:"move_tolerance"`
	OrientationTolerance float64 `yaml:"orientation_tolerance"`
}

// Default returns a complete, valid config.
func Default() Config {
	return Config{
		LogLevel: "info",
		Field:    model.DefaultField(),
		Assignment: AssignmentConfig{
			TooCloseThreshold:    0.5,
			CreaseThreatDistance: 3.0,
			PassDefenderStandoff: 0.5,
		},
		Navigation: NavigationConfig{
			RobotObstacleInflationFactor: 1.0,
		},
		Tactics: TacticsConfig{
			ResetOnReassign:      false,
			MoveTolerance:        0.02,
			OrientationTolerance: 0.05,
		},
	}
}

// Parse overlays YAML onto the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses a config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}

// Validate clamps tunables to sane ranges and rejects configs whose field
// geometry cannot be used.
func (c *Config) Validate() error {
	f := c.Field
	if f.XLength <= 0 || f.YLength <= 0 {
		return fmt.Errorf("%w: field must have positive size, got %vx%v", ErrInvalid, f.XLength, f.YLength)
	}
	if f.DefenseXLength <= 0 || f.DefenseXLength >= f.XLength/2 || f.DefenseYLength <= 0 || f.DefenseYLength > f.YLength {
		return fmt.Errorf("%w: defense area %vx%v does not fit the field", ErrInvalid, f.DefenseXLength, f.DefenseYLength)
	}
	if f.GoalYLength <= 0 || f.GoalYLength > f.DefenseYLength {
		return fmt.Errorf("%w: goal width %v must be within the defense area", ErrInvalid, f.GoalYLength)
	}
	c.Field.BoundaryMargin = clamp(f.BoundaryMargin, 0, 1)

	c.Assignment.TooCloseThreshold = clamp(c.Assignment.TooCloseThreshold, 0, 3)
	c.Assignment.CreaseThreatDistance = clamp(c.Assignment.CreaseThreatDistance, 0, f.XLength)
	c.Assignment.PassDefenderStandoff = clamp(c.Assignment.PassDefenderStandoff, 2*model.RobotMaxRadius, 2)
	c.Navigation.RobotObstacleInflationFactor = clamp(c.Navigation.RobotObstacleInflationFactor, 0, 5)
	c.Tactics.MoveTolerance = clamp(c.Tactics.MoveTolerance, 0.001, 0.5)
	c.Tactics.OrientationTolerance = clamp(c.Tactics.OrientationTolerance, 0.001, 0.5)
	return nil
}

// clamp restricts v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Level maps LogLevel onto slog, falling back to info.
func (c Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
