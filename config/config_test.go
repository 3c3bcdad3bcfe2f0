package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	before := cfg
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v, want nil", err)
	}
	if diff := cmp.Diff(before, cfg); diff != "" {
		t.Errorf("Validate changed the defaults (-before +after):\n%s", diff)
	}
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
log_level: debug
defender_assignment:
  too_close_threshold: 0.8
tactics:
  reset_on_reassign: true
`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	want := Default()
	want.LogLevel = "debug"
	want.Assignment.TooCloseThreshold = 0.8
	want.Tactics.ResetOnReassign = true
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("Level() = %v, want debug", cfg.Level())
	}
}

func TestParseClampsTunables(t *testing.T) {
	cfg, err := Parse([]byte(`
defender_assignment:
  too_close_threshold: -1
  pass_defender_standoff: 10
navigation:
  robot_obstacle_inflation_factor: 50
`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Assignment.TooCloseThreshold != 0 {
		t.Errorf("TooCloseThreshold = %v, want 0", cfg.Assignment.TooCloseThreshold)
	}
	if cfg.Assignment.PassDefenderStandoff != 2 {
		t.Errorf("PassDefenderStandoff = %v, want 2", cfg.Assignment.PassDefenderStandoff)
	}
	if cfg.Navigation.RobotObstacleInflationFactor != 5 {
		t.Errorf("RobotObstacleInflationFactor = %v, want 5", cfg.Navigation.RobotObstacleInflationFactor)
	}
}

func TestParseRejectsBadField(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero length", "field:\n  x_length: 0\n"},
		{"defense area too deep", "field:\n  defense_x_length: 5\n"},
		{"goal wider than area", "field:\n  goal_y_length: 3\n"},
	}
	for _, tc := range tests {
		_, err := Parse([]byte(tc.yaml))
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: Parse() error = %v, want ErrInvalid", tc.name, err)
		}
	}
}

func TestParseBadYAML(t *testing.T) {
	if _, err := Parse([]byte("field: [")); err == nil {
		t.Error("Parse() of malformed YAML returned nil error")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stp.yaml")
	if err := os.WriteFile(path, []byte("log_level: warn\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Level() != slog.LevelWarn {
		t.Errorf("Level() = %v, want warn", cfg.Level())
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of a missing file returned nil error")
	}
}

func TestLevelFallback(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "loud"
	if cfg.Level() != slog.LevelInfo {
		t.Errorf("Level() = %v, want info", cfg.Level())
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, min, max, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-0.5, 0, 1, 0.0},
		{1.5, 0, 1, 1.0},
	}
	for _, tc := range tests {
		if got := clamp(tc.v, tc.min, tc.max); got != tc.want {
			t.Errorf("clamp(%f, %f, %f) = %f, want %f", tc.v, tc.min, tc.max, got, tc.want)
		}
	}
}
