package model

import (
	"math"

	"github.com/nstehr/vimy/vimy-stp/geom"
)

// World is the per-tick snapshot produced by sensor fusion. The engine only
// reads it; nothing below the agent mutates a World during a tick.
type World struct {
	Tick      int       `json:"tick"`
	Field     Field     `json:"field"`
	Friendly  Team      `json:"friendly"`
	Enemy     Team      `json:"enemy"`
	Ball      Ball      `json:"ball"`
	GameState GameState `json:"gameState" yaml:"game_state"`
}

// Referee commands the engine cares about.
const (
	CommandHalt          = "halt"
	CommandStop          = "stop"
	CommandPlaying       = "playing"
	CommandEnemyFreeKick = "enemy_free_kick"
	CommandEnemyKickoff  = "enemy_kickoff"
)

type GameState struct {
	Command string `json:"command"`
}

type Robot struct {
	ID          int        `json:"id"`
	Position    geom.Point `json:"position"`
	Velocity    geom.Point `json:"velocity"`
	Orientation float64    `json:"orientation"` // radians
}

// Team is an ordered set of robots with unique ids.
type Team struct {
	Robots []Robot `json:"robots"`
}

// Robot looks up a robot by id.
func (t Team) Robot(id int) (Robot, bool) {
	for _, r := range t.Robots {
		if r.ID == id {
			return r, true
		}
	}
	return Robot{}, false
}

// Nearest returns the robot closest to p. Ties go to the earlier robot so the
// result is stable across ticks.
func (t Team) Nearest(p geom.Point) (Robot, bool) {
	var nearest Robot
	found := false
	best := math.MaxFloat64
	for _, r := range t.Robots {
		d := r.Position.DistanceSq(p)
		if d < best {
			best = d
			nearest = r
			found = true
		}
	}
	return nearest, found
}

type Ball struct {
	Position geom.Point `json:"position"`
	Velocity geom.Point `json:"velocity"`
}

// Speed is the ball's speed in m/s.
func (b Ball) Speed() float64 { return b.Velocity.Length() }

// HasBeenKicked reports whether the ball is moving at least minSpeed along a
// heading within maxAngle radians of direction.
func (b Ball) HasBeenKicked(direction, minSpeed, maxAngle float64) bool {
	if b.Speed() < minSpeed {
		return false
	}
	return geom.MinDiff(geom.Orientation(b.Velocity), direction) <= maxAngle
}
