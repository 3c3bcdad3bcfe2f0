// Package skill holds the smallest reusable behavior units. Tactics own skill
// instances and step them with parameters derived from their own update.
package skill

import (
	"github.com/nstehr/vimy/vimy-stp/config"
	"github.com/nstehr/vimy/vimy-stp/geom"
	"github.com/nstehr/vimy/vimy-stp/primitive"
	"github.com/nstehr/vimy/vimy-stp/stp"
	"github.com/nstehr/vimy/vimy-stp/stp/fsm"
)

// MoveParams describe the move primitive to emit.
type MoveParams struct {
	Destination    geom.Point
	Orientation    float64
	FinalSpeed     float64
	Dribbler       primitive.DribblerMode
	AvoidBall      bool
	Avoidance      primitive.ObstacleAvoidance
	MaxSpeed       primitive.SpeedMode
	AutoChipOrKick primitive.AutoChipOrKick
}

// Primitive converts params into a primitive with defaults filled in.
func (p MoveParams) Primitive() primitive.Primitive {
	out := primitive.Primitive{
		Destination:    p.Destination,
		Orientation:    p.Orientation,
		FinalSpeed:     p.FinalSpeed,
		Dribbler:       p.Dribbler,
		AvoidBall:      p.AvoidBall,
		Avoidance:      p.Avoidance,
		MaxSpeed:       p.MaxSpeed,
		AutoChipOrKick: p.AutoChipOrKick,
	}
	if out.Dribbler == "" {
		out.Dribbler = primitive.DribblerOff
	}
	if out.Avoidance == "" {
		out.Avoidance = primitive.AvoidanceSafe
	}
	if out.MaxSpeed == "" {
		out.MaxSpeed = primitive.SpeedPhysicalLimit
	}
	if out.AutoChipOrKick.Mode == "" {
		out.AutoChipOrKick.Mode = primitive.ChipKickOff
	}
	return out
}

type MoveUpdate struct {
	Params MoveParams
	Common stp.Common
}

type MoveState int

const (
	MoveMoving MoveState = iota
	MoveStopped
)

func (s MoveState) String() string {
	if s == MoveStopped {
		return "stopped"
	}
	return "moving"
}

// Move drives a robot to a pose and reports Done once it is there. It keeps
// emitting the same primitive while stopped so the robot holds the pose.
type Move struct {
	machine  *fsm.Machine[MoveState, MoveUpdate]
	tol      float64
	angleTol float64
}

func NewMove(cfg config.TacticsConfig) *Move {
	m := &Move{tol: cfg.MoveTolerance, angleTol: cfg.OrientationTolerance}
	notDone := fsm.Not(m.arrived)
	m.machine = fsm.New(MoveMoving,
		fsm.Row[MoveState, MoveUpdate]{From: MoveMoving, Guard: notDone, Action: m.move, To: MoveMoving},
		fsm.Row[MoveState, MoveUpdate]{From: MoveMoving, Action: m.move, To: MoveStopped},
		fsm.Row[MoveState, MoveUpdate]{From: MoveStopped, Guard: notDone, Action: m.move, To: MoveMoving},
		fsm.Row[MoveState, MoveUpdate]{From: MoveStopped, Action: m.move, To: MoveStopped},
	)
	return m
}

// Update steps the skill once.
func (m *Move) Update(u MoveUpdate) bool { return m.machine.Step(u) }

func (m *Move) State() MoveState { return m.machine.State() }

// Done reports whether the robot reached the last requested pose.
func (m *Move) Done() bool { return m.machine.Is(MoveStopped) }

func (m *Move) Reset() { m.machine.Reset() }

func (m *Move) arrived(u MoveUpdate) bool {
	r := u.Common.Robot
	return r.Position.Distance(u.Params.Destination) <= m.tol &&
		geom.MinDiff(r.Orientation, u.Params.Orientation) <= m.angleTol
}

func (m *Move) move(u MoveUpdate) {
	u.Common.Emit(u.Params.Primitive())
}
