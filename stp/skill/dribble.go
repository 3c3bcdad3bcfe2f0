package skill

import (
	"github.com/nstehr/vimy/vimy-stp/config"
	"github.com/nstehr/vimy/vimy-stp/geom"
	"github.com/nstehr/vimy/vimy-stp/model"
	"github.com/nstehr/vimy/vimy-stp/primitive"
	"github.com/nstehr/vimy/vimy-stp/stp"
	"github.com/nstehr/vimy/vimy-stp/stp/fsm"
)

const (
	// possessionMargin is slack (m) on top of the dribbling contact distance.
	possessionMargin = 0.03
	// possessionAngle is how far (rad) off the robot's heading the ball may
	// sit and still be on the dribbler.
	possessionAngle = 0.3
	// dribbleArrival is how close (m) the ball must be to the destination.
	dribbleArrival = 0.05
)

type DribbleParams struct {
	Destination      geom.Point
	FinalOrientation float64
}

type DribbleUpdate struct {
	Params DribbleParams
	Common stp.Common
}

type DribbleState int

const (
	DribbleGetPossession DribbleState = iota
	DribbleDribbling
	DribbleStopped
)

func (s DribbleState) String() string {
	switch s {
	case DribbleDribbling:
		return "dribbling"
	case DribbleStopped:
		return "stopped"
	default:
		return "get_possession"
	}
}

// Dribble collects the ball and carries it to a destination.
type Dribble struct {
	machine  *fsm.Machine[DribbleState, DribbleUpdate]
	angleTol float64
}

func NewDribble(cfg config.TacticsConfig) *Dribble {
	d := &Dribble{angleTol: cfg.OrientationTolerance}
	type row = fsm.Row[DribbleState, DribbleUpdate]
	lost := fsm.Not(d.haveBall)
	d.machine = fsm.New(DribbleGetPossession,
		row{From: DribbleGetPossession, Guard: d.haveBall, Action: d.dribble, To: DribbleDribbling},
		row{From: DribbleGetPossession, Action: d.getPossession, To: DribbleGetPossession},
		row{From: DribbleDribbling, Guard: lost, Action: d.getPossession, To: DribbleGetPossession},
		row{From: DribbleDribbling, Guard: d.dribbleDone, Action: d.dribble, To: DribbleStopped},
		row{From: DribbleDribbling, Action: d.dribble, To: DribbleDribbling},
		row{From: DribbleStopped, Guard: lost, Action: d.getPossession, To: DribbleGetPossession},
		row{From: DribbleStopped, Guard: fsm.Not(d.dribbleDone), Action: d.dribble, To: DribbleDribbling},
		row{From: DribbleStopped, Action: d.dribble, To: DribbleStopped},
	)
	return d
}

func (d *Dribble) Update(u DribbleUpdate) bool { return d.machine.Step(u) }

func (d *Dribble) State() DribbleState { return d.machine.State() }

func (d *Dribble) Done() bool { return d.machine.Is(DribbleStopped) }

func (d *Dribble) Reset() { d.machine.Reset() }

// HasPossession reports whether the ball sits on robot's dribbler.
func HasPossession(robot model.Robot, ball model.Ball) bool {
	toBall := ball.Position.Sub(robot.Position)
	if toBall.Length() > model.BallToFrontOfRobotWhenDribbling+possessionMargin {
		return false
	}
	if toBall.LengthSq() == 0 {
		return true
	}
	return geom.MinDiff(geom.Orientation(toBall), robot.Orientation) <= possessionAngle
}

func (d *Dribble) haveBall(u DribbleUpdate) bool {
	return HasPossession(u.Common.Robot, u.Common.World.Ball)
}

func (d *Dribble) dribbleDone(u DribbleUpdate) bool {
	ball := u.Common.World.Ball
	return d.haveBall(u) &&
		ball.Position.Distance(u.Params.Destination) <= dribbleArrival &&
		geom.MinDiff(u.Common.Robot.Orientation, u.Params.FinalOrientation) <= d.angleTol
}

// getPossession approaches the ball from behind, relative to the heading the
// robot should finish with.
func (d *Dribble) getPossession(u DribbleUpdate) {
	ball := u.Common.World.Ball.Position
	behind := ball.Sub(geom.WithLength(geom.ForAngle(u.Params.FinalOrientation), model.BallToFrontOfRobotWhenDribbling))
	u.Common.Emit(MoveParams{
		Destination: behind,
		Orientation: u.Params.FinalOrientation,
		Dribbler:    primitive.DribblerMaxForce,
		Avoidance:   primitive.AvoidanceAggressive,
	}.Primitive())
}

func (d *Dribble) dribble(u DribbleUpdate) {
	u.Common.SetMemory(stp.MemoryBallHolder, u.Common.Robot.ID)
	// The robot center trails the ball by the contact distance.
	target := u.Params.Destination.Sub(geom.WithLength(geom.ForAngle(u.Params.FinalOrientation), model.BallToFrontOfRobotWhenDribbling))
	u.Common.Emit(MoveParams{
		Destination: target,
		Orientation: u.Params.FinalOrientation,
		Dribbler:    primitive.DribblerMaxForce,
		Avoidance:   primitive.AvoidanceAggressive,
	}.Primitive())
}
