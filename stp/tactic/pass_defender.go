package tactic

import (
	"math"

	"github.com/nstehr/vimy/vimy-stp/config"
	"github.com/nstehr/vimy/vimy-stp/geom"
	"github.com/nstehr/vimy/vimy-stp/model"
	"github.com/nstehr/vimy/vimy-stp/primitive"
	"github.com/nstehr/vimy/vimy-stp/stp"
	"github.com/nstehr/vimy/vimy-stp/stp/fsm"
	"github.com/nstehr/vimy/vimy-stp/stp/guard"
	"github.com/nstehr/vimy/vimy-stp/stp/skill"
)

const (
	// MinPassSpeed is the slowest ball (m/s) treated as a pass.
	MinPassSpeed = 0.5
	// MaxPassAngleDifference is how far (rad) off the ball-to-defender heading
	// a kick may be and still count as a pass toward us.
	MaxPassAngleDifference = 30 * math.Pi / 180
	// MinDeflectionAngle is the heading change (rad) from the latched pass
	// orientation that marks the pass as deflected.
	MinDeflectionAngle = 30 * math.Pi / 180
)

type PassState int

const (
	PassBlockPass PassState = iota
	PassInterceptBall
	PassDribble
	PassStopped
)

func (s PassState) String() string {
	switch s {
	case PassInterceptBall:
		return "intercept_ball"
	case PassDribble:
		return "dribble"
	case PassStopped:
		return "stopped"
	default:
		return "block_pass"
	}
}

type passUpdate struct {
	blockPoint geom.Point
	common     stp.Common
}

// PassDefender holds a blocking point on a passing lane and intercepts passes
// kicked toward it.
type PassDefender struct {
	blockPoint geom.Point
	// passOrientation is latched when a pass starts and kept until the next
	// pass starts.
	passOrientation float64
	machine         *fsm.Machine[PassState, passUpdate]
	dribble         *skill.Dribble
	owner           assignment
}

func NewPassDefender(cfg config.Config) *PassDefender {
	t := &PassDefender{
		dribble: skill.NewDribble(cfg.Tactics),
		owner:   assignment{resetOnReassign: cfg.Tactics.ResetOnReassign},
	}
	type row = fsm.Row[PassState, passUpdate]
	t.machine = fsm.New(PassBlockPass,
		row{From: PassBlockPass, Guard: t.passStarted, Action: t.startIntercept, To: PassInterceptBall},
		row{From: PassBlockPass, Action: t.blockPass, To: PassBlockPass},
		row{From: PassInterceptBall, Guard: t.ballDeflected, Action: t.blockPass, To: PassBlockPass},
		row{From: PassInterceptBall, Guard: t.looseBall, Action: t.prepareGetPossession, To: PassDribble},
		row{From: PassInterceptBall, Action: t.interceptBall, To: PassInterceptBall},
		row{From: PassDribble, Guard: fsm.Not(t.looseBall), Action: t.blockPass, To: PassBlockPass},
		row{From: PassDribble, Action: t.prepareGetPossession, To: PassDribble},
		row{From: PassStopped, Action: t.blockPass, To: PassBlockPass},
	)
	return t
}

func (t *PassDefender) Name() string { return "pass_defender" }
func (t *PassDefender) tactic()      {}

// UpdateControlParams sets the point to block passes from.
func (t *PassDefender) UpdateControlParams(blockPoint geom.Point) { t.blockPoint = blockPoint }

func (t *PassDefender) BlockPoint() geom.Point { return t.blockPoint }

// PassOrientation is the latched heading of the last pass that started.
func (t *PassDefender) PassOrientation() float64 { return t.passOrientation }

func (t *PassDefender) State() string { return t.machine.State().String() }

func (t *PassDefender) Update(c stp.Common) {
	if t.owner.reassigned(c.Robot.ID) {
		t.reset()
	}
	t.machine.Step(passUpdate{blockPoint: t.blockPoint, common: c})
}

func (t *PassDefender) Stop() { t.machine.Force(PassStopped) }

func (t *PassDefender) reset() {
	t.machine.Reset()
	t.dribble.Reset()
	t.passOrientation = 0
}

func (t *PassDefender) passStarted(u passUpdate) bool {
	ball := u.common.World.Ball
	toBlock := geom.Orientation(u.blockPoint.Sub(ball.Position))
	return ball.HasBeenKicked(toBlock, MinPassSpeed, MaxPassAngleDifference)
}

func (t *PassDefender) ballDeflected(u passUpdate) bool {
	heading := geom.Orientation(u.common.World.Ball.Velocity)
	return geom.MinDiff(heading, t.passOrientation) > MinDeflectionAngle
}

func (t *PassDefender) looseBall(u passUpdate) bool {
	return guard.LooseBallOpportunity(u.common.Robot, u.common.World.Ball, u.common.NearestEnemy())
}

// startIntercept latches the pass heading so later ticks can tell whether the
// ball strays from it.
func (t *PassDefender) startIntercept(u passUpdate) {
	t.passOrientation = geom.Orientation(u.common.World.Ball.Velocity)
	t.interceptBall(u)
}

func (t *PassDefender) blockPass(u passUpdate) {
	robot := u.common.Robot
	u.common.Emit(skill.MoveParams{
		Destination: u.blockPoint,
		Orientation: geom.Orientation(u.common.World.Ball.Position.Sub(robot.Position)),
	}.Primitive())
}

func (t *PassDefender) interceptBall(u passUpdate) {
	ball := u.common.World.Ball
	robot := u.common.Robot
	toBall := ball.Position.Sub(robot.Position)

	if toBall.Length() > model.BallToFrontOfRobotWhenDribbling {
		intercept := ball.Position
		if ball.Velocity.LengthSq() != 0 {
			intercept = geom.ClosestPointOnLine(robot.Position, ball.Position, ball.Position.Add(ball.Velocity))
		}
		u.common.Emit(skill.MoveParams{
			Destination: intercept,
			Orientation: geom.Orientation(toBall),
			Dribbler:    primitive.DribblerMaxForce,
			Avoidance:   primitive.AvoidanceAggressive,
		}.Primitive())
		return
	}

	// The ball is on or under the robot: give way along its travel.
	facing := robot.Orientation
	if toBall.LengthSq() != 0 {
		facing = geom.Orientation(toBall)
	}
	u.common.Emit(skill.MoveParams{
		Destination: robot.Position.Add(geom.WithLength(ball.Velocity, model.RobotMaxRadius)),
		Orientation: facing,
		Dribbler:    primitive.DribblerMaxForce,
		Avoidance:   primitive.AvoidanceAggressive,
	}.Primitive())
}

func (t *PassDefender) prepareGetPossession(u passUpdate) {
	dribbleUpdate(t.dribble, u.common)
}
