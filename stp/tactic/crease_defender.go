package tactic

import (
	"log/slog"

	"github.com/nstehr/vimy/vimy-stp/config"
	"github.com/nstehr/vimy/vimy-stp/evaluation"
	"github.com/nstehr/vimy/vimy-stp/geom"
	"github.com/nstehr/vimy/vimy-stp/model"
	"github.com/nstehr/vimy/vimy-stp/primitive"
	"github.com/nstehr/vimy/vimy-stp/stp"
	"github.com/nstehr/vimy/vimy-stp/stp/fsm"
	"github.com/nstehr/vimy/vimy-stp/stp/guard"
	"github.com/nstehr/vimy/vimy-stp/stp/skill"
)

const (
	// threatZoneLength and threatZoneRadius size the capsule ahead of a crease
	// defender in which an enemy triggers an auto chip.
	threatZoneLength = 1.0
	threatZoneRadius = 0.1
)

type CreaseDefenderParams struct {
	ThreatOrigin geom.Point
	Alignment    evaluation.Alignment
	MaxSpeed     primitive.SpeedMode
}

type CreaseState int

const (
	CreaseMove CreaseState = iota
	CreaseDribble
	CreaseStopped
)

func (s CreaseState) String() string {
	switch s {
	case CreaseDribble:
		return "dribble"
	case CreaseStopped:
		return "stopped"
	default:
		return "move"
	}
}

type creaseUpdate struct {
	params CreaseDefenderParams
	common stp.Common
}

// CreaseDefender patrols the inflated defense area boundary, blocking the
// shot cone of one threat, and grabs loose balls that come near it.
type CreaseDefender struct {
	cfg     config.Config
	params  CreaseDefenderParams
	machine *fsm.Machine[CreaseState, creaseUpdate]
	move    *skill.Move
	dribble *skill.Dribble
	owner   assignment
}

func NewCreaseDefender(cfg config.Config) *CreaseDefender {
	t := &CreaseDefender{
		cfg:     cfg,
		params:  CreaseDefenderParams{MaxSpeed: primitive.SpeedPhysicalLimit},
		move:    skill.NewMove(cfg.Tactics),
		dribble: skill.NewDribble(cfg.Tactics),
		owner:   assignment{resetOnReassign: cfg.Tactics.ResetOnReassign},
	}
	type row = fsm.Row[CreaseState, creaseUpdate]
	t.machine = fsm.New(CreaseMove,
		row{From: CreaseMove, Guard: t.looseBall, Action: t.prepareGetPossession, To: CreaseDribble},
		row{From: CreaseMove, Guard: t.moveDone, Action: t.blockThreat, To: CreaseStopped},
		row{From: CreaseMove, Action: t.blockThreat, To: CreaseMove},
		row{From: CreaseDribble, Guard: fsm.Not(t.looseBall), Action: t.blockThreat, To: CreaseMove},
		row{From: CreaseDribble, Action: t.prepareGetPossession, To: CreaseDribble},
		row{From: CreaseStopped, Guard: t.looseBall, Action: t.prepareGetPossession, To: CreaseDribble},
		row{From: CreaseStopped, Action: t.blockThreat, To: CreaseMove},
	)
	return t
}

func (t *CreaseDefender) Name() string { return "crease_defender" }
func (t *CreaseDefender) tactic()      {}

func (t *CreaseDefender) UpdateControlParams(p CreaseDefenderParams) {
	if p.MaxSpeed == "" {
		p.MaxSpeed = primitive.SpeedPhysicalLimit
	}
	t.params = p
}

func (t *CreaseDefender) Params() CreaseDefenderParams { return t.params }

// Target is where the defender blocks its threat from, or the threat itself
// when no point on the defense area blocks it.
func (t *CreaseDefender) Target(field model.Field) geom.Point {
	if p, ok := evaluation.FindBlockThreatPoint(field, t.params.ThreatOrigin, t.params.Alignment, t.inflation()); ok {
		return p
	}
	return t.params.ThreatOrigin
}

func (t *CreaseDefender) inflation() float64 {
	return t.cfg.Navigation.RobotObstacleInflationFactor + evaluation.CreaseInflationMargin
}

func (t *CreaseDefender) State() string { return t.machine.State().String() }

func (t *CreaseDefender) Update(c stp.Common) {
	if t.owner.reassigned(c.Robot.ID) {
		t.reset()
	}
	t.machine.Step(creaseUpdate{params: t.params, common: c})
}

func (t *CreaseDefender) Stop() {
	t.machine.Force(CreaseStopped)
}

func (t *CreaseDefender) reset() {
	t.machine.Reset()
	t.move.Reset()
	t.dribble.Reset()
}

func (t *CreaseDefender) looseBall(u creaseUpdate) bool {
	return guard.LooseBallOpportunity(u.common.Robot, u.common.World.Ball, u.common.NearestEnemy())
}

func (t *CreaseDefender) moveDone(creaseUpdate) bool { return t.move.Done() }

func (t *CreaseDefender) blockThreat(u creaseUpdate) {
	world := u.common.World
	field := world.Field
	robot := u.common.Robot

	destination := robot.Position
	if p, ok := evaluation.FindBlockThreatPoint(field, u.params.ThreatOrigin, u.params.Alignment, t.inflation()); ok {
		destination = p
	} else {
		slog.Warn("no defense area point blocks threat, holding position",
			"robot", robot.ID, "threat", u.params.ThreatOrigin, "alignment", u.params.Alignment)
	}

	// Chip toward the enemy half, or toward the touchline when the threat is
	// level with or behind the defense area.
	area := field.FriendlyDefenseArea()
	chipDistance := field.XLength / 3
	if u.params.ThreatOrigin.X < area.R {
		chipDistance = field.YLength/3 - area.T
	}

	shot := geom.NewRay(robot.Position, robot.Orientation)
	_, onGoal := geom.IntersectRaySegment(shot, field.FriendlyGoalLine())
	zone := geom.NewStadium(robot.Position, geom.ForAngle(robot.Orientation).Mult(threatZoneLength), threatZoneRadius)
	u.common.Draw(stp.Shape{ID: "threat_zone", Label: "threatzone", Points: []geom.Point{zone.A, zone.B}, Radius: zone.Radius})

	chip := primitive.AutoChipOrKick{Mode: primitive.ChipKickOff}
	if !onGoal && anyEnemyIn(u.common, zone) {
		chip = primitive.AutoChipOrKick{Mode: primitive.AutoChip, Distance: chipDistance}
	}

	t.move.Update(skill.MoveUpdate{
		Params: skill.MoveParams{
			Destination:    destination,
			Orientation:    geom.Orientation(u.params.ThreatOrigin.Sub(robot.Position)),
			FinalSpeed:     0,
			Dribbler:       primitive.DribblerOff,
			AvoidBall:      world.Ball.Position.Distance(destination) < robot.Position.Distance(destination),
			Avoidance:      primitive.AvoidanceAggressive,
			MaxSpeed:       u.params.MaxSpeed,
			AutoChipOrKick: chip,
		},
		Common: u.common,
	})
}

func (t *CreaseDefender) prepareGetPossession(u creaseUpdate) {
	dribbleUpdate(t.dribble, u.common)
}

func anyEnemyIn(c stp.Common, zone geom.Stadium) bool {
	for _, r := range c.World.Enemy.Robots {
		if zone.Contains(r.Position) {
			return true
		}
	}
	return false
}

// dribbleUpdate steps d to collect the ball where it lies, finishing with the
// robot facing up field at the enemy goal.
func dribbleUpdate(d *skill.Dribble, c stp.Common) {
	ball := c.World.Ball.Position
	d.Update(skill.DribbleUpdate{
		Params: skill.DribbleParams{
			Destination:      ball,
			FinalOrientation: geom.Orientation(c.World.Field.EnemyGoalCenter().Sub(ball)),
		},
		Common: c,
	})
}
