package play

import (
	"log/slog"

	"github.com/nstehr/vimy/vimy-stp/config"
	"github.com/nstehr/vimy/vimy-stp/evaluation"
	"github.com/nstehr/vimy/vimy-stp/geom"
	"github.com/nstehr/vimy/vimy-stp/model"
	"github.com/nstehr/vimy/vimy-stp/stp/fsm"
	"github.com/nstehr/vimy/vimy-stp/stp/tactic"
)

// KickerBlockDistance is how far (m) in front of the ball the kicker blocker
// stands: the stop-command ball clearance plus a robot diameter.
const KickerBlockDistance = model.StopCommandBallAvoidanceDistance + 2*model.RobotMaxRadius

type kickState int

const (
	kickBlockEnemyKicker kickState = iota
)

type kickUpdate struct {
	world *model.World
	slots int
	out   *tactic.Priority
}

// kickDefense is the layout shared by the enemy restart plays: one pass
// defender reserved in front of the kicker, the rest assigned to ranked
// threats. Buckets are [kicker blocker + mid zone], [crease], [pass].
type kickDefense struct {
	defenders
	kind       Kind
	blockPoint blockPointFunc
	blocker    *tactic.PassDefender
	machine    *fsm.Machine[kickState, kickUpdate]
}

func newKickDefense(kind Kind, cfg config.Config, bp blockPointFunc) *kickDefense {
	k := &kickDefense{
		defenders:  defenders{cfg: cfg},
		kind:       kind,
		blockPoint: bp,
		blocker:    tactic.NewPassDefender(cfg),
	}
	k.machine = fsm.New(kickBlockEnemyKicker,
		fsm.Row[kickState, kickUpdate]{From: kickBlockEnemyKicker, Action: k.blockEnemyKicker, To: kickBlockEnemyKicker},
	)
	return k
}

func (k *kickDefense) Kind() Kind { return k.kind }
func (*kickDefense) play()        {}

func (k *kickDefense) Update(w *model.World, slots int) tactic.Priority {
	out := tactic.Priority{{}, {}, {}}
	k.machine.Step(kickUpdate{world: w, slots: slots, out: &out})
	return out
}

// BlockPoint is the kicker blocker's current target.
func (k *kickDefense) BlockPoint() geom.Point { return k.blocker.BlockPoint() }

func (k *kickDefense) blockEnemyKicker(u kickUpdate) {
	if u.slots <= 0 {
		return
	}
	w := u.world
	threats := evaluation.RankThreats(*w)
	roles := evaluation.DefenderRoles(threats, w.Field, w.Ball, k.cfg)
	if len(roles) == 0 {
		k.warnEmpty(w, k.kind, u.slots)
		return
	}

	block := geom.Clamp(w.Field.Bounds(), k.blockPoint(w, threats[0]))
	k.blocker.UpdateControlParams(block)

	a := evaluation.AssignDefenders(evaluation.AssignmentInput{
		Roles:      roles,
		Field:      w.Field,
		Ball:       w.Ball,
		TooClose:   k.cfg.Assignment.TooCloseThreshold,
		Slots:      u.slots - 1,
		BlockPoint: &block,
	})
	k.apply(a)
	slog.Debug("kick defense assignment", "play", k.kind, "tick", w.Tick,
		"block", block, "midZone", len(a.MidZone), "crease", len(a.Crease), "pass", len(a.Pass))

	(*u.out)[0] = append([]tactic.Tactic{k.blocker}, passTactics(k.midZone)...)
	(*u.out)[1] = creaseTactics(k.crease)
	(*u.out)[2] = passTactics(k.pass)
}

// EnemyFreeKick defends an enemy free kick.
type EnemyFreeKick struct{ *kickDefense }

func NewEnemyFreeKick(cfg config.Config) *EnemyFreeKick {
	return &EnemyFreeKick{newKickDefense(KindEnemyFreeKick, cfg, freeKickBlockPoint)}
}

// freeKickBlockPoint stands in the direction the kicker faces.
func freeKickBlockPoint(w *model.World, kicker evaluation.EnemyThreat) geom.Point {
	return w.Ball.Position.Add(geom.ForAngle(kicker.Orientation).Mult(KickerBlockDistance))
}

// EnemyKickoff defends an enemy kickoff. The blocker keeps out of the center
// circle and on our half.
type EnemyKickoff struct{ *kickDefense }

func NewEnemyKickoff(cfg config.Config) *EnemyKickoff {
	return &EnemyKickoff{newKickDefense(KindEnemyKickoff, cfg, kickoffBlockPoint)}
}

func kickoffBlockPoint(w *model.World, kicker evaluation.EnemyThreat) geom.Point {
	dir := geom.ForAngle(kicker.Orientation)
	if dir.X > 0 {
		// Kicker facing away from our goal: guard the straight line to it.
		dir = w.Field.FriendlyGoalCenter().Sub(w.Ball.Position).Normalize()
	}
	p := w.Ball.Position.Add(dir.Mult(model.CenterCircleRadius + 2*model.RobotMaxRadius))
	if p.X > -model.RobotMaxRadius {
		p.X = -model.RobotMaxRadius
	}
	return p
}
