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

// emptyWarnInterval throttles the empty assignment warning, in ticks.
const emptyWarnInterval = 100

// defenders owns the crease and pass defender tactics of a defensive play.
// Tactics survive across ticks as long as the number of each kind is stable,
// so their latched state is kept.
type defenders struct {
	cfg           config.Config
	crease        []*tactic.CreaseDefender
	pass          []*tactic.PassDefender
	midZone       []*tactic.PassDefender
	lastEmptyWarn int
	warned        bool
}

// setUpCreaseDefenders rebuilds the crease defenders when their count changes.
func (d *defenders) setUpCreaseDefenders(n int) {
	if len(d.crease) == n {
		return
	}
	d.crease = make([]*tactic.CreaseDefender, n)
	for i := range d.crease {
		d.crease[i] = tactic.NewCreaseDefender(d.cfg)
	}
}

func (d *defenders) setUpPassDefenders(n int) {
	d.pass = resizePassDefenders(d.pass, n, d.cfg)
}

func (d *defenders) setUpMidZoneDefenders(n int) {
	d.midZone = resizePassDefenders(d.midZone, n, d.cfg)
}

func resizePassDefenders(cur []*tactic.PassDefender, n int, cfg config.Config) []*tactic.PassDefender {
	if len(cur) == n {
		return cur
	}
	out := make([]*tactic.PassDefender, n)
	for i := range out {
		out[i] = tactic.NewPassDefender(cfg)
	}
	return out
}

// apply pushes an assignment into the owned tactics, 1:1 by index.
func (d *defenders) apply(a evaluation.Assignment) {
	d.setUpCreaseDefenders(len(a.Crease))
	d.setUpPassDefenders(len(a.Pass))
	d.setUpMidZoneDefenders(len(a.MidZone))

	alignments := CreaseAlignments(a.Crease)
	for i, role := range a.Crease {
		d.crease[i].UpdateControlParams(tactic.CreaseDefenderParams{
			ThreatOrigin: role.Origin,
			Alignment:    alignments[i],
		})
	}
	for i, role := range a.Pass {
		d.pass[i].UpdateControlParams(role.Target)
	}
	for i, role := range a.MidZone {
		d.midZone[i].UpdateControlParams(role.Target)
	}
}

// warnEmpty logs an empty assignment at most once per emptyWarnInterval ticks.
func (d *defenders) warnEmpty(w *model.World, play Kind, slots int) {
	if d.warned && w.Tick-d.lastEmptyWarn < emptyWarnInterval {
		return
	}
	d.warned = true
	d.lastEmptyWarn = w.Tick
	slog.Warn("no defender assignments", "play", play, "tick", w.Tick, "slots", slots, "enemies", len(w.Enemy.Robots))
}

func creaseTactics(cs []*tactic.CreaseDefender) []tactic.Tactic {
	out := make([]tactic.Tactic, len(cs))
	for i, c := range cs {
		out[i] = c
	}
	return out
}

func passTactics(ps []*tactic.PassDefender) []tactic.Tactic {
	out := make([]tactic.Tactic, len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out
}

// CreaseAlignments spreads crease defenders guarding the same threat across
// its shot cone: one takes the center, two split left and right, three cover
// left, center and right.
func CreaseAlignments(roles []evaluation.Role) []evaluation.Alignment {
	out := make([]evaluation.Alignment, len(roles))
	groups := make(map[int][]int)
	var order []int
	for i, r := range roles {
		if _, ok := groups[r.ThreatID]; !ok {
			order = append(order, r.ThreatID)
		}
		groups[r.ThreatID] = append(groups[r.ThreatID], i)
	}
	for _, id := range order {
		idx := groups[id]
		var pattern []evaluation.Alignment
		switch len(idx) {
		case 1:
			pattern = []evaluation.Alignment{evaluation.AlignCenter}
		case 2:
			pattern = []evaluation.Alignment{evaluation.AlignLeft, evaluation.AlignRight}
		default:
			pattern = []evaluation.Alignment{evaluation.AlignLeft, evaluation.AlignCenter, evaluation.AlignRight}
		}
		for n, i := range idx {
			out[i] = pattern[n%len(pattern)]
		}
	}
	return out
}

type defenseState int

const (
	defenseActive defenseState = iota
)

type defenseUpdate struct {
	world *model.World
	slots int
	out   *tactic.Priority
}

// Defense covers ranked threats with every available robot and no reserved
// blocker: buckets are [crease defenders], [pass defenders].
type Defense struct {
	defenders
	machine *fsm.Machine[defenseState, defenseUpdate]
}

func NewDefense(cfg config.Config) *Defense {
	d := &Defense{defenders: defenders{cfg: cfg}}
	d.machine = fsm.New(defenseActive,
		fsm.Row[defenseState, defenseUpdate]{From: defenseActive, Action: d.defend, To: defenseActive},
	)
	return d
}

func (*Defense) Kind() Kind { return KindDefense }
func (*Defense) play()      {}

func (d *Defense) Update(w *model.World, slots int) tactic.Priority {
	out := tactic.Priority{{}, {}}
	d.machine.Step(defenseUpdate{world: w, slots: slots, out: &out})
	return out
}

func (d *Defense) defend(u defenseUpdate) {
	if u.slots <= 0 {
		return
	}
	w := u.world
	roles := evaluation.DefenderRoles(evaluation.RankThreats(*w), w.Field, w.Ball, d.cfg)
	a := evaluation.AssignDefenders(evaluation.AssignmentInput{
		Roles:    roles,
		Field:    w.Field,
		Ball:     w.Ball,
		TooClose: d.cfg.Assignment.TooCloseThreshold,
		Slots:    u.slots,
	})
	if a.Len() == 0 {
		d.warnEmpty(w, KindDefense, u.slots)
		return
	}
	d.apply(a)
	slog.Debug("defense assignment", "tick", w.Tick, "crease", len(a.Crease), "pass", len(a.Pass))
	(*u.out)[0] = creaseTactics(d.crease)
	(*u.out)[1] = passTactics(d.pass)
}

// blockPointFunc picks the reserved blocking point in front of the kicker.
type blockPointFunc func(w *model.World, kicker evaluation.EnemyThreat) geom.Point
