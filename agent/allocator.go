package agent

import (
	"math"

	"github.com/nstehr/vimy/vimy-stp/geom"
	"github.com/nstehr/vimy/vimy-stp/model"
	"github.com/nstehr/vimy/vimy-stp/stp/tactic"
)

// Match pairs a tactic with the robot that will run it this tick.
type Match struct {
	Tactic tactic.Tactic
	Robot  model.Robot
}

// Allocate hands robots to tactics bucket by bucket: every tactic in bucket n
// is offered a robot before any tactic in bucket n+1. Within a bucket each
// tactic takes the nearest free robot to where it wants to go; tactics with no
// target take the first free robot. Returns the matches and the tactics left
// without a robot.
func Allocate(p tactic.Priority, w *model.World) (matches []Match, unmatched []tactic.Tactic) {
	free := append([]model.Robot(nil), w.Friendly.Robots...)
	for _, bucket := range p {
		for _, t := range bucket {
			if len(free) == 0 {
				unmatched = append(unmatched, t)
				continue
			}
			i := 0
			if target, ok := tacticTarget(t, w); ok {
				i = nearest(free, target)
			}
			matches = append(matches, Match{Tactic: t, Robot: free[i]})
			free = append(free[:i], free[i+1:]...)
		}
	}
	return matches, unmatched
}

func nearest(robots []model.Robot, p geom.Point) int {
	best, bestDist := 0, math.MaxFloat64
	for i, r := range robots {
		if d := r.Position.DistanceSq(p); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// tacticTarget estimates where a tactic will send its robot.
func tacticTarget(t tactic.Tactic, w *model.World) (geom.Point, bool) {
	switch t := t.(type) {
	case *tactic.PassDefender:
		return t.BlockPoint(), true
	case *tactic.CreaseDefender:
		return t.Target(w.Field), true
	default:
		return geom.Point{}, false
	}
}
