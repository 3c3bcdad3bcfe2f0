// Package evaluation derives defensive information from a world snapshot:
// ranked enemy threats and the defender roles that cover them.
package evaluation

import (
	"sort"

	"github.com/nstehr/vimy/vimy-stp/geom"
	"github.com/nstehr/vimy/vimy-stp/model"
)

// EnemyThreat is a ranked view of one enemy robot.
type EnemyThreat struct {
	RobotID     int
	Origin      geom.Point
	Orientation float64
	HasBall     bool
}

// RankThreats orders enemy robots by shot danger, most dangerous first: the
// robot on the ball, then by distance to the friendly goal, ties by id.
func RankThreats(w model.World) []EnemyThreat {
	goal := w.Field.FriendlyGoalCenter()
	holder, hasHolder := ballHolder(w)

	threats := make([]EnemyThreat, 0, len(w.Enemy.Robots))
	for _, r := range w.Enemy.Robots {
		threats = append(threats, EnemyThreat{
			RobotID:     r.ID,
			Origin:      r.Position,
			Orientation: r.Orientation,
			HasBall:     hasHolder && r.ID == holder,
		})
	}
	sort.SliceStable(threats, func(i, j int) bool {
		a, b := threats[i], threats[j]
		if a.HasBall != b.HasBall {
			return a.HasBall
		}
		da, db := a.Origin.DistanceSq(goal), b.Origin.DistanceSq(goal)
		if da != db {
			return da < db
		}
		return a.RobotID < b.RobotID
	})
	return threats
}

// ballHolderRadius is how close an enemy must be to the ball to own it.
const ballHolderRadius = model.RobotMaxRadius * 2

func ballHolder(w model.World) (int, bool) {
	r, ok := w.Enemy.Nearest(w.Ball.Position)
	if !ok || r.Position.Distance(w.Ball.Position) > ballHolderRadius {
		return 0, false
	}
	return r.ID, true
}
