// Package guard holds transition predicates shared by several tactics.
package guard

import (
	"github.com/nstehr/vimy/vimy-stp/model"
)

const (
	// MaxGetBallRatio is the largest (robot to ball) / (robot to nearest
	// enemy) distance ratio at which a defender leaves its post for the ball.
	MaxGetBallRatio = 0.3
	// MaxGetBallRadius is the farthest (m) a defender travels for a loose ball.
	MaxGetBallRadius = 1.0
	// MaxBallSpeedToGet is the fastest (m/s) ball a defender tries to collect.
	MaxBallSpeedToGet = 0.5
)

// LooseBallOpportunity reports whether the ball is close, slow, on our half
// and clearly nearer to robot than to nearestEnemy. With no enemy on the field
// the ball is always worth taking.
func LooseBallOpportunity(robot model.Robot, ball model.Ball, nearestEnemy *model.Robot) bool {
	if nearestEnemy == nil {
		return true
	}
	ballDistance := robot.Position.Distance(ball.Position)
	enemyDistance := robot.Position.Distance(nearestEnemy.Position)
	return ballDistance < MaxGetBallRatio*enemyDistance &&
		ball.Position.X < 0 &&
		ballDistance <= MaxGetBallRadius &&
		ball.Speed() <= MaxBallSpeedToGet
}
