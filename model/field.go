package model

import (
	"github.com/jakecoffman/cp"
	"github.com/nstehr/vimy/vimy-stp/geom"
)

// Robot and rules constants shared by every behavior unit, in meters.
const (
	RobotMaxRadius                   = 0.09
	StopCommandBallAvoidanceDistance = 0.5
	// BallToFrontOfRobotWhenDribbling is the center-of-robot to ball distance
	// while the ball sits on the dribbler.
	BallToFrontOfRobotWhenDribbling = RobotMaxRadius + 0.0215
	CenterCircleRadius              = 0.5
)

// Field geometry. The friendly goal is on the negative x side; the origin is
// the center of the field.
type Field struct {
	XLength        float64 `json:"xLength" yaml:"x_length"`
	YLength        float64 `json:"yLength" yaml:"y_length"`
	DefenseXLength float64 `json:"defenseXLength" yaml:"defense_x_length"`
	DefenseYLength float64 `json:"defenseYLength" yaml:"defense_y_length"`
	GoalYLength    float64 `json:"goalYLength" yaml:"goal_y_length"`
	BoundaryMargin float64 `json:"boundaryMargin" yaml:"boundary_margin"`
}

// DefaultField returns SSL division B dimensions.
func DefaultField() Field {
	return Field{
		XLength:        9.0,
		YLength:        6.0,
		DefenseXLength: 1.0,
		DefenseYLength: 2.0,
		GoalYLength:    1.0,
		BoundaryMargin: 0.3,
	}
}

// TotalYLength is the field width including the boundary on both sides.
func (f Field) TotalYLength() float64 { return f.YLength + 2*f.BoundaryMargin }

// FriendlyDefenseArea is the rectangle in front of the friendly goal.
func (f Field) FriendlyDefenseArea() cp.BB {
	return cp.BB{
		L: -f.XLength / 2,
		B: -f.DefenseYLength / 2,
		R: -f.XLength/2 + f.DefenseXLength,
		T: f.DefenseYLength / 2,
	}
}

func (f Field) FriendlyGoalCenter() geom.Point { return geom.Point{X: -f.XLength / 2} }

func (f Field) EnemyGoalCenter() geom.Point { return geom.Point{X: f.XLength / 2} }

// FriendlyGoalpostPos is the friendly goalpost on the positive y side.
func (f Field) FriendlyGoalpostPos() geom.Point {
	return geom.Point{X: -f.XLength / 2, Y: f.GoalYLength / 2}
}

// FriendlyGoalpostNeg is the friendly goalpost on the negative y side.
func (f Field) FriendlyGoalpostNeg() geom.Point {
	return geom.Point{X: -f.XLength / 2, Y: -f.GoalYLength / 2}
}

// FriendlyGoalLine is the goal mouth between the two friendly posts.
func (f Field) FriendlyGoalLine() geom.Segment {
	return geom.Segment{A: f.FriendlyGoalpostPos(), B: f.FriendlyGoalpostNeg()}
}

// Bounds is the playable field, excluding the boundary margin.
func (f Field) Bounds() cp.BB {
	return cp.NewBBForExtents(cp.Vector{}, f.XLength/2, f.YLength/2)
}
