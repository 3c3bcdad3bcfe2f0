package evaluation

import (
	"github.com/nstehr/vimy/vimy-stp/geom"
	"github.com/nstehr/vimy/vimy-stp/model"
)

// Alignment picks which part of a threat's shot cone a crease defender covers.
type Alignment int

const (
	AlignCenter Alignment = iota
	AlignLeft
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	default:
		return "center"
	}
}

// sixths of the shot cone, measured from the positive goalpost.
func (a Alignment) coneSixths() float64 {
	switch a {
	case AlignLeft:
		return 1
	case AlignRight:
		return 5
	default:
		return 3
	}
}

// CreaseInflationMargin is added to the navigation inflation factor so crease
// defenders do not sit right on the edge of the defense area obstacle.
const CreaseInflationMargin = 0.5

// FindBlockThreatPoint casts a ray from the threat through its shot cone on
// the friendly goal and returns where it meets the inflated defense area.
func FindBlockThreatPoint(field model.Field, origin geom.Point, align Alignment, inflationFactor float64) (geom.Point, bool) {
	pos := field.FriendlyGoalpostPos()
	neg := field.FriendlyGoalpostNeg()
	sixth := geom.ConvexAngle(pos, origin, neg) / 6
	toPos := geom.Orientation(pos.Sub(origin))

	ray := geom.NewRay(origin, toPos+sixth*align.coneSixths())
	return findDefenseAreaIntersection(field, ray, inflationFactor)
}

// findDefenseAreaIntersection intersects ray with the front edge of the
// inflated defense area, or with the side edge on the ray origin's half.
func findDefenseAreaIntersection(field model.Field, ray geom.Ray, inflationFactor float64) (geom.Point, bool) {
	area := geom.Expand(field.FriendlyDefenseArea(), model.RobotMaxRadius*inflationFactor)

	front := geom.Segment{A: geom.Point{X: area.R, Y: area.T}, B: geom.Point{X: area.R, Y: area.B}}
	if p, ok := geom.IntersectRaySegment(ray, front); ok && ray.Start.X > front.A.X {
		return p, true
	}

	if ray.Start.Y > 0 {
		left := geom.Segment{A: geom.Point{X: area.R, Y: area.T}, B: geom.Point{X: area.L, Y: area.T}}
		return geom.IntersectRaySegment(ray, left)
	}
	right := geom.Segment{A: geom.Point{X: area.R, Y: area.B}, B: geom.Point{X: area.L, Y: area.B}}
	return geom.IntersectRaySegment(ray, right)
}
