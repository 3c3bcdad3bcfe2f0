// Package geom holds the small set of 2D primitives the behavior engine needs
// on top of cp.Vector: rays, segments, capsules and angle helpers.
package geom

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Point is a field position in meters.
type Point = cp.Vector

const epsilon = 1e-9

// Ray starts at Start and extends forever along Direction.
type Ray struct {
	Start     Point
	Direction Point
}

// NewRay builds a ray from a start point and an orientation in radians.
func NewRay(start Point, orientation float64) Ray {
	return Ray{Start: start, Direction: cp.ForAngle(orientation)}
}

// Segment is the closed line segment between A and B.
type Segment struct {
	A, B Point
}

// Stadium is a capsule: every point within Radius of segment A-B.
type Stadium struct {
	A, B   Point
	Radius float64
}

// NewStadium builds a capsule starting at p and extending along v.
func NewStadium(p, v Point, radius float64) Stadium {
	return Stadium{A: p, B: p.Add(v), Radius: radius}
}

// Contains reports whether p lies inside or on the capsule.
func (s Stadium) Contains(p Point) bool {
	closest := p.ClosestPointOnSegment(s.A, s.B)
	return closest.Distance(p) <= s.Radius+epsilon
}

// Orientation returns the angle of v in radians, or 0 for the zero vector.
func Orientation(v Point) float64 {
	if v.LengthSq() == 0 {
		return 0
	}
	return v.ToAngle()
}

// NormalizeAngle wraps a into (-pi, pi].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// MinDiff returns the smallest absolute difference between two angles, in [0, pi].
func MinDiff(a, b float64) float64 {
	return math.Abs(NormalizeAngle(a - b))
}

// ConvexAngle returns the angle a-vertex-b in [0, pi].
func ConvexAngle(a, vertex, b Point) float64 {
	va := a.Sub(vertex)
	vb := b.Sub(vertex)
	if va.LengthSq() == 0 || vb.LengthSq() == 0 {
		return 0
	}
	return math.Abs(math.Atan2(va.Cross(vb), va.Dot(vb)))
}

// IntersectRaySegment returns the point where r crosses s. Parallel and
// degenerate inputs report no intersection.
func IntersectRaySegment(r Ray, s Segment) (Point, bool) {
	d := r.Direction
	e := s.B.Sub(s.A)
	denom := d.Cross(e)
	if math.Abs(denom) < epsilon || d.LengthSq() == 0 {
		return Point{}, false
	}
	w := s.A.Sub(r.Start)
	t := w.Cross(e) / denom // along the ray
	u := w.Cross(d) / denom // along the segment
	if t < -epsilon || u < -epsilon || u > 1+epsilon {
		return Point{}, false
	}
	return r.Start.Add(d.Mult(t)), true
}

// ClosestPointOnLine projects p onto the infinite line through a and b.
// A degenerate line returns a.
func ClosestPointOnLine(p, a, b Point) Point {
	ab := b.Sub(a)
	if ab.LengthSq() == 0 {
		return a
	}
	t := p.Sub(a).Dot(ab) / ab.LengthSq()
	return a.Add(ab.Mult(t))
}

// Expand grows bb by amount on every side.
func Expand(bb cp.BB, amount float64) cp.BB {
	return cp.BB{L: bb.L - amount, B: bb.B - amount, R: bb.R + amount, T: bb.T + amount}
}

// Clamp returns p moved to the nearest point inside bb.
func Clamp(bb cp.BB, p Point) Point {
	return bb.ClampVect(&p)
}

// WithLength returns v scaled to the given length, or the zero vector.
func WithLength(v Point, length float64) Point {
	if v.LengthSq() == 0 {
		return Point{}
	}
	return v.Normalize().Mult(length)
}

// ForAngle returns the unit vector for an orientation in radians.
func ForAngle(a float64) Point { return cp.ForAngle(a) }
