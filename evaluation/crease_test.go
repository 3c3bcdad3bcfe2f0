package evaluation

import (
	"math"
	"testing"

	"github.com/nstehr/vimy/vimy-stp/geom"
	"github.com/nstehr/vimy/vimy-stp/model"
)

const eps = 1e-6

func TestFindBlockThreatPointFrontEdge(t *testing.T) {
	field := model.DefaultField()
	inflation := 1.0 + CreaseInflationMargin
	frontX := field.FriendlyDefenseArea().R + model.RobotMaxRadius*inflation

	center, ok := FindBlockThreatPoint(field, geom.Point{}, AlignCenter, inflation)
	if !ok {
		t.Fatal("FindBlockThreatPoint(center) found nothing for a threat at midfield")
	}
	if math.Abs(center.X-frontX) > eps || math.Abs(center.Y) > eps {
		t.Errorf("FindBlockThreatPoint(center) = %v, want (%v, 0)", center, frontX)
	}

	left, okL := FindBlockThreatPoint(field, geom.Point{}, AlignLeft, inflation)
	right, okR := FindBlockThreatPoint(field, geom.Point{}, AlignRight, inflation)
	if !okL || !okR {
		t.Fatalf("left/right block points missing: %v %v", okL, okR)
	}
	if !(left.Y > center.Y && center.Y > right.Y) {
		t.Errorf("alignments not ordered across the cone: left %v, center %v, right %v", left, center, right)
	}
	if math.Abs(left.Y+right.Y) > eps {
		t.Errorf("left %v and right %v should mirror for a threat on the axis", left, right)
	}
}

func TestFindBlockThreatPointSideEdge(t *testing.T) {
	field := model.DefaultField()
	inflation := 1.0 + CreaseInflationMargin
	area := geom.Expand(field.FriendlyDefenseArea(), model.RobotMaxRadius*inflation)

	p, ok := FindBlockThreatPoint(field, geom.Point{X: -3.0, Y: 2.5}, AlignCenter, inflation)
	if !ok {
		t.Fatal("FindBlockThreatPoint() found nothing for a threat beside the defense area")
	}
	if math.Abs(p.Y-area.T) > eps || p.X < area.L-eps || p.X > area.R+eps {
		t.Errorf("FindBlockThreatPoint() = %v, want a point on the top edge y=%v", p, area.T)
	}

	p, ok = FindBlockThreatPoint(field, geom.Point{X: -3.0, Y: -2.5}, AlignCenter, inflation)
	if !ok || math.Abs(p.Y-area.B) > eps {
		t.Errorf("FindBlockThreatPoint() = %v, %v, want a point on the bottom edge y=%v", p, ok, area.B)
	}
}

func TestFindBlockThreatPointInsideAreaNotFound(t *testing.T) {
	p, ok := FindBlockThreatPoint(model.DefaultField(), geom.Point{X: -4.0}, AlignCenter, 1.5)
	if ok {
		t.Errorf("FindBlockThreatPoint() = %v, want not found for a threat inside the area", p)
	}
	if math.IsNaN(p.X) || math.IsNaN(p.Y) {
		t.Errorf("FindBlockThreatPoint() = %v, want no NaN", p)
	}
}

// Every threat in front of the area projects onto the inflated boundary.
func TestFindBlockThreatPointSweep(t *testing.T) {
	field := model.DefaultField()
	inflation := 1.0 + CreaseInflationMargin
	area := geom.Expand(field.FriendlyDefenseArea(), model.RobotMaxRadius*inflation)

	for _, x := range []float64{-3.0, -1.0, 0.5, 2.0, 4.0} {
		for _, y := range []float64{-2.9, -1.5, -0.3, 0, 0.7, 2.2, 2.9} {
			for _, align := range []Alignment{AlignLeft, AlignCenter, AlignRight} {
				origin := geom.Point{X: x, Y: y}
				p, ok := FindBlockThreatPoint(field, origin, align, inflation)
				if !ok {
					t.Errorf("FindBlockThreatPoint(%v, %v) found nothing", origin, align)
					continue
				}
				onFront := math.Abs(p.X-area.R) < eps && p.Y >= area.B-eps && p.Y <= area.T+eps
				onSide := (math.Abs(p.Y-area.T) < eps || math.Abs(p.Y-area.B) < eps) && p.X >= area.L-eps && p.X <= area.R+eps
				if !onFront && !onSide {
					t.Errorf("FindBlockThreatPoint(%v, %v) = %v, not on the inflated area boundary", origin, align, p)
				}
			}
		}
	}
}
