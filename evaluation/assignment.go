package evaluation

import (
	"github.com/nstehr/vimy/vimy-stp/config"
	"github.com/nstehr/vimy/vimy-stp/geom"
	"github.com/nstehr/vimy/vimy-stp/model"
)

type RoleKind int

const (
	CreaseDefender RoleKind = iota
	PassDefender
)

func (k RoleKind) String() string {
	if k == CreaseDefender {
		return "crease_defender"
	}
	return "pass_defender"
}

// Role is one defender slot computed for this tick. For crease roles Origin is
// the threat the defender faces; for pass roles Target is the blocking point.
type Role struct {
	Kind     RoleKind
	Target   geom.Point
	Origin   geom.Point
	ThreatID int
}

// maxMidZoneRoles caps the synthetic ball-to-goal fillers per assignment.
const maxMidZoneRoles = 2

// DefenderRoles maps each ranked threat to the role that would cover it,
// preserving rank order. The top threat is always covered at the crease, as
// is any threat on the ball, near the goal or facing the goal mouth.
func DefenderRoles(threats []EnemyThreat, field model.Field, ball model.Ball, cfg config.Config) []Role {
	bounds := field.Bounds()
	inflation := cfg.Navigation.RobotObstacleInflationFactor + CreaseInflationMargin

	roles := make([]Role, 0, len(threats))
	for i, t := range threats {
		if i == 0 || needsCreaseCover(t, field, cfg) {
			target, ok := FindBlockThreatPoint(field, t.Origin, AlignCenter, inflation)
			if !ok {
				target = t.Origin
			}
			roles = append(roles, Role{
				Kind:     CreaseDefender,
				Target:   geom.Clamp(bounds, target),
				Origin:   t.Origin,
				ThreatID: t.RobotID,
			})
			continue
		}
		lane := geom.WithLength(ball.Position.Sub(t.Origin), cfg.Assignment.PassDefenderStandoff)
		roles = append(roles, Role{
			Kind:     PassDefender,
			Target:   geom.Clamp(bounds, t.Origin.Add(lane)),
			Origin:   t.Origin,
			ThreatID: t.RobotID,
		})
	}
	return roles
}

func needsCreaseCover(t EnemyThreat, field model.Field, cfg config.Config) bool {
	if t.HasBall || t.Origin.Distance(field.FriendlyGoalCenter()) <= cfg.Assignment.CreaseThreatDistance {
		return true
	}
	_, onGoal := geom.IntersectRaySegment(geom.NewRay(t.Origin, t.Orientation), field.FriendlyGoalLine())
	return onGoal
}

// AssignmentInput is everything the allocation needs for one tick.
type AssignmentInput struct {
	Roles    []Role // ranked, from DefenderRoles
	Field    model.Field
	Ball     model.Ball
	TooClose float64
	Slots    int
	// BlockPoint is the reserved primary blocking point, if one is reserved.
	BlockPoint *geom.Point
}

// Assignment is the allocation result partitioned by kind. MidZone holds the
// synthetic pass defender roles between the ball and the friendly goal.
type Assignment struct {
	Crease  []Role
	Pass    []Role
	MidZone []Role
}

// Len is the number of slots filled.
func (a Assignment) Len() int { return len(a.Crease) + len(a.Pass) + len(a.MidZone) }

// AssignDefenders fills up to in.Slots defender slots in rank order. Pass
// roles too close to the reserved blocking point are deferred until the ranked
// roles run out. The result depends only on the input.
func AssignDefenders(in AssignmentInput) Assignment {
	var out Assignment
	if len(in.Roles) == 0 || in.Slots <= 0 {
		return out
	}

	goal := in.Field.FriendlyGoalCenter()
	next := 0
	var deferred []Role
	for slot := 0; slot < in.Slots; slot++ {
		role, ok := nextRanked(in, &next, &deferred)
		if !ok {
			switch {
			case len(deferred) > 0:
				role = deferred[0]
				deferred = deferred[1:]
			case in.BlockPoint != nil && len(out.MidZone) < maxMidZoneRoles &&
				in.BlockPoint.Distance(goal) >= in.Field.TotalYLength()/2:
				mid := in.Ball.Position.Lerp(goal, 0.5)
				out.MidZone = append(out.MidZone, Role{
					Kind:     PassDefender,
					Target:   geom.Clamp(in.Field.Bounds(), mid),
					Origin:   in.Ball.Position,
					ThreatID: -1,
				})
				continue
			default:
				role = in.Roles[0]
			}
		}

		if role.Kind == PassDefender {
			out.Pass = append(out.Pass, role)
			continue
		}
		out.Crease = append(out.Crease, role)
		// Two robots share the most dangerous shot cone when we can afford it.
		if slot == 0 && in.Slots >= 2 {
			out.Crease = append(out.Crease, role)
			slot++
		}
	}
	return out
}

// nextRanked returns the next ranked role that is not deferred, deferring
// pass roles that sit within TooClose of the blocking point.
func nextRanked(in AssignmentInput, next *int, deferred *[]Role) (Role, bool) {
	for *next < len(in.Roles) {
		r := in.Roles[*next]
		*next++
		if r.Kind == PassDefender && in.BlockPoint != nil && r.Target.Distance(*in.BlockPoint) <= in.TooClose {
			*deferred = append(*deferred, r)
			continue
		}
		return r, true
	}
	return Role{}, false
}
