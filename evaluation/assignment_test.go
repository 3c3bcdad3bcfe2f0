package evaluation

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/nstehr/vimy/vimy-stp/config"
	"github.com/nstehr/vimy/vimy-stp/geom"
	"github.com/nstehr/vimy/vimy-stp/model"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func crease(id int, origin geom.Point) Role {
	return Role{Kind: CreaseDefender, Target: geom.Point{X: -3.365}, Origin: origin, ThreatID: id}
}

func pass(id int, target geom.Point) Role {
	return Role{Kind: PassDefender, Target: target, Origin: target, ThreatID: id}
}

func TestDefenderRoles(t *testing.T) {
	field := model.DefaultField()
	cfg := config.Default()
	threats := []EnemyThreat{
		{RobotID: 5, Origin: geom.Point{X: -2}},
		{RobotID: 6, Origin: geom.Point{X: 2, Y: 1}},
	}
	roles := DefenderRoles(threats, field, model.Ball{}, cfg)
	if len(roles) != 2 {
		t.Fatalf("DefenderRoles() returned %d roles, want 2", len(roles))
	}

	wantCrease, _ := FindBlockThreatPoint(field, geom.Point{X: -2}, AlignCenter, 1.5)
	lane := geom.Point{X: -2, Y: -1}.Normalize().Mult(0.5)
	want := []Role{
		{Kind: CreaseDefender, Target: wantCrease, Origin: geom.Point{X: -2}, ThreatID: 5},
		{Kind: PassDefender, Target: geom.Point{X: 2, Y: 1}.Add(lane), Origin: geom.Point{X: 2, Y: 1}, ThreatID: 6},
	}
	if diff := cmp.Diff(want, roles, approx); diff != "" {
		t.Errorf("DefenderRoles() mismatch (-want +got):\n%s", diff)
	}
}

func TestDefenderRolesBallHolderIsCrease(t *testing.T) {
	threats := []EnemyThreat{{RobotID: 1, Origin: geom.Point{X: 3}, HasBall: true}}
	roles := DefenderRoles(threats, model.DefaultField(), model.Ball{Position: geom.Point{X: 3.1}}, config.Default())
	if roles[0].Kind != CreaseDefender {
		t.Errorf("DefenderRoles() kind = %v, want crease_defender for the ball holder", roles[0].Kind)
	}
}

func TestDefenderRolesClampsTargets(t *testing.T) {
	threats := []EnemyThreat{
		{RobotID: 1, Origin: geom.Point{X: -2}},
		{RobotID: 2, Origin: geom.Point{X: 4.4, Y: 2.95}},
	}
	ball := model.Ball{Position: geom.Point{X: 5, Y: 4}}
	roles := DefenderRoles(threats, model.DefaultField(), ball, config.Default())
	r := roles[1]
	if r.Kind != PassDefender {
		t.Fatalf("DefenderRoles() kind = %v, want pass_defender", r.Kind)
	}
	if r.Target.X > 4.5 || r.Target.Y > 3 {
		t.Errorf("DefenderRoles() target = %v, want inside the field", r.Target)
	}
}

func TestDefenderRolesTopThreatIsCrease(t *testing.T) {
	threats := []EnemyThreat{
		{RobotID: 3, Origin: geom.Point{X: 3}},
		{RobotID: 4, Origin: geom.Point{X: 3.5}},
	}
	roles := DefenderRoles(threats, model.DefaultField(), model.Ball{Position: geom.Point{X: 1}}, config.Default())
	if roles[0].Kind != CreaseDefender || roles[1].Kind != PassDefender {
		t.Errorf("DefenderRoles() kinds = %v, %v, want crease_defender, pass_defender", roles[0].Kind, roles[1].Kind)
	}
}

func TestDefenderRolesFacingGoalIsCrease(t *testing.T) {
	tests := []struct {
		name        string
		orientation float64
		want        RoleKind
	}{
		{"facing goal", math.Pi, CreaseDefender},
		{"facing away", 0, PassDefender},
		{"facing touchline", math.Pi / 2, PassDefender},
	}
	for _, tc := range tests {
		threats := []EnemyThreat{
			{RobotID: 1, Origin: geom.Point{X: -2}},
			{RobotID: 2, Origin: geom.Point{X: 2}, Orientation: tc.orientation},
		}
		roles := DefenderRoles(threats, model.DefaultField(), model.Ball{Position: geom.Point{X: 3}}, config.Default())
		if got := roles[1].Kind; got != tc.want {
			t.Errorf("%s: DefenderRoles() kind = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestLoneThreatFacingGoalGetsTwoCreaseDefenders(t *testing.T) {
	cfg := config.Default()
	w := model.World{
		Field: model.DefaultField(),
		Ball:  model.Ball{Position: geom.Point{X: 2}},
		Enemy: model.Team{Robots: []model.Robot{
			{ID: 3, Position: geom.Point{X: -1}, Orientation: math.Pi},
		}},
	}
	roles := DefenderRoles(RankThreats(w), w.Field, w.Ball, cfg)
	got := AssignDefenders(AssignmentInput{
		Roles:    roles,
		Field:    w.Field,
		Ball:     w.Ball,
		TooClose: cfg.Assignment.TooCloseThreshold,
		Slots:    2,
	})

	inflation := cfg.Navigation.RobotObstacleInflationFactor + CreaseInflationMargin
	point, ok := FindBlockThreatPoint(w.Field, geom.Point{X: -1}, AlignCenter, inflation)
	if !ok {
		t.Fatal("FindBlockThreatPoint() found no point")
	}
	front := geom.Expand(w.Field.FriendlyDefenseArea(), model.RobotMaxRadius*inflation).R
	if math.Abs(point.X-front) > 1e-9 {
		t.Errorf("block point X = %v, want the inflated front edge %v", point.X, front)
	}
	if len(got.Crease) != 2 || len(got.Pass) != 0 || len(got.MidZone) != 0 {
		t.Fatalf("AssignDefenders() = %+v, want exactly 2 crease roles", got)
	}
	for i, r := range got.Crease {
		if diff := cmp.Diff(point, r.Target, approx); diff != "" {
			t.Errorf("crease role %d target mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestAssignDefendersCreaseTopTakesTwoSlots(t *testing.T) {
	a := crease(1, geom.Point{X: -2})
	b := pass(2, geom.Point{X: 1, Y: 1})
	got := AssignDefenders(AssignmentInput{
		Roles: []Role{a, b},
		Field: model.DefaultField(),
		Slots: 2,
	})
	want := Assignment{Crease: []Role{a, a}}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("AssignDefenders() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignDefendersSingleSlot(t *testing.T) {
	a := crease(1, geom.Point{X: -2})
	got := AssignDefenders(AssignmentInput{Roles: []Role{a}, Field: model.DefaultField(), Slots: 1})
	if diff := cmp.Diff(Assignment{Crease: []Role{a}}, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("AssignDefenders() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignDefendersRankOrder(t *testing.T) {
	a := crease(1, geom.Point{X: -2})
	b := pass(2, geom.Point{X: 1, Y: 1})
	c := crease(3, geom.Point{X: -2, Y: 1})
	got := AssignDefenders(AssignmentInput{Roles: []Role{a, b, c}, Field: model.DefaultField(), Slots: 4})
	want := Assignment{Crease: []Role{a, a, c}, Pass: []Role{b}}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("AssignDefenders() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignDefendersDefersTooClose(t *testing.T) {
	block := geom.Point{}
	near := pass(1, geom.Point{X: 0.3})
	far := pass(2, geom.Point{X: 2, Y: 2})
	in := AssignmentInput{
		Roles:      []Role{near, far},
		Field:      model.DefaultField(),
		TooClose:   0.5,
		BlockPoint: &block,
	}

	in.Slots = 1
	if diff := cmp.Diff(Assignment{Pass: []Role{far}}, AssignDefenders(in), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("AssignDefenders(1 slot) mismatch (-want +got):\n%s", diff)
	}
	in.Slots = 2
	if diff := cmp.Diff(Assignment{Pass: []Role{far, near}}, AssignDefenders(in), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("AssignDefenders(2 slots) mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignDefendersTooCloseIsInclusive(t *testing.T) {
	block := geom.Point{}
	edge := pass(1, geom.Point{X: 0.5})
	other := pass(2, geom.Point{X: 2})
	got := AssignDefenders(AssignmentInput{
		Roles:      []Role{edge, other},
		Field:      model.DefaultField(),
		TooClose:   0.5,
		Slots:      1,
		BlockPoint: &block,
	})
	if diff := cmp.Diff(Assignment{Pass: []Role{other}}, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("AssignDefenders() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignDefendersMidZone(t *testing.T) {
	field := model.DefaultField()
	ball := model.Ball{Position: geom.Point{X: 1}}
	block := geom.Point{}
	far := pass(2, geom.Point{X: 2, Y: 2})

	got := AssignDefenders(AssignmentInput{
		Roles:      []Role{far},
		Field:      field,
		Ball:       ball,
		TooClose:   0.5,
		Slots:      4,
		BlockPoint: &block,
	})
	mid := Role{Kind: PassDefender, Target: geom.Point{X: -1.75}, Origin: ball.Position, ThreatID: -1}
	want := Assignment{Pass: []Role{far, far}, MidZone: []Role{mid, mid}}
	if diff := cmp.Diff(want, got, approx, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("AssignDefenders() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignDefendersNoMidZoneNearGoal(t *testing.T) {
	block := geom.Point{X: -3.5}
	far := pass(2, geom.Point{X: 2, Y: 2})
	got := AssignDefenders(AssignmentInput{
		Roles:      []Role{far},
		Field:      model.DefaultField(),
		TooClose:   0.5,
		Slots:      3,
		BlockPoint: &block,
	})
	want := Assignment{Pass: []Role{far, far, far}}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("AssignDefenders() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignDefendersEmpty(t *testing.T) {
	field := model.DefaultField()
	if got := AssignDefenders(AssignmentInput{Field: field, Slots: 3}); got.Len() != 0 {
		t.Errorf("AssignDefenders(no roles) = %+v, want empty", got)
	}
	roles := []Role{crease(1, geom.Point{X: -2})}
	if got := AssignDefenders(AssignmentInput{Roles: roles, Field: field, Slots: 0}); got.Len() != 0 {
		t.Errorf("AssignDefenders(0 slots) = %+v, want empty", got)
	}
}

func TestAssignDefendersIsPure(t *testing.T) {
	block := geom.Point{}
	roles := []Role{pass(1, geom.Point{X: 0.2}), crease(2, geom.Point{X: -2}), pass(3, geom.Point{X: 2, Y: -2})}
	snapshot := append([]Role(nil), roles...)
	in := AssignmentInput{
		Roles:      roles,
		Field:      model.DefaultField(),
		Ball:       model.Ball{Position: geom.Point{X: 0.5}},
		TooClose:   0.5,
		Slots:      5,
		BlockPoint: &block,
	}
	first := AssignDefenders(in)
	second := AssignDefenders(in)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("AssignDefenders() not repeatable (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(snapshot, roles); diff != "" {
		t.Errorf("AssignDefenders() modified its input (-before +after):\n%s", diff)
	}
	if first.Len() > in.Slots {
		t.Errorf("AssignDefenders() filled %d slots, want at most %d", first.Len(), in.Slots)
	}
	if math.IsNaN(first.Crease[0].Target.X) {
		t.Error("crease target is NaN")
	}
}
