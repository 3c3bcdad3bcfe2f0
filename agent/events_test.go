package agent

import (
	"testing"

	"github.com/nstehr/vimy/vimy-stp/geom"
	"github.com/nstehr/vimy/vimy-stp/model"
)

func hasEvent(events []Event, kind EventKind) bool {
	for _, e := range events {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func TestDetectEvents_NilPrev(t *testing.T) {
	if events := detectEvents(nil, baseWorld(100)); events != nil {
		t.Errorf("expected nil events for nil prev, got %+v", events)
	}
}

func TestDetectEvents_NoEvents(t *testing.T) {
	prev := baseWorld(100)
	events := detectEvents(&prev, baseWorld(101))
	if len(events) != 0 {
		t.Errorf("expected 0 events, got %d: %+v", len(events), events)
	}
}

func TestDetectEvents_CommandChanged(t *testing.T) {
	prev := baseWorld(100)
	cur := baseWorld(101)
	cur.GameState.Command = model.CommandPlaying
	if events := detectEvents(&prev, cur); !hasEvent(events, EventCommandChanged) {
		t.Errorf("expected command_changed event, got %+v", events)
	}
}

func TestDetectEvents_BallKicked(t *testing.T) {
	prev := baseWorld(100)
	cur := baseWorld(101)
	cur.Ball.Velocity = geom.Point{X: -3}
	if events := detectEvents(&prev, cur); !hasEvent(events, EventBallKicked) {
		t.Errorf("expected ball_kicked event, got %+v", events)
	}
}

func TestDetectEvents_EnemyOnBall(t *testing.T) {
	prev := baseWorld(100)
	prev.Ball.Position = geom.Point{X: 3, Y: -2}
	cur := baseWorld(101)
	if events := detectEvents(&prev, cur); !hasEvent(events, EventEnemyOnBall) {
		t.Errorf("expected enemy_on_ball event, got %+v", events)
	}
}

func TestDetectEvents_RobotsChanged(t *testing.T) {
	prev := baseWorld(100)
	cur := baseWorld(101)
	cur.Friendly.Robots = cur.Friendly.Robots[:5]
	if events := detectEvents(&prev, cur); !hasEvent(events, EventRobotsChanged) {
		t.Errorf("expected robots_changed event, got %+v", events)
	}
}
