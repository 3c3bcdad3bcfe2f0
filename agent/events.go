package agent

import (
	"fmt"

	"github.com/nstehr/vimy/vimy-stp/evaluation"
	"github.com/nstehr/vimy/vimy-stp/model"
	"github.com/nstehr/vimy/vimy-stp/stp/tactic"
)

// EventKind identifies a notable change between consecutive world snapshots.
type EventKind string

const (
	EventCommandChanged EventKind = "command_changed"
	EventBallKicked     EventKind = "ball_kicked"
	EventEnemyOnBall    EventKind = "enemy_on_ball"
	EventRobotsChanged  EventKind = "robots_changed"
)

// Event is logged for operators; the engine itself only reacts to the world.
type Event struct {
	Kind   EventKind
	Tick   int
	Detail string
}

// kickSpeed is the ball speed (m/s) above which a previously still ball
// counts as kicked.
const kickSpeed = tactic.MinPassSpeed

// detectEvents diffs two consecutive snapshots. prev is nil on the first tick.
func detectEvents(prev *model.World, cur model.World) []Event {
	if prev == nil {
		return nil
	}
	var events []Event
	if prev.GameState.Command != cur.GameState.Command {
		events = append(events, Event{
			Kind:   EventCommandChanged,
			Tick:   cur.Tick,
			Detail: fmt.Sprintf("%s -> %s", prev.GameState.Command, cur.GameState.Command),
		})
	}
	if prev.Ball.Speed() < kickSpeed && cur.Ball.Speed() >= kickSpeed {
		events = append(events, Event{
			Kind:   EventBallKicked,
			Tick:   cur.Tick,
			Detail: fmt.Sprintf("ball speed %.2f m/s", cur.Ball.Speed()),
		})
	}
	if !enemyOnBall(*prev) && enemyOnBall(cur) {
		events = append(events, Event{Kind: EventEnemyOnBall, Tick: cur.Tick, Detail: "enemy gained the ball"})
	}
	if len(prev.Friendly.Robots) != len(cur.Friendly.Robots) {
		events = append(events, Event{
			Kind:   EventRobotsChanged,
			Tick:   cur.Tick,
			Detail: fmt.Sprintf("friendly robots %d -> %d", len(prev.Friendly.Robots), len(cur.Friendly.Robots)),
		})
	}
	return events
}

func enemyOnBall(w model.World) bool {
	threats := evaluation.RankThreats(w)
	return len(threats) > 0 && threats[0].HasBall
}
