package agent

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nstehr/vimy/vimy-stp/config"
	"github.com/nstehr/vimy/vimy-stp/ipc"
	"github.com/nstehr/vimy/vimy-stp/model"
	"github.com/nstehr/vimy/vimy-stp/primitive"
	"github.com/nstehr/vimy/vimy-stp/stp"
	"github.com/nstehr/vimy/vimy-stp/stp/play"
)

// Agent owns the decision-making for a single team session.
type Agent struct {
	Team  string
	Debug stp.DebugSink
	// Override pins the play regardless of the referee command.
	Override *play.Kind

	store     *config.Store
	cfgVer    int
	current   play.Play
	memory    map[string]any
	prevWorld *model.World
	matches   []Match
}

func New(store *config.Store) *Agent {
	return &Agent{store: store, memory: make(map[string]any)}
}

// Play returns the play that ran on the last tick, or nil before the first.
func (a *Agent) Play() play.Play { return a.current }

// Matches returns the robot/tactic pairs stepped on the last tick.
func (a *Agent) Matches() []Match { return a.matches }

// Memory exposes the coordination memory written during the last tick.
func (a *Agent) Memory() map[string]any { return a.memory }

// Tick runs one decision cycle and returns a primitive per matched robot,
// in allocation order.
func (a *Agent) Tick(w model.World) []primitive.Primitive {
	for _, ev := range detectEvents(a.prevWorld, w) {
		slog.Info("world event", "team", a.Team, "event", ev.Kind, "tick", ev.Tick, "detail", ev.Detail)
	}
	prev := w
	a.prevWorld = &prev

	p := a.selectPlay(w)
	priority := p.Update(&w, len(w.Friendly.Robots))

	clear(a.memory)
	set := primitive.NewSet()
	matches, unmatched := Allocate(priority, &w)
	a.matches = matches
	for _, m := range matches {
		m.Tactic.Update(stp.Common{
			World:  &w,
			Robot:  m.Robot,
			Sink:   set,
			Memory: a.memory,
			Debug:  a.Debug,
		})
	}
	for _, t := range unmatched {
		t.Stop()
	}
	return set.All()
}

// selectPlay rebuilds the play when the wanted kind or the config changes.
// Rebuilding discards every tactic's state.
func (a *Agent) selectPlay(w model.World) play.Play {
	kind := play.ForGameState(w.GameState)
	if a.Override != nil {
		kind = *a.Override
	}
	snap := a.store.Current()
	if a.current != nil && a.current.Kind() == kind && a.cfgVer == snap.Version {
		return a.current
	}
	if a.current != nil {
		slog.Info("switching play", "team", a.Team, "from", a.current.Kind(), "to", kind, "config_version", snap.Version)
	}
	a.current = play.New(kind, snap.Config)
	a.cfgVer = snap.Version
	return a.current
}

// HandleHello completes the handshake so the producer knows the sidecar is ready.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := json.Unmarshal(env.Data, &hello); err != nil {
		return nil, fmt.Errorf("unmarshal hello: %w", err)
	}

	a.Team = hello.Team
	slog.Info("team identified", "team", a.Team)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok"})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

func (a *Agent) HandleWorld(env ipc.Envelope) (*ipc.Envelope, error) {
	var w model.World
	if err := json.Unmarshal(env.Data, &w); err != nil {
		return nil, fmt.Errorf("unmarshal world: %w", err)
	}

	prims := a.Tick(w)
	slog.Debug("world processed",
		"team", a.Team,
		"tick", w.Tick,
		"command", w.GameState.Command,
		"play", a.current.Kind(),
		"friendly", len(w.Friendly.Robots),
		"enemy", len(w.Enemy.Robots),
		"primitives", len(prims),
	)

	resp, err := ipc.NewEnvelope(ipc.TypePrimitives, ipc.PrimitivesMessage{
		Tick:       w.Tick,
		Play:       a.current.Kind().String(),
		Primitives: prims,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
