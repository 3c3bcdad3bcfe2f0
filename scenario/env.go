package scenario

import (
	"github.com/nstehr/vimy/vimy-stp/agent"
	"github.com/nstehr/vimy/vimy-stp/primitive"
	"github.com/nstehr/vimy/vimy-stp/stp"
)

// Env is what an expectation sees after a tick ran. Its methods are callable
// from expr expressions.
type Env struct {
	Tick       int
	Play       string
	Primitives []primitive.Primitive
	tactics    map[int]agent.Match
	memory     map[string]any
}

func playName(a *agent.Agent) string {
	if p := a.Play(); p != nil {
		return p.Kind().String()
	}
	return ""
}

func newEnv(tick int, a *agent.Agent, prims []primitive.Primitive) Env {
	env := Env{
		Tick:       tick,
		Play:       playName(a),
		Primitives: prims,
		tactics:    make(map[int]agent.Match),
		memory:     make(map[string]any, len(a.Memory())),
	}
	for _, m := range a.Matches() {
		env.tactics[m.Robot.ID] = m
	}
	for k, v := range a.Memory() {
		env.memory[k] = v
	}
	return env
}

func (e Env) primitive(id int) (primitive.Primitive, bool) {
	for _, p := range e.Primitives {
		if p.RobotID == id {
			return p, true
		}
	}
	return primitive.Primitive{}, false
}

func (e Env) HasPrimitive(id int) bool {
	_, ok := e.primitive(id)
	return ok
}

func (e Env) DestX(id int) float64 {
	p, _ := e.primitive(id)
	return p.Destination.X
}

func (e Env) DestY(id int) float64 {
	p, _ := e.primitive(id)
	return p.Destination.Y
}

func (e Env) Orientation(id int) float64 {
	p, _ := e.primitive(id)
	return p.Orientation
}

func (e Env) Stopped(id int) bool {
	p, _ := e.primitive(id)
	return p.Stop
}

func (e Env) Dribbler(id int) string {
	p, _ := e.primitive(id)
	return string(p.Dribbler)
}

func (e Env) Chip(id int) string {
	p, _ := e.primitive(id)
	return string(p.AutoChipOrKick.Mode)
}

func (e Env) AvoidBall(id int) bool {
	p, _ := e.primitive(id)
	return p.AvoidBall
}

func (e Env) Avoidance(id int) string {
	p, _ := e.primitive(id)
	return string(p.Avoidance)
}

// Tactic names the tactic robot id ran, or "" if it was not matched.
func (e Env) Tactic(id int) string {
	m, ok := e.tactics[id]
	if !ok {
		return ""
	}
	return m.Tactic.Name()
}

// State is the tactic's FSM state after the tick.
func (e Env) State(id int) string {
	m, ok := e.tactics[id]
	if !ok {
		return ""
	}
	return m.Tactic.State()
}

func (e Env) CountTactic(name string) int {
	n := 0
	for _, m := range e.tactics {
		if m.Tactic.Name() == name {
			n++
		}
	}
	return n
}

// BallHolder returns the friendly robot recorded on the ball, or -1.
func (e Env) BallHolder() int {
	id, ok := e.memory[stp.MemoryBallHolder].(int)
	if !ok {
		return -1
	}
	return id
}
