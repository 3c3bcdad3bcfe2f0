// Package stp holds the parameters every behavior unit receives when it is
// stepped: the world, the assigned robot, where to send output and the shared
// coordination memory.
package stp

import (
	"github.com/nstehr/vimy/vimy-stp/geom"
	"github.com/nstehr/vimy/vimy-stp/model"
	"github.com/nstehr/vimy/vimy-stp/primitive"
)

// Memory keys shared between behavior units.
const (
	// MemoryBallHolder holds the int id of the friendly robot on the ball.
	MemoryBallHolder = "ball_holder"
)

// Common is passed unchanged from a tactic down to the skills it owns.
type Common struct {
	World *model.World
	Robot model.Robot
	Sink  primitive.Sink
	// Memory is owned by the caller and only valid for the current tick's
	// single walker; units must not retain it.
	Memory map[string]any
	Debug  DebugSink
}

// Emit sends p for the assigned robot.
func (c Common) Emit(p primitive.Primitive) {
	p.RobotID = c.Robot.ID
	if c.Sink != nil {
		c.Sink.SetPrimitive(p)
	}
}

// NearestEnemy returns the enemy robot closest to the assigned robot.
func (c Common) NearestEnemy() *model.Robot {
	r, ok := c.World.Enemy.Nearest(c.Robot.Position)
	if !ok {
		return nil
	}
	return &r
}

// SetMemory writes a coordination value if memory was provided.
func (c Common) SetMemory(key string, v any) {
	if c.Memory != nil {
		c.Memory[key] = v
	}
}

// Shape is a debug annotation drawn by an external visualizer.
type Shape struct {
	ID     string       `json:"id"`
	Label  string       `json:"label,omitempty"`
	Points []geom.Point `json:"points"`
	Radius float64      `json:"radius,omitempty"`
}

// DebugSink receives best-effort annotations. Implementations must not block.
type DebugSink interface {
	DrawShapes(robotID int, shapes ...Shape)
}

// Draw forwards shapes to the debug sink if there is one.
func (c Common) Draw(shapes ...Shape) {
	if c.Debug != nil {
		c.Debug.DrawShapes(c.Robot.ID, shapes...)
	}
}
