// Package primitive defines the per-robot motion command handed to the
// dispatch layer at the end of every tick.
package primitive

import "github.com/nstehr/vimy/vimy-stp/geom"

type DribblerMode string

const (
	DribblerOff      DribblerMode = "off"
	DribblerMaxForce DribblerMode = "max_force"
)

type ChipKickMode string

const (
	ChipKickOff ChipKickMode = "off"
	AutoChip    ChipKickMode = "auto_chip"
	AutoKick    ChipKickMode = "auto_kick"
)

// AutoChipOrKick arms the kicker; Distance is the chip distance or kick speed.
type AutoChipOrKick struct {
	Mode     ChipKickMode `json:"mode"`
	Distance float64      `json:"distance"`
}

type ObstacleAvoidance string

const (
	AvoidanceSafe       ObstacleAvoidance = "safe"
	AvoidanceAggressive ObstacleAvoidance = "aggressive"
)

type SpeedMode string

const (
	SpeedPhysicalLimit SpeedMode = "physical_limit"
	SpeedStopCommand   SpeedMode = "stop_command"
)

// Primitive is one robot's command for one tick.
type Primitive struct {
	RobotID        int               `json:"robotId"`
	Stop           bool              `json:"stop,omitempty"`
	Destination    geom.Point        `json:"destination"`
	Orientation    float64           `json:"orientation"`
	FinalSpeed     float64           `json:"finalSpeed"`
	Dribbler       DribblerMode      `json:"dribbler"`
	AvoidBall      bool              `json:"avoidBall"`
	Avoidance      ObstacleAvoidance `json:"avoidance"`
	MaxSpeed       SpeedMode         `json:"maxSpeed"`
	AutoChipOrKick AutoChipOrKick    `json:"autoChipOrKick"`
}

// NewStop returns the primitive that brings a robot to rest.
func NewStop(robotID int) Primitive {
	return Primitive{
		RobotID:        robotID,
		Stop:           true,
		Dribbler:       DribblerOff,
		Avoidance:      AvoidanceSafe,
		MaxSpeed:       SpeedPhysicalLimit,
		AutoChipOrKick: AutoChipOrKick{Mode: ChipKickOff},
	}
}

// Sink receives primitives as tactics emit them.
type Sink interface {
	SetPrimitive(p Primitive)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(p Primitive)

func (f SinkFunc) SetPrimitive(p Primitive) { f(p) }

// Set collects one primitive per robot for a tick; a later write for the same
// robot replaces the earlier one.
type Set struct {
	order []int
	byID  map[int]Primitive
}

func NewSet() *Set {
	return &Set{byID: make(map[int]Primitive)}
}

func (s *Set) SetPrimitive(p Primitive) {
	if _, ok := s.byID[p.RobotID]; !ok {
		s.order = append(s.order, p.RobotID)
	}
	s.byID[p.RobotID] = p
}

// Get returns the primitive recorded for a robot.
func (s *Set) Get(robotID int) (Primitive, bool) {
	p, ok := s.byID[robotID]
	return p, ok
}

func (s *Set) Len() int { return len(s.order) }

// All returns the primitives in first-write order.
func (s *Set) All() []Primitive {
	out := make([]Primitive, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}
