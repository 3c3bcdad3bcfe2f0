package play

import (
	"github.com/nstehr/vimy/vimy-stp/model"
	"github.com/nstehr/vimy/vimy-stp/stp/tactic"
)

// Halt stops every robot it is given. It is also the fallback play.
type Halt struct {
	stops []tactic.Tactic
}

func NewHalt() *Halt { return &Halt{} }

func (*Halt) Kind() Kind { return KindHalt }
func (*Halt) play()      {}

func (h *Halt) Update(_ *model.World, slots int) tactic.Priority {
	for len(h.stops) < slots {
		h.stops = append(h.stops, tactic.NewStop())
	}
	if slots < 0 {
		slots = 0
	}
	return tactic.Priority{h.stops[:slots]}
}
