package tactic

import (
	"github.com/nstehr/vimy/vimy-stp/primitive"
	"github.com/nstehr/vimy/vimy-stp/stp"
)

// StopTactic brings its robot to rest.
type StopTactic struct{}

func NewStop() *StopTactic { return &StopTactic{} }

func (*StopTactic) Name() string  { return "stop" }
func (*StopTactic) State() string { return "stopped" }
func (*StopTactic) Stop()         {}
func (*StopTactic) tactic()       {}

func (*StopTactic) Update(c stp.Common) {
	c.Emit(primitive.NewStop(c.Robot.ID))
}
