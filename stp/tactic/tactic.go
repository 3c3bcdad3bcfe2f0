// Package tactic holds the single-robot behavior units a play hands to the
// robot allocator. The set of tactics is closed: CreaseDefender, PassDefender
// and Stop.
package tactic

import (
	"github.com/nstehr/vimy/vimy-stp/stp"
)

// Tactic is stepped once per tick with the robot it was matched to.
type Tactic interface {
	Name() string
	Update(c stp.Common)
	// Stop parks the tactic when no robot was matched to it this tick.
	Stop()
	// State names the current state for logs and tests.
	State() string
	tactic()
}

// Priority is an ordered set of buckets; bucket 0 has first claim on robots.
type Priority [][]Tactic

// Len counts the tactics across all buckets.
func (p Priority) Len() int {
	n := 0
	for _, bucket := range p {
		n += len(bucket)
	}
	return n
}

// assignment tracks which robot last stepped a tactic so latched state can be
// dropped on reassignment when configured to.
type assignment struct {
	resetOnReassign bool
	robotID         int
	assigned        bool
}

// reassigned records robotID and reports whether latched state must be reset.
func (a *assignment) reassigned(robotID int) bool {
	changed := a.assigned && a.robotID != robotID
	a.robotID = robotID
	a.assigned = true
	return changed && a.resetOnReassign
}
