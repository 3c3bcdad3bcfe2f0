// Package fsm runs ordered transition tables. Each step evaluates rows top to
// bottom and fires the first row whose source matches and whose guard passes.
package fsm

// Row is one (source, guard, action, destination) entry. A nil Guard always
// passes; a nil Action does nothing.
type Row[S comparable, E any] struct {
	From   S
	Guard  func(E) bool
	Action func(E)
	To     S
}

// Machine holds the current state and the table it steps through.
type Machine[S comparable, E any] struct {
	initial S
	state   S
	rows    []Row[S, E]
}

func New[S comparable, E any](initial S, rows ...Row[S, E]) *Machine[S, E] {
	return &Machine[S, E]{initial: initial, state: initial, rows: rows}
}

// State is the current state.
func (m *Machine[S, E]) State() S { return m.state }

// Is reports whether the machine is in s.
func (m *Machine[S, E]) Is(s S) bool { return m.state == s }

// Step fires at most one row. It returns false when no row matches, which
// leaves the state unchanged and is not an error.
func (m *Machine[S, E]) Step(ev E) bool {
	for _, r := range m.rows {
		if r.From != m.state {
			continue
		}
		if r.Guard != nil && !r.Guard(ev) {
			continue
		}
		if r.Action != nil {
			r.Action(ev)
		}
		m.state = r.To
		return true
	}
	return false
}

// Force moves the machine to s without running any action. Owners use it to
// park a unit that was not stepped this tick.
func (m *Machine[S, E]) Force(s S) { m.state = s }

// Reset returns the machine to its initial state.
func (m *Machine[S, E]) Reset() { m.state = m.initial }

// Not negates a guard.
func Not[E any](g func(E) bool) func(E) bool {
	return func(ev E) bool { return !g(ev) }
}
