// Package scenario replays scripted world snapshots through the agent and
// checks expr expectations after each tick.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"gopkg.in/yaml.v3"

	"github.com/nstehr/vimy/vimy-stp/agent"
	"github.com/nstehr/vimy/vimy-stp/model"
	"github.com/nstehr/vimy/vimy-stp/primitive"
)

// ErrExpectation is wrapped by Run when at least one expectation was false.
var ErrExpectation = errors.New("scenario expectation failed")

type Scenario struct {
	Name string `yaml:"name"`
	// Play pins a play by name; empty means follow the referee command.
	Play string `yaml:"play"`
	// Field is applied to steps whose world carries no field.
	Field *model.Field `yaml:"field"`
	Steps []Step       `yaml:"steps"`
}

// Step feeds one world snapshot, Repeat times, and checks Expect after the
// last repetition.
type Step struct {
	World  model.World `yaml:"world"`
	Repeat int         `yaml:"repeat"`
	Expect []string    `yaml:"expect"`

	programs []*vm.Program
}

// Result records one evaluated expectation.
type Result struct {
	Step   int
	Tick   int
	Source string
	Passed bool
	Err    error
}

// Parse decodes a scenario and compiles its expectations.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal scenario: %w", err)
	}
	for i := range s.Steps {
		if err := s.Steps[i].compile(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}
	return &s, nil
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (st *Step) compile() error {
	st.programs = st.programs[:0]
	for _, src := range st.Expect {
		prog, err := expr.Compile(src, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return fmt.Errorf("compile expectation %q: %w", src, err)
		}
		st.programs = append(st.programs, prog)
	}
	return nil
}

// Options tune a replay. Pace sleeps between ticks so a visualizer can keep up.
type Options struct {
	Pace time.Duration
	// OnTick, when set, sees every tick's output before expectations run.
	OnTick func(tick int, play string, prims []primitive.Primitive)
}

// Run replays s through a. It stops early only when ctx is cancelled; failed
// expectations are collected and reported together.
func Run(ctx context.Context, s *Scenario, a *agent.Agent, opts Options) ([]Result, error) {
	var results []Result
	failed := 0
	for i, st := range s.Steps {
		w := st.World
		if w.Field == (model.Field{}) && s.Field != nil {
			w.Field = *s.Field
		}
		n := max(st.Repeat, 1)
		for r := 0; r < n; r++ {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			prims := a.Tick(w)
			if opts.OnTick != nil {
				opts.OnTick(w.Tick, playName(a), prims)
			}
			if r == n-1 {
				env := newEnv(w.Tick, a, prims)
				for j, prog := range st.programs {
					res := Result{Step: i, Tick: w.Tick, Source: st.Expect[j]}
					out, err := vm.Run(prog, env)
					if err != nil {
						res.Err = err
					} else {
						res.Passed, _ = out.(bool)
					}
					if !res.Passed {
						failed++
						slog.Warn("expectation failed", "scenario", s.Name, "step", i, "tick", w.Tick, "expect", res.Source, "error", res.Err)
					}
					results = append(results, res)
				}
			}
			w.Tick++
			if opts.Pace > 0 {
				if err := sleep(ctx, opts.Pace); err != nil {
					return results, err
				}
			}
		}
	}
	if failed > 0 {
		return results, fmt.Errorf("%s: %d of %d: %w", s.Name, failed, len(results), ErrExpectation)
	}
	return results, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
