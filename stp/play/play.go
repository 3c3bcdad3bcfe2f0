// Package play holds the top-level behavior units. A play is stepped once per
// tick with the world and the number of robots it may use, and answers with a
// priority-ordered set of tactics for the robot allocator.
package play

import (
	"fmt"

	"github.com/nstehr/vimy/vimy-stp/config"
	"github.com/nstehr/vimy/vimy-stp/model"
	"github.com/nstehr/vimy/vimy-stp/stp/tactic"
)

// Play computes this tick's tactics. It never blocks and never fails: a play
// with nothing sensible to do returns empty buckets.
type Play interface {
	Kind() Kind
	Update(w *model.World, slots int) tactic.Priority
	play()
}

// Kind enumerates every play this engine can run.
type Kind int

const (
	KindHalt Kind = iota
	KindDefense
	KindEnemyFreeKick
	KindEnemyKickoff
)

func (k Kind) String() string {
	switch k {
	case KindHalt:
		return "halt"
	case KindDefense:
		return "defense"
	case KindEnemyFreeKick:
		return "enemy_free_kick"
	case KindEnemyKickoff:
		return "enemy_kickoff"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{KindHalt, KindDefense, KindEnemyFreeKick, KindEnemyKickoff} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown play %q", s)
}

// New builds a play of the given kind around a copy of cfg.
func New(kind Kind, cfg config.Config) Play {
	switch kind {
	case KindDefense:
		return NewDefense(cfg)
	case KindEnemyFreeKick:
		return NewEnemyFreeKick(cfg)
	case KindEnemyKickoff:
		return NewEnemyKickoff(cfg)
	default:
		return NewHalt()
	}
}

// ForGameState picks the play for a referee command. Anything unrecognised
// falls back to halting.
func ForGameState(gs model.GameState) Kind {
	switch gs.Command {
	case model.CommandEnemyFreeKick:
		return KindEnemyFreeKick
	case model.CommandEnemyKickoff:
		return KindEnemyKickoff
	case model.CommandPlaying, model.CommandStop:
		return KindDefense
	default:
		return KindHalt
	}
}
