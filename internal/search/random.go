// Package search holds the move choosers plugged into game.RequestMove.
package search

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/crasshacker/STak-sub000/internal/game"
)

// RandomChooser plays a uniformly random legal move, taking an immediate
// win when one exists.
type RandomChooser struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom creates a chooser with a fixed seed.
func NewRandom(seed int64) *RandomChooser {
	return &RandomChooser{rng: rand.New(rand.NewSource(seed))}
}

func (c *RandomChooser) intn(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.Intn(n)
}

func (c *RandomChooser) ChooseMove(ctx context.Context, s *game.Snapshot) (game.Move, error) {
	moves := s.LegalMoves()
	if len(moves) == 0 {
		return nil, fmt.Errorf("%w: no legal moves", game.ErrIllegalMove)
	}
	me := s.Active()
	for _, m := range moves {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.Play(m); err != nil {
			return nil, err
		}
		r := s.Result()
		if err := s.Unplay(m); err != nil {
			return nil, err
		}
		if r.Terminal() && r.Winner == me {
			return m, nil
		}
	}
	return moves[c.intn(len(moves))], nil
}
