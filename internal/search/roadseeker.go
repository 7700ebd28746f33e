package search

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/crasshacker/STak-sub000/internal/game"
)

const winScore = 1_000_000

// RoadSeeker scores every legal move by how far it stretches the mover's
// widest road island, after ruling out moves that hand the opponent an
// immediate win. Root moves are spread over workers that each own a
// private copy of the position.
type RoadSeeker struct {
	// Workers defaults to a share of the CPUs in [2,8].
	Workers int
	// Replies enables the opponent reply check.
	Replies bool

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRoadSeeker creates a seeker with the reply check enabled.
func NewRoadSeeker(seed int64) *RoadSeeker {
	return &RoadSeeker{Replies: true, rng: rand.New(rand.NewSource(seed))}
}

func (r *RoadSeeker) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	n := (runtime.NumCPU() + 7) / 8
	if n%2 != 0 {
		n++
	}
	return min(max(n, 2), 8)
}

type scored struct {
	mv    game.Move
	score int
}

func (r *RoadSeeker) ChooseMove(ctx context.Context, s *game.Snapshot) (game.Move, error) {
	moves := s.LegalMoves()
	if len(moves) == 0 {
		return nil, fmt.Errorf("%w: no legal moves", game.ErrIllegalMove)
	}
	me := s.Active()

	type task struct {
		idx int
		mv  game.Move
	}
	tasks := make(chan task, len(moves))
	for i, m := range moves {
		tasks <- task{i, m}
	}
	close(tasks)

	results := make([]scored, len(moves))
	eg, ctx := errgroup.WithContext(ctx)
	for w := 0; w < r.workers(); w++ {
		eg.Go(func() error {
			local := s.Clone()
			for t := range tasks {
				if err := ctx.Err(); err != nil {
					return err
				}
				sc, err := r.score(ctx, local, t.mv, me)
				if err != nil {
					return err
				}
				results[t.idx] = scored{mv: t.mv, score: sc}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].score > results[j].score })
	best := 1
	for best < len(results) && results[best].score == results[0].score {
		best++
	}
	return results[r.intn(best)].mv, nil
}

func (r *RoadSeeker) intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(1))
	}
	return r.rng.Intn(n)
}

// score plays m on s, evaluates and restores s.
func (r *RoadSeeker) score(ctx context.Context, s *game.Snapshot, m game.Move, me game.Player) (_ int, err error) {
	if err := s.Play(m); err != nil {
		return 0, err
	}
	defer func() { err = multierr.Append(err, s.Unplay(m)) }()

	res := s.Result()
	if res.Terminal() {
		switch res.Winner {
		case me:
			return winScore, nil
		case game.PlayerNone:
			return 0, nil
		}
		return -winScore, nil
	}

	opp := me.Opponent()
	if r.Replies {
		for _, reply := range s.LegalMoves() {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			if err := s.Play(reply); err != nil {
				return 0, err
			}
			lost := s.Result().Winner == opp
			if err := s.Unplay(reply); err != nil {
				return 0, err
			}
			if lost {
				return -winScore / 2, nil
			}
		}
	}

	mine, theirs := res.ExtentsOf(me), res.ExtentsOf(opp)
	reach := max(mine.Files, mine.Ranks) - max(theirs.Files, theirs.Ranks)
	flats := s.Bits.FlatCount(me) - s.Bits.FlatCount(opp)
	return reach*10 + flats, nil
}
