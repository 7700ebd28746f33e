package game

import (
	"context"
	"fmt"
	"sync"
)

// Snapshot is a detached copy of a position. Searches play and unplay moves
// on it freely; the game it came from is unaffected.
type Snapshot struct {
	Bits *BitBoard
	// Objects is a copy of the object board when requested. Play does not
	// update it.
	Objects *ObjectBoard

	left [2]StoneCounts
	ply  int
}

// Snapshot copies the committed position. Interactive previews are not
// included.
func (g *Game) Snapshot(withObjects bool) *Snapshot {
	s := &Snapshot{Bits: g.bits.Clone(), ply: len(g.executed)}
	for i, r := range g.reserves {
		s.left[i] = StoneCounts{Flats: r.AvailableCount(Flat), Caps: r.AvailableCount(Cap)}
	}
	if g.inHand != nil {
		// the drawn stone is still part of the reserve
		if g.inHand.Kind == Cap {
			s.left[g.inHand.Owner.idx()].Caps++
		} else {
			s.left[g.inHand.Owner.idx()].Flats++
		}
	}
	if withObjects {
		s.Objects = g.objects.Clone()
		if g.grab != nil {
			unpreview(s.Objects, g.grab)
		}
	}
	return s
}

// unpreview takes an interactive stack move back on a copy of the board
// without touching the move itself.
func unpreview(b *ObjectBoard, mv *StackMove) {
	for k := len(mv.dropped) - 1; k >= 0; k-- {
		rec := mv.dropped[k]
		st := b.At(rec.cell)
		st.take(rec.count)
		if rec.flattened != nil {
			cp := *rec.flattened
			st.Stones[len(st.Stones)-1] = &cp
		}
	}
	start := b.At(mv.Start)
	for _, stone := range mv.grabbed {
		cp := *stone
		start.push(&cp)
	}
}

// LegalMoves lists every legal move in the committed position.
func (g *Game) LegalMoves() []Move { return g.Snapshot(false).LegalMoves() }

func (s *Snapshot) Size() int { return s.Bits.Size() }

func (s *Snapshot) Ply() int { return s.ply }

// Active is the player to move.
func (s *Snapshot) Active() Player { return moverOf(s.ply) }

// Available returns how many stones of kind p may still place.
func (s *Snapshot) Available(p Player, kind StoneKind) int {
	if kind == Cap {
		return s.left[p.idx()].Caps
	}
	return s.left[p.idx()].Flats
}

func (s *Snapshot) totals() [2]int {
	return [2]int{
		s.left[0].Flats + s.left[0].Caps,
		s.left[1].Flats + s.left[1].Caps,
	}
}

// Clone returns an independent copy.
func (s *Snapshot) Clone() *Snapshot {
	cp := *s
	cp.Bits = s.Bits.Clone()
	if s.Objects != nil {
		cp.Objects = s.Objects.Clone()
	}
	return &cp
}

// Result evaluates the position.
func (s *Snapshot) Result() GameResult {
	mover := PlayerNone
	if s.ply > 0 {
		mover = moverOf(s.ply - 1)
	}
	return Evaluate(s.Bits, s.totals(), mover, PlayerNone)
}

// Play applies m for the active player.
func (s *Snapshot) Play(m Move) error {
	p := s.Active()
	switch mv := m.(type) {
	case *PlacementMove:
		kind := mv.Kind()
		if s.Available(p, kind) == 0 {
			return fmt.Errorf("%w: no %s stones left", ErrIllegalMove, kind)
		}
		if mv.Stone == nil || mv.Stone.Owner == PlayerNone {
			mv.Stone = &Stone{ID: AnonymousID, Owner: p, Kind: kind}
		} else if mv.Stone.Owner != p {
			return fmt.Errorf("%w: stone %v belongs to %s", ErrIllegalMove, mv.Stone, mv.Stone.Owner)
		}
		if err := s.Bits.Apply(mv); err != nil {
			return err
		}
		s.adjust(p, kind, -1)
	case *StackMove:
		if err := s.Bits.CheckStack(mv, p); err != nil {
			return err
		}
		if err := s.Bits.Apply(mv); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown move type %T", ErrIllegalMove, m)
	}
	s.ply++
	return nil
}

// Unplay reverts the last move played on the snapshot.
func (s *Snapshot) Unplay(m Move) error {
	if s.ply == 0 {
		return fmt.Errorf("%w: nothing to unplay", ErrIllegalMove)
	}
	if err := s.Bits.Unapply(m); err != nil {
		return err
	}
	s.ply--
	if pm, ok := m.(*PlacementMove); ok {
		s.adjust(s.Active(), pm.Kind(), 1)
	}
	return nil
}

func (s *Snapshot) adjust(p Player, kind StoneKind, n int) {
	if kind == Cap {
		s.left[p.idx()].Caps += n
	} else {
		s.left[p.idx()].Flats += n
	}
}

// LegalMoves lists every legal move for the active player, placements first.
func (s *Snapshot) LegalMoves() []Move {
	if s.Result().Terminal() {
		return nil
	}
	b := s.Bits
	p := s.Active()
	size := b.Size()
	flats, caps := s.Available(p, Flat), s.Available(p, Cap)

	var stacks []Move
	moves := make([]Move, 0, 3*size*size)
	for i := 0; i < size*size; i++ {
		c := CoordOf(i, size)
		if b.Height[i] == 0 {
			if flats > 0 {
				moves = append(moves, NewPlacement(c, Flat), NewPlacement(c, Standing))
			}
			if caps > 0 {
				moves = append(moves, NewPlacement(c, Cap))
			}
			continue
		}
		if b.ownerOf(i) != p {
			continue
		}
		carry := min(int(b.Height[i]), size)
		for _, d := range Directions {
			reach := reachFrom(c, d, size)
			for n := 1; n <= carry; n++ {
				for _, drops := range dropSequences(n, reach) {
					mv := NewStackMove(c, d, drops...)
					if b.CheckStack(mv, p) == nil {
						stacks = append(stacks, mv)
					}
				}
			}
		}
	}
	return append(moves, stacks...)
}

// reachFrom is the number of cells between c and the edge in direction d.
func reachFrom(c Coord, d Direction, size int) int {
	switch d {
	case North:
		return size - 1 - c.Rank
	case South:
		return c.Rank
	case East:
		return size - 1 - c.File
	case West:
		return c.File
	}
	return 0
}

var (
	dropTable     [MaxBoardSize + 1][MaxBoardSize][][]int
	dropTableOnce sync.Once
)

// dropSequences returns every way to split n stones over at most maxLen
// consecutive cells, each cell receiving at least one.
func dropSequences(n, maxLen int) [][]int {
	if maxLen <= 0 {
		return nil
	}
	dropTableOnce.Do(func() {
		for n := 1; n <= MaxBoardSize; n++ {
			for l := 1; l < MaxBoardSize; l++ {
				dropTable[n][l] = compositions(n, l)
			}
		}
	})
	return dropTable[n][min(maxLen, MaxBoardSize-1)]
}

func compositions(n, maxLen int) [][]int {
	var out [][]int
	var walk func(left int, acc []int)
	walk = func(left int, acc []int) {
		if left == 0 {
			out = append(out, append([]int(nil), acc...))
			return
		}
		if len(acc) == maxLen {
			return
		}
		for d := 1; d <= left; d++ {
			walk(left-d, append(acc, d))
		}
	}
	walk(n, nil)
	return out
}

// MoveChooser picks a move for the active player of a snapshot. Choosers
// must return promptly with ctx.Err() once ctx is done.
type MoveChooser interface {
	ChooseMove(ctx context.Context, s *Snapshot) (Move, error)
}

// Choice is the outcome of an asynchronous move request.
type Choice struct {
	Player Player
	Move   Move
	Err    error
}

// RequestMove asks chooser for a move on a snapshot of the current position.
// The returned channel delivers exactly one Choice. The move is not played;
// the caller commits it with MakeMove.
func (g *Game) RequestMove(ctx context.Context, chooser MoveChooser) <-chan Choice {
	snap := g.Snapshot(false)
	p := snap.Active()
	out := make(chan Choice, 1)
	go func() {
		m, err := chooser.ChooseMove(ctx, snap)
		if err == nil && m == nil {
			err = fmt.Errorf("%w: chooser returned no move", ErrIllegalMove)
		}
		if m != nil {
			m = CloneMove(m)
		}
		out <- Choice{Player: p, Move: m, Err: err}
	}()
	return out
}
