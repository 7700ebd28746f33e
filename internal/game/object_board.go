// File game/object_board.go
package game

import "fmt"

// ObjectBoard is the size×size grid of stacks holding real stone identities.
// It is the ground truth used for display and inspection.
type ObjectBoard struct {
	size   int
	stacks []*Stack
}

// NewObjectBoard creates an empty board.
func NewObjectBoard(size int) *ObjectBoard {
	b := &ObjectBoard{size: size, stacks: make([]*Stack, size*size)}
	for i := range b.stacks {
		b.stacks[i] = &Stack{Coord: CoordOf(i, size)}
	}
	return b
}

func (b *ObjectBoard) Size() int { return b.size }

// InBounds reports whether c lies on the board.
func (b *ObjectBoard) InBounds(c Coord) bool {
	return c.File >= 0 && c.File < b.size && c.Rank >= 0 && c.Rank < b.size
}

// At returns the stack at c. Callers must check bounds.
func (b *ObjectBoard) At(c Coord) *Stack { return b.stacks[c.Index(b.size)] }

// Stacks returns all stacks in index order.
func (b *ObjectBoard) Stacks() []*Stack { return b.stacks }

// Clone deep-copies the board, including the stones.
func (b *ObjectBoard) Clone() *ObjectBoard {
	nb := &ObjectBoard{size: b.size, stacks: make([]*Stack, len(b.stacks))}
	for i, s := range b.stacks {
		nb.stacks[i] = s.clone()
	}
	return nb
}

// Apply executes a complete move.
func (b *ObjectBoard) Apply(m Move) error {
	switch mv := m.(type) {
	case *PlacementMove:
		return b.applyPlacement(mv)
	case *StackMove:
		if err := b.grab(mv); err != nil {
			return err
		}
		for mv.State() != StackComplete {
			if err := b.dropNext(mv, mv.dropCounts[len(mv.dropped)]); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%w: unknown move type %T", ErrIllegalMove, m)
}

// Unapply reverts a complete move.
func (b *ObjectBoard) Unapply(m Move) error {
	switch mv := m.(type) {
	case *PlacementMove:
		st := b.At(mv.Target)
		if st.Height() != 1 || !st.Top().Equal(mv.Stone) {
			return fmt.Errorf("%w: %s does not hold %v", ErrIllegalMove, mv.Target, mv.Stone)
		}
		st.take(1)
		mv.executed = false
		return nil
	case *StackMove:
		for len(mv.dropped) > 0 {
			b.undropLast(mv)
		}
		b.ungrab(mv)
		return nil
	}
	return fmt.Errorf("%w: unknown move type %T", ErrIllegalMove, m)
}

func (b *ObjectBoard) applyPlacement(mv *PlacementMove) error {
	if mv.Stone == nil {
		return fmt.Errorf("%w: placement without a stone", ErrIllegalMove)
	}
	st := b.At(mv.Target)
	if !st.IsEmpty() {
		return fmt.Errorf("%w: %s is occupied", ErrIllegalMove, mv.Target)
	}
	st.push(mv.Stone)
	mv.executed = true
	return nil
}

// grab lifts the top Count stones of the start cell into the move.
func (b *ObjectBoard) grab(mv *StackMove) error {
	if mv.grabbed != nil {
		return fmt.Errorf("%w: stack already grabbed", ErrIllegalMove)
	}
	st := b.At(mv.Start)
	if mv.Count < 1 || mv.Count > st.Height() {
		return fmt.Errorf("%w: cannot grab %d from %s", ErrIllegalMove, mv.Count, mv.Start)
	}
	mv.grabbed = st.take(mv.Count)
	mv.dropped = mv.dropped[:0]
	mv.held = mv.Count
	return nil
}

// ungrab returns whatever is still held to the start cell.
func (b *ObjectBoard) ungrab(mv *StackMove) {
	if mv.grabbed == nil {
		return
	}
	b.At(mv.Start).push(mv.grabbed[mv.Count-mv.held:]...)
	mv.grabbed = nil
	mv.held = 0
	mv.executed = false
}

// dropNext drops n stones from the bottom of the held pile onto the next cell.
func (b *ObjectBoard) dropNext(mv *StackMove, n int) error {
	if n < 1 || n > mv.held {
		return fmt.Errorf("%w: cannot drop %d of %d held", ErrIllegalMove, n, mv.held)
	}
	cell := mv.Start.Step(mv.Dir, len(mv.dropped)+1)
	if !b.InBounds(cell) {
		return fmt.Errorf("%w: %s is off the board", ErrIllegalMove, cell)
	}
	st := b.At(cell)
	from := mv.Count - mv.held
	pile := mv.grabbed[from : from+n]

	rec := dropRecord{cell: cell, count: n}
	if top := st.Top(); top != nil && top.Kind == Standing {
		// the flattened stone is replaced by a flat copy with the same identity
		rec.flattened = top
		flat := *top
		flat.Kind = Flat
		st.Stones[len(st.Stones)-1] = &flat
		mv.flattened = top
	}
	st.push(pile...)
	mv.held -= n
	mv.dropped = append(mv.dropped, rec)
	if mv.held == 0 {
		mv.executed = true
		if rec.flattened == nil {
			mv.flattened = nil
		}
	}
	return nil
}

// undropLast lifts the most recent drop back into the held pile.
func (b *ObjectBoard) undropLast(mv *StackMove) {
	rec := mv.dropped[len(mv.dropped)-1]
	st := b.At(rec.cell)
	st.take(rec.count)
	if rec.flattened != nil {
		st.Stones[len(st.Stones)-1] = rec.flattened
	}
	mv.dropped = mv.dropped[:len(mv.dropped)-1]
	mv.held += rec.count
	mv.executed = false
}

// String renders the board top rank first, listing each stack bottom to top.
func (b *ObjectBoard) String() string {
	out := ""
	for r := b.size - 1; r >= 0; r-- {
		for f := 0; f < b.size; f++ {
			st := b.At(Coord{f, r})
			cell := "."
			if !st.IsEmpty() {
				cell = ""
				for _, s := range st.Stones {
					cell += stoneGlyph(s)
				}
			}
			out += fmt.Sprintf("%-6s", cell)
		}
		out += "\n"
	}
	return out
}

func stoneGlyph(s *Stone) string {
	g := "1"
	if s.Owner == PlayerTwo {
		g = "2"
	}
	switch s.Kind {
	case Standing:
		g += "S"
	case Cap:
		g += "C"
	}
	return g
}
