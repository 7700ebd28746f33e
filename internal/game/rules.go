package game

import "fmt"

func (g *Game) checkIdle() error {
	if g.op != opNone {
		return fmt.Errorf("%w: %s in progress", ErrConcurrentOperation, g.op)
	}
	return nil
}

func (g *Game) checkTurn(p Player) error {
	if p != g.Active() {
		return fmt.Errorf("%w: %s to move, not %s", ErrOutOfTurn, g.Active(), p)
	}
	return nil
}

func (g *Game) checkLive() error {
	if g.result.Terminal() {
		return fmt.Errorf("%w: game is over (%s)", ErrIllegalMove, g.result)
	}
	return nil
}

func (g *Game) checkNoPreview() error {
	switch {
	case g.inHand != nil:
		return fmt.Errorf("%w: a stone is in hand", ErrIllegalMove)
	case g.grab != nil:
		return fmt.Errorf("%w: a stack move is in progress", ErrIllegalMove)
	}
	return nil
}

// samePool reports whether two kinds draw from the same reserve pool.
func samePool(a, b StoneKind) bool { return (a == Cap) == (b == Cap) }

func (g *Game) checkMove(p Player, m Move) error {
	if err := g.checkIdle(); err != nil {
		return err
	}
	if err := g.checkTurn(p); err != nil {
		return err
	}
	if err := g.checkLive(); err != nil {
		return err
	}
	switch mv := m.(type) {
	case *PlacementMove:
		return g.checkPlacement(p, mv)
	case *StackMove:
		return g.checkStackMove(p, mv)
	case nil:
		return fmt.Errorf("%w: nil move", ErrIllegalMove)
	}
	return fmt.Errorf("%w: unknown move type %T", ErrIllegalMove, m)
}

func (g *Game) checkPlacement(p Player, mv *PlacementMove) error {
	if g.grab != nil {
		return fmt.Errorf("%w: a stack move is in progress", ErrIllegalMove)
	}
	if mv.Executed() {
		return fmt.Errorf("%w: %s is already executed", ErrIllegalMove, mv)
	}
	if !g.bits.IsOnBoard(mv.Target) {
		return fmt.Errorf("%w: %s is off the board", ErrIllegalMove, mv.Target)
	}
	if g.bits.StackHeight(mv.Target) != 0 {
		return fmt.Errorf("%w: %s is occupied", ErrIllegalMove, mv.Target)
	}
	if mv.Stone != nil && mv.Stone.Owner != PlayerNone && mv.Stone.Owner != p {
		return fmt.Errorf("%w: stone %v belongs to %s", ErrIllegalMove, mv.Stone, mv.Stone.Owner)
	}
	kind := mv.Kind()
	avail := g.reserves[p.idx()].AvailableCount(kind)
	if g.inHand != nil {
		if mv.Stone != nil && mv.Stone.ID != AnonymousID && mv.Stone.ID != g.inHand.ID {
			return fmt.Errorf("%w: stone %v is in hand", ErrIllegalMove, g.inHand)
		}
		if samePool(kind, g.inHand.Kind) {
			avail++
		}
	} else if mv.Stone != nil && mv.Stone.ID != AnonymousID && !g.reserves[p.idx()].Holds(kind, mv.Stone.ID) {
		return fmt.Errorf("%w: stone %d not in reserve", ErrIllegalMove, mv.Stone.ID)
	}
	if avail == 0 {
		return fmt.Errorf("%w: no %s stones left", ErrIllegalMove, kind)
	}
	return nil
}

func (g *Game) checkStackMove(p Player, mv *StackMove) error {
	if g.inHand != nil {
		return fmt.Errorf("%w: a stone is in hand", ErrIllegalMove)
	}
	if g.grab != nil {
		if mv != g.grab {
			return fmt.Errorf("%w: another stack move is in progress", ErrIllegalMove)
		}
		if mv.State() != StackComplete {
			return fmt.Errorf("%w: %d stones still held", ErrIllegalMove, mv.Held())
		}
	} else if mv.Executed() || mv.grabbed != nil {
		return fmt.Errorf("%w: %s is already executed", ErrIllegalMove, mv)
	}
	return g.bits.CheckStack(mv, p)
}

// CanMakeMove reports whether p may play m now.
func (g *Game) CanMakeMove(p Player, m Move) bool { return g.checkMove(p, m) == nil }

func (g *Game) checkDraw(p Player, kind StoneKind) error {
	if err := g.checkIdle(); err != nil {
		return err
	}
	if err := g.checkTurn(p); err != nil {
		return err
	}
	if err := g.checkLive(); err != nil {
		return err
	}
	if err := g.checkNoPreview(); err != nil {
		return err
	}
	if g.reserves[p.idx()].AvailableCount(kind) == 0 {
		return fmt.Errorf("%w: no %s stones left", ErrIllegalMove, kind)
	}
	return nil
}

// CanDrawStone reports whether p may take a stone of kind into hand.
func (g *Game) CanDrawStone(p Player, kind StoneKind) bool { return g.checkDraw(p, kind) == nil }

func (g *Game) checkGrab(p Player, cell Coord, count int) error {
	if err := g.checkIdle(); err != nil {
		return err
	}
	if err := g.checkTurn(p); err != nil {
		return err
	}
	if err := g.checkLive(); err != nil {
		return err
	}
	if err := g.checkNoPreview(); err != nil {
		return err
	}
	if !g.bits.IsOnBoard(cell) {
		return fmt.Errorf("%w: %s is off the board", ErrIllegalMove, cell)
	}
	st := g.objects.At(cell)
	if st.Owner() != p {
		return fmt.Errorf("%w: %s is not controlled by %s", ErrIllegalMove, cell, p)
	}
	if count < 1 || count > st.Height() || count > g.proto.Size {
		return fmt.Errorf("%w: cannot carry %d stones from %s", ErrIllegalMove, count, cell)
	}
	return nil
}

// CanGrabStack reports whether p may lift count stones from cell.
func (g *Game) CanGrabStack(p Player, cell Coord, count int) bool {
	return g.checkGrab(p, cell, count) == nil
}

func (g *Game) checkDropStack(p Player, cell Coord, count int) error {
	if err := g.checkIdle(); err != nil {
		return err
	}
	if err := g.checkTurn(p); err != nil {
		return err
	}
	mv := g.grab
	if mv == nil {
		return fmt.Errorf("%w: no stack in hand", ErrIllegalMove)
	}
	if mv.held == 0 {
		return fmt.Errorf("%w: every grabbed stone is already dropped", ErrIllegalMove)
	}
	dir := mv.Dir
	if len(mv.dropped) == 0 {
		dir = mv.Start.DirectionTo(cell)
		if dir == DirNone {
			return fmt.Errorf("%w: %s is not next to %s", ErrIllegalMove, cell, mv.Start)
		}
	}
	if want := mv.Start.Step(dir, len(mv.dropped)+1); cell != want {
		return fmt.Errorf("%w: next drop must be on %s, not %s", ErrIllegalMove, want, cell)
	}
	if !g.bits.IsOnBoard(cell) {
		return fmt.Errorf("%w: %s is off the board", ErrIllegalMove, cell)
	}
	if count < 1 || count > mv.held {
		return fmt.Errorf("%w: cannot drop %d of %d held", ErrIllegalMove, count, mv.held)
	}
	// cells ahead of the carried pile are untouched, so the bit board still
	// describes them
	top := mv.grabbed[len(mv.grabbed)-1].Kind
	return g.bits.checkDrop(cell, count, count == mv.held, top)
}

// CanDropStack reports whether p may drop count held stones onto cell.
func (g *Game) CanDropStack(p Player, cell Coord, count int) bool {
	return g.checkDropStack(p, cell, count) == nil
}

func (g *Game) checkUndo(p Player) error {
	if err := g.checkIdle(); err != nil {
		return err
	}
	if err := g.checkNoPreview(); err != nil {
		return err
	}
	if len(g.executed) == 0 {
		return fmt.Errorf("%w: nothing to undo", ErrIllegalMove)
	}
	last := moverOf(len(g.executed) - 1)
	// the human facing an engine may take back the engine's reply
	if p != last && !(p == g.Active() && g.IsAI(last)) {
		return fmt.Errorf("%w: %s made the last move, not %s", ErrOutOfTurn, last, p)
	}
	return nil
}

// CanUndo reports whether p may take back the last move.
func (g *Game) CanUndo(p Player) bool { return g.checkUndo(p) == nil }

func (g *Game) checkRedo(p Player) error {
	if err := g.checkIdle(); err != nil {
		return err
	}
	if err := g.checkNoPreview(); err != nil {
		return err
	}
	if len(g.reverted) == 0 {
		return fmt.Errorf("%w: nothing to redo", ErrIllegalMove)
	}
	return g.checkTurn(p)
}

// CanRedo reports whether p may replay the last undone move.
func (g *Game) CanRedo(p Player) bool { return g.checkRedo(p) == nil }

func (g *Game) checkAbort(p Player) error {
	if err := g.checkIdle(); err != nil {
		return err
	}
	if g.inHand == nil && g.grab == nil {
		return fmt.Errorf("%w: nothing to abort", ErrIllegalMove)
	}
	return g.checkTurn(p)
}

// CanAbort reports whether p may cancel the interactive move in progress.
func (g *Game) CanAbort(p Player) bool { return g.checkAbort(p) == nil }
