package game

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// UndoOutcome describes a completed undo.
type UndoOutcome struct {
	Move Move
	// SuppressAutoMove is set when the undo hands the turn to an engine
	// seat, which must not immediately replay.
	SuppressAutoMove bool
}

// InitiateMove validates m and marks it outstanding. hint is the animation
// time the caller expects before calling CompleteMove.
func (g *Game) InitiateMove(p Player, m Move, hint time.Duration) error {
	g.Poll()
	if err := g.checkMove(p, m); err != nil {
		return err
	}
	g.op, g.opBy, g.pending = opMove, p, m
	g.emit(Event{Kind: EventMoveInitiated, Player: p, Move: m, Cells: m.Cells(), Duration: hint})
	return nil
}

// CompleteMove executes the outstanding move on both boards.
func (g *Game) CompleteMove() error {
	if g.op != opMove {
		return fmt.Errorf("%w: no move initiated", ErrIllegalMove)
	}
	p, m := g.opBy, g.pending
	g.op, g.opBy, g.pending = opNone, PlayerNone, nil
	if err := g.checkMove(p, m); err != nil {
		return err
	}

	if pm, ok := m.(*PlacementMove); ok && g.inHand != nil {
		anon := pm.Stone == nil || pm.Stone.ID == AnonymousID
		if anon && samePool(pm.Kind(), g.inHand.Kind) {
			pm.Stone = &Stone{ID: g.inHand.ID, Kind: pm.Kind()}
		}
	}
	if err := g.revertPreview(); err != nil {
		return err
	}
	if err := g.executeMove(m, false); err != nil {
		return err
	}
	g.reverted = nil
	ended := g.justEnded()

	if g.started && !g.completed {
		g.timer.Moved(p)
	}
	if pm, ok := m.(*PlacementMove); ok {
		g.emit(Event{Kind: EventStonePlaced, Player: p, Move: m, Stone: pm.Stone, Cells: m.Cells()})
	}
	g.emit(Event{Kind: EventMoveCompleted, Player: p, Move: m, Cells: m.Cells(), Result: g.result})
	g.emit(Event{Kind: EventMoveTracked, Player: p, Move: m})
	g.emit(Event{Kind: EventTurnCompleted, Player: p})
	g.finishTurn(ended)
	return nil
}

// MakeMove initiates and completes m with no animation.
func (g *Game) MakeMove(p Player, m Move) error {
	if err := g.InitiateMove(p, m, 0); err != nil {
		return err
	}
	return g.CompleteMove()
}

// InitiateUndo validates and marks an undo outstanding.
func (g *Game) InitiateUndo(p Player, hint time.Duration) error {
	g.Poll()
	if err := g.checkUndo(p); err != nil {
		return err
	}
	g.op, g.opBy = opUndo, p
	m := g.executed[len(g.executed)-1]
	g.emit(Event{Kind: EventUndoInitiated, Player: p, Move: m, Cells: m.Cells(), Duration: hint})
	return nil
}

// CompleteUndo reverts the last move. The turn passes back to its mover.
func (g *Game) CompleteUndo() (UndoOutcome, error) {
	if g.op != opUndo {
		return UndoOutcome{}, fmt.Errorf("%w: no undo initiated", ErrIllegalMove)
	}
	p := g.opBy
	g.op, g.opBy = opNone, PlayerNone
	if err := g.checkUndo(p); err != nil {
		return UndoOutcome{}, err
	}
	m, err := g.undoMove()
	if err != nil {
		return UndoOutcome{}, err
	}
	if g.started && !g.completed {
		g.timer.Start(g.Active())
	}
	if pm, ok := m.(*PlacementMove); ok {
		g.emit(Event{Kind: EventStoneReturned, Player: pm.Stone.Owner, Stone: pm.Stone, Cells: m.Cells()})
	}
	g.emit(Event{Kind: EventUndoCompleted, Player: p, Move: m, Cells: m.Cells(), Result: g.result})
	g.emit(Event{Kind: EventTurnStarted, Player: g.Active()})
	return UndoOutcome{Move: m, SuppressAutoMove: g.IsAI(g.Active())}, nil
}

// Undo initiates and completes an undo.
func (g *Game) Undo(p Player) (UndoOutcome, error) {
	if err := g.InitiateUndo(p, 0); err != nil {
		return UndoOutcome{}, err
	}
	return g.CompleteUndo()
}

// InitiateRedo validates and marks a redo outstanding.
func (g *Game) InitiateRedo(p Player, hint time.Duration) error {
	g.Poll()
	if err := g.checkRedo(p); err != nil {
		return err
	}
	g.op, g.opBy = opRedo, p
	m := g.reverted[len(g.reverted)-1]
	g.emit(Event{Kind: EventRedoInitiated, Player: p, Move: m, Cells: m.Cells(), Duration: hint})
	return nil
}

// CompleteRedo replays the most recently undone move.
func (g *Game) CompleteRedo() (Move, error) {
	if g.op != opRedo {
		return nil, fmt.Errorf("%w: no redo initiated", ErrIllegalMove)
	}
	p := g.opBy
	g.op, g.opBy = opNone, PlayerNone
	if err := g.checkRedo(p); err != nil {
		return nil, err
	}
	m, err := g.redoMove()
	if err != nil {
		return nil, err
	}
	ended := g.justEnded()
	if g.started && !g.completed {
		g.timer.Start(g.Active())
	}
	g.emit(Event{Kind: EventRedoCompleted, Player: p, Move: m, Cells: m.Cells(), Result: g.result})
	g.emit(Event{Kind: EventTurnCompleted, Player: p})
	g.finishTurn(ended)
	return m, nil
}

// Redo initiates and completes a redo.
func (g *Game) Redo(p Player) (Move, error) {
	if err := g.InitiateRedo(p, 0); err != nil {
		return nil, err
	}
	return g.CompleteRedo()
}

// InitiateAbort marks the cancellation of an interactive move outstanding.
func (g *Game) InitiateAbort(p Player, hint time.Duration) error {
	g.Poll()
	if err := g.checkAbort(p); err != nil {
		return err
	}
	g.op, g.opBy = opAbort, p
	g.emit(Event{Kind: EventAbortInitiated, Player: p, Stone: g.inHand, Cells: g.previewCells(), Duration: hint})
	return nil
}

// CompleteAbort returns a drawn stone to the reserve or a grabbed stack to
// its cell.
func (g *Game) CompleteAbort() error {
	if g.op != opAbort {
		return fmt.Errorf("%w: no abort initiated", ErrIllegalMove)
	}
	p := g.opBy
	g.op, g.opBy = opNone, PlayerNone
	if err := g.checkAbort(p); err != nil {
		return err
	}
	stone, cells := g.inHand, g.previewCells()
	if err := g.revertPreview(); err != nil {
		return err
	}
	g.check()
	if stone != nil {
		g.emit(Event{Kind: EventStoneReturned, Player: p, Stone: stone})
	}
	g.emit(Event{Kind: EventAbortCompleted, Player: p, Cells: cells})
	return nil
}

// Abort initiates and completes an abort.
func (g *Game) Abort(p Player) error {
	if err := g.InitiateAbort(p, 0); err != nil {
		return err
	}
	return g.CompleteAbort()
}

// DrawStone takes a stone of kind from p's reserve into hand. It is placed
// by a PlacementMove or handed back by Abort.
func (g *Game) DrawStone(p Player, kind StoneKind) (*Stone, error) {
	g.Poll()
	if err := g.checkDraw(p, kind); err != nil {
		return nil, err
	}
	s, err := g.reserves[p.idx()].Draw(kind, AnonymousID)
	if err != nil {
		return nil, err
	}
	g.inHand = s
	g.emit(Event{Kind: EventStoneDrawn, Player: p, Stone: s})
	return s, nil
}

// GrabStack lifts count stones off cell. Only the object board changes until
// the move is committed.
func (g *Game) GrabStack(p Player, cell Coord, count int) error {
	g.Poll()
	if err := g.checkGrab(p, cell, count); err != nil {
		return err
	}
	mv := newGrab(cell, count)
	if err := g.objects.grab(mv); err != nil {
		return err
	}
	g.grab = mv
	g.emit(Event{Kind: EventStackGrabbed, Player: p, Move: mv, Cells: []Coord{cell}})
	return nil
}

// DropStack drops count held stones on cell, the next cell along the path.
// The first drop fixes the direction. It reports whether every grabbed stone
// has been dropped; the move is then committed with MakeMove(p, InFlight()).
func (g *Game) DropStack(p Player, cell Coord, count int) (bool, error) {
	g.Poll()
	if err := g.checkDropStack(p, cell, count); err != nil {
		return false, err
	}
	mv := g.grab
	if len(mv.dropped) == 0 {
		mv.Dir = mv.Start.DirectionTo(cell)
	}
	mv.dropCounts = append(mv.dropCounts, count)
	if err := g.objects.dropNext(mv, count); err != nil {
		mv.dropCounts = mv.dropCounts[:len(mv.dropCounts)-1]
		if len(mv.dropped) == 0 {
			mv.Dir = DirNone
		}
		return false, err
	}
	g.emit(Event{Kind: EventStackDropped, Player: p, Move: mv, Cells: []Coord{cell}})
	return mv.State() == StackComplete, nil
}

// SetCurrentTurn undoes or redoes quietly until ply moves are executed, then
// reports every touched cell in one event.
func (g *Game) SetCurrentTurn(ply int) error {
	g.Poll()
	if err := g.checkIdle(); err != nil {
		return err
	}
	if err := g.checkNoPreview(); err != nil {
		return err
	}
	if ply < 0 || ply > len(g.executed)+len(g.reverted) {
		return fmt.Errorf("%w: turn %d outside [0,%d]", ErrIllegalMove, ply, len(g.executed)+len(g.reverted))
	}
	touched := make(map[Coord]struct{})
	mark := func(m Move) {
		for _, c := range m.Cells() {
			touched[c] = struct{}{}
		}
	}

	g.quiet = true
	var err error
	for err == nil && len(g.executed) > ply {
		var m Move
		if m, err = g.undoMove(); err == nil {
			mark(m)
		}
	}
	for err == nil && len(g.executed) < ply {
		var m Move
		if m, err = g.redoMove(); err == nil {
			mark(m)
		}
	}
	g.quiet = false
	if err != nil {
		return err
	}
	ended := g.justEnded()
	if g.started && !g.completed {
		g.timer.Start(g.Active())
	}
	g.log.Debug("current turn set", zap.Int("ply", ply), zap.Int("touched", len(touched)))
	g.emit(Event{Kind: EventCurrentTurnSet, Player: g.Active(), Cells: g.sortedCells(touched), Result: g.result})
	if ended {
		g.emit(Event{Kind: EventGameCompleted, Player: g.final.Winner, Result: g.final})
	}
	return nil
}

// HandleTimeout ends the game in favour of p's opponent. It is a no-op once
// the game is over.
func (g *Game) HandleTimeout(p Player) {
	if g.completed {
		return
	}
	mover := PlayerNone
	if len(g.executed) > 0 {
		mover = moverOf(len(g.executed) - 1)
	}
	g.result = Evaluate(g.bits, g.left(), mover, p)
	g.complete()
	g.endAnnounced = true
	g.log.Info("player timed out", zap.Stringer("player", p))
	g.emit(Event{Kind: EventTimedOut, Player: p, Result: g.result})
	g.emit(Event{Kind: EventGameCompleted, Player: g.result.Winner, Result: g.result})
}

// justEnded reports, once, that the game reached its final result.
func (g *Game) justEnded() bool {
	if g.completed && !g.endAnnounced {
		g.endAnnounced = true
		return true
	}
	return false
}

func (g *Game) finishTurn(ended bool) {
	if ended {
		g.emit(Event{Kind: EventGameCompleted, Player: g.final.Winner, Result: g.final})
		return
	}
	if !g.result.Terminal() {
		g.emit(Event{Kind: EventTurnStarted, Player: g.Active()})
	}
}

func (g *Game) previewCells() []Coord {
	if g.grab == nil {
		return nil
	}
	return g.grab.Cells()[:len(g.grab.dropped)+1]
}
