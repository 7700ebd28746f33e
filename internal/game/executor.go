package game

import (
	"fmt"
	"sync"
)

// Executor applies, undoes and redoes moves against one board representation.
type Executor[B any] interface {
	Execute(b B, m Move) error
	Undo(b B, m Move) error
	Redo(b B, m Move) error
}

// ObjectExecutor drives the object board.
type ObjectExecutor struct{}

func (ObjectExecutor) Execute(b *ObjectBoard, m Move) error { return b.Apply(m) }
func (ObjectExecutor) Undo(b *ObjectBoard, m Move) error    { return b.Unapply(m) }
func (ObjectExecutor) Redo(b *ObjectBoard, m Move) error    { return b.Apply(m) }

// InPlaceExecutor applies and unapplies moves directly on the bit board.
type InPlaceExecutor struct{}

func (InPlaceExecutor) Execute(b *BitBoard, m Move) error { return b.Apply(m) }
func (InPlaceExecutor) Undo(b *BitBoard, m Move) error    { return b.Unapply(m) }
func (InPlaceExecutor) Redo(b *BitBoard, m Move) error    { return b.Apply(m) }

var bitBoardPool = sync.Pool{
	New: func() any { return &BitBoard{} },
}

func acquireBitBoard(src *BitBoard) *BitBoard {
	nb := bitBoardPool.Get().(*BitBoard)
	n := len(src.Height)
	if cap(nb.Height) < n {
		nb.Height = make([]uint8, n)
		nb.Stacks = make([]uint64, n)
	}
	nb.Height = nb.Height[:n]
	nb.Stacks = nb.Stacks[:n]
	nb.CopyFrom(src)
	return nb
}

func releaseBitBoard(b *BitBoard) { bitBoardPool.Put(b) }

// CloneExecutor saves a copy of the board before every apply and restores
// it on undo. Space grows with history depth.
type CloneExecutor struct {
	saved []*BitBoard
}

func (e *CloneExecutor) Execute(b *BitBoard, m Move) error {
	snap := acquireBitBoard(b)
	if err := b.Apply(m); err != nil {
		releaseBitBoard(snap)
		return err
	}
	e.saved = append(e.saved, snap)
	return nil
}

func (e *CloneExecutor) Undo(b *BitBoard, m Move) error {
	if len(e.saved) == 0 {
		return fmt.Errorf("%w: nothing to undo", ErrIllegalMove)
	}
	snap := e.saved[len(e.saved)-1]
	e.saved = e.saved[:len(e.saved)-1]
	b.CopyFrom(snap)
	releaseBitBoard(snap)
	setExecuted(m, false)
	return nil
}

func (e *CloneExecutor) Redo(b *BitBoard, m Move) error { return e.Execute(b, m) }

// Depth is the number of saved boards.
func (e *CloneExecutor) Depth() int { return len(e.saved) }

func setExecuted(m Move, v bool) {
	switch mv := m.(type) {
	case *PlacementMove:
		mv.executed = v
	case *StackMove:
		mv.executed = v
	}
}

const (
	ExecutorInPlace = "inplace"
	ExecutorClone   = "clone"
)

// NewBitExecutor returns the bit board executor named kind.
func NewBitExecutor(kind string) (Executor[*BitBoard], error) {
	switch kind {
	case "", ExecutorInPlace:
		return InPlaceExecutor{}, nil
	case ExecutorClone:
		return &CloneExecutor{}, nil
	}
	return nil, fmt.Errorf("%w: unknown executor %q", ErrInvalidConfiguration, kind)
}
