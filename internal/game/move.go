package game

import (
	"fmt"
	"strings"
)

// Move is one ply: either a PlacementMove or a StackMove.
type Move interface {
	// Executed reports whether the move is currently applied.
	Executed() bool
	// Cells lists every cell the move touches.
	Cells() []Coord
	String() string
	clone() Move
}

// PlacementMove puts a stone from the reserve onto an empty cell.
type PlacementMove struct {
	Target Coord
	Stone  *Stone

	executed bool
}

// NewPlacement builds a placement of a stone that is yet to be drawn. The
// stone is resolved from the mover's reserve when the move executes.
func NewPlacement(target Coord, kind StoneKind) *PlacementMove {
	return &PlacementMove{Target: target, Stone: &Stone{ID: AnonymousID, Kind: kind}}
}

func (m *PlacementMove) Executed() bool { return m.executed }

func (m *PlacementMove) Cells() []Coord { return []Coord{m.Target} }

// Kind is the orientation the placed stone takes.
func (m *PlacementMove) Kind() StoneKind {
	if m.Stone == nil {
		return Flat
	}
	return m.Stone.Kind
}

func (m *PlacementMove) String() string {
	switch m.Kind() {
	case Standing:
		return "S" + m.Target.String()
	case Cap:
		return "C" + m.Target.String()
	}
	return m.Target.String()
}

func (m *PlacementMove) clone() Move {
	cp := *m
	cp.executed = false
	if m.Stone != nil {
		s := *m.Stone
		cp.Stone = &s
	}
	return &cp
}

// StackState is the progress of a stack move being executed.
type StackState int8

const (
	StackNotStarted StackState = iota
	StackGrabbed
	StackPartiallyDropped
	StackComplete
)

func (s StackState) String() string {
	switch s {
	case StackGrabbed:
		return "grabbed"
	case StackPartiallyDropped:
		return "partially-dropped"
	case StackComplete:
		return "complete"
	}
	return "not-started"
}

type dropRecord struct {
	cell      Coord
	count     int
	flattened *Stone
}

// StackMove lifts Count stones from Start and drops them one cell at a time
// in Dir, dropCounts[i] stones on the i-th cell.
type StackMove struct {
	Start Coord
	Dir   Direction
	Count int

	dropCounts []int
	flattened  *Stone
	executed   bool

	// object board progress
	grabbed []*Stone
	held    int
	dropped []dropRecord
}

// NewStackMove builds a complete stack move.
func NewStackMove(start Coord, dir Direction, drops ...int) *StackMove {
	n := 0
	for _, d := range drops {
		n += d
	}
	return &StackMove{
		Start:      start,
		Dir:        dir,
		Count:      n,
		dropCounts: append([]int(nil), drops...),
	}
}

// newGrab starts an interactive stack move; direction and drops come later.
func newGrab(start Coord, count int) *StackMove {
	return &StackMove{Start: start, Count: count}
}

func (m *StackMove) Executed() bool { return m.executed }

// DropCounts returns a copy of the drop list.
func (m *StackMove) DropCounts() []int { return append([]int(nil), m.dropCounts...) }

// FlattenedStone is the standing stone flattened by this move, if any.
func (m *StackMove) FlattenedStone() *Stone { return m.flattened }

// GrabbedStack returns the stones lifted by the move, bottom first.
func (m *StackMove) GrabbedStack() []*Stone { return append([]*Stone(nil), m.grabbed...) }

// Held is the number of grabbed stones not yet dropped.
func (m *StackMove) Held() int { return m.held }

// State reports progress on the object board.
func (m *StackMove) State() StackState {
	switch {
	case m.grabbed == nil:
		return StackNotStarted
	case m.held == 0:
		return StackComplete
	case len(m.dropped) == 0:
		return StackGrabbed
	}
	return StackPartiallyDropped
}

// End is the last cell reached by the move.
func (m *StackMove) End() Coord { return m.Start.Step(m.Dir, len(m.dropCounts)) }

func (m *StackMove) Cells() []Coord {
	out := make([]Coord, 0, len(m.dropCounts)+1)
	out = append(out, m.Start)
	for i := range m.dropCounts {
		out = append(out, m.Start.Step(m.Dir, i+1))
	}
	return out
}

func (m *StackMove) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d%s%s", m.Count, m.Start, m.Dir.Symbol())
	for _, d := range m.dropCounts {
		fmt.Fprintf(&sb, "%d", d)
	}
	return sb.String()
}

func (m *StackMove) clone() Move {
	return &StackMove{
		Start:      m.Start,
		Dir:        m.Dir,
		Count:      m.Count,
		dropCounts: append([]int(nil), m.dropCounts...),
	}
}

// CloneMove returns an unexecuted copy of m, suitable for replay elsewhere.
func CloneMove(m Move) Move { return m.clone() }
