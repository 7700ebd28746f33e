// file: internal/game/bitboard.go
package game

import (
	"fmt"
	"math/bits"
	"sync"
)

// MaxStackHeight is the tallest stack a packed stack word can describe.
const MaxStackHeight = 64

// Masks are the precomputed edge and board masks for one board size.
// Bit i is cell (i%size, i/size); rank 0 is the south edge.
type Masks struct {
	Size  int
	West  uint64 // file 0
	East  uint64 // file size-1
	South uint64 // rank 0
	North uint64 // rank size-1
	Board uint64
}

var (
	masksBySize [MaxBoardSize + 1]Masks
	masksOnce   sync.Once
)

func ensureMasks() {
	masksOnce.Do(func() {
		for size := MinBoardSize; size <= MaxBoardSize; size++ {
			m := Masks{Size: size}
			for i := 0; i < size; i++ {
				m.West |= 1 << uint(i*size)
			}
			m.East = m.West << uint(size-1)
			m.South = 1<<uint(size) - 1
			m.North = m.South << uint(size*(size-1))
			m.Board = 1<<uint(size*size) - 1
			masksBySize[size] = m
		}
	})
}

// MasksFor returns the masks of a supported size.
func MasksFor(size int) *Masks {
	ensureMasks()
	return &masksBySize[size]
}

// BitBoard is the packed representation: one mask per property plus a
// height and a colour word per cell. Stack bit j is set when the j-th stone
// from the bottom belongs to PlayerTwo.
type BitBoard struct {
	m        *Masks
	One      uint64
	Occupied uint64
	Standing uint64
	Caps     uint64
	Height   []uint8
	Stacks   []uint64
}

// NewBitBoard creates an empty board.
func NewBitBoard(size int) *BitBoard {
	return &BitBoard{
		m:      MasksFor(size),
		Height: make([]uint8, size*size),
		Stacks: make([]uint64, size*size),
	}
}

func (b *BitBoard) Size() int { return b.m.Size }

func (b *BitBoard) Masks() *Masks { return b.m }

// Two is derived from occupancy and the PlayerOne plane.
func (b *BitBoard) Two() uint64 { return b.Occupied &^ b.One }

// Owned returns the cells whose top stone belongs to p.
func (b *BitBoard) Owned(p Player) uint64 {
	if p == PlayerOne {
		return b.One
	}
	return b.Two()
}

// Clone returns an independent copy.
func (b *BitBoard) Clone() *BitBoard {
	nb := &BitBoard{
		m:        b.m,
		One:      b.One,
		Occupied: b.Occupied,
		Standing: b.Standing,
		Caps:     b.Caps,
		Height:   append([]uint8(nil), b.Height...),
		Stacks:   append([]uint64(nil), b.Stacks...),
	}
	return nb
}

// CopyFrom overwrites b with o without reallocating.
func (b *BitBoard) CopyFrom(o *BitBoard) {
	b.m = o.m
	b.One, b.Occupied, b.Standing, b.Caps = o.One, o.Occupied, o.Standing, o.Caps
	copy(b.Height, o.Height)
	copy(b.Stacks, o.Stacks)
}

// Equal compares every field.
func (b *BitBoard) Equal(o *BitBoard) bool {
	if b.m.Size != o.m.Size || b.One != o.One || b.Occupied != o.Occupied ||
		b.Standing != o.Standing || b.Caps != o.Caps {
		return false
	}
	for i := range b.Height {
		if b.Height[i] != o.Height[i] || b.Stacks[i] != o.Stacks[i] {
			return false
		}
	}
	return true
}

// IsOnBoard reports whether c is inside the board.
func (b *BitBoard) IsOnBoard(c Coord) bool {
	return c.File >= 0 && c.File < b.m.Size && c.Rank >= 0 && c.Rank < b.m.Size
}

// IsEdge reports whether c lies on any board edge.
func (b *BitBoard) IsEdge(c Coord) bool {
	if !b.IsOnBoard(c) {
		return false
	}
	bit := uint64(1) << uint(c.Index(b.m.Size))
	return bit&(b.m.West|b.m.East|b.m.North|b.m.South) != 0
}

// StackHeight returns the number of stones at c.
func (b *BitBoard) StackHeight(c Coord) int { return int(b.Height[c.Index(b.m.Size)]) }

// OccupancyCount is the number of non-empty cells.
func (b *BitBoard) OccupancyCount() int { return bits.OnesCount64(b.Occupied) }

// FlatCount counts p's flat-topped cells (standing and capstones excluded).
func (b *BitBoard) FlatCount(p Player) int {
	return bits.OnesCount64(b.Owned(p) &^ b.Standing &^ b.Caps)
}

// RoadCount counts p's cells that can be part of a road.
func (b *BitBoard) RoadCount(p Player) int { return bits.OnesCount64(b.RoadMask(p)) }

// RoadMask is p's controlled cells minus standing stones.
func (b *BitBoard) RoadMask(p Player) uint64 { return b.Owned(p) &^ b.Standing }

// IsFull reports whether every cell is occupied.
func (b *BitBoard) IsFull() bool { return b.Occupied == b.m.Board }

// TopAt returns an anonymous copy of the top stone at c, or nil.
func (b *BitBoard) TopAt(c Coord) *Stone {
	i := c.Index(b.m.Size)
	if b.Height[i] == 0 {
		return nil
	}
	return &Stone{ID: AnonymousID, Owner: b.ownerOf(i), Kind: b.kindOf(i)}
}

// StackAt returns anonymous stones for the whole stack at c, bottom first.
func (b *BitBoard) StackAt(c Coord) []*Stone {
	i := c.Index(b.m.Size)
	h := int(b.Height[i])
	out := make([]*Stone, h)
	for j := 0; j < h; j++ {
		out[j] = &Stone{ID: AnonymousID, Owner: colorAt(b.Stacks[i], j), Kind: Flat}
	}
	if h > 0 {
		out[h-1].Kind = b.kindOf(i)
	}
	return out
}

func colorAt(word uint64, j int) Player {
	if word>>uint(j)&1 == 1 {
		return PlayerTwo
	}
	return PlayerOne
}

func lowMask(n int) uint64 { return uint64(1)<<uint(n) - 1 }

func (b *BitBoard) ownerOf(i int) Player {
	bit := uint64(1) << uint(i)
	switch {
	case b.One&bit != 0:
		return PlayerOne
	case b.Occupied&bit != 0:
		return PlayerTwo
	}
	return PlayerNone
}

func (b *BitBoard) kindOf(i int) StoneKind {
	bit := uint64(1) << uint(i)
	switch {
	case b.Standing&bit != 0:
		return Standing
	case b.Caps&bit != 0:
		return Cap
	}
	return Flat
}

// setTop refreshes the plane bits of cell i from its stack word and height.
func (b *BitBoard) setTop(i int, kind StoneKind) {
	bit := uint64(1) << uint(i)
	b.One &^= bit
	b.Occupied &^= bit
	b.Standing &^= bit
	b.Caps &^= bit
	h := int(b.Height[i])
	if h == 0 {
		return
	}
	b.Occupied |= bit
	if colorAt(b.Stacks[i], h-1) == PlayerOne {
		b.One |= bit
	}
	switch kind {
	case Standing:
		b.Standing |= bit
	case Cap:
		b.Caps |= bit
	}
}

func ownerBit(p Player) uint64 {
	if p == PlayerTwo {
		return 1
	}
	return 0
}

// Apply executes a complete move.
func (b *BitBoard) Apply(m Move) error {
	switch mv := m.(type) {
	case *PlacementMove:
		return b.applyPlacement(mv)
	case *StackMove:
		return b.applyStack(mv)
	}
	return fmt.Errorf("%w: unknown move type %T", ErrIllegalMove, m)
}

// Unapply reverts a move previously applied with Apply.
func (b *BitBoard) Unapply(m Move) error {
	switch mv := m.(type) {
	case *PlacementMove:
		i := mv.Target.Index(b.m.Size)
		if b.Height[i] != 1 {
			return fmt.Errorf("%w: %s does not hold a single stone", ErrIllegalMove, mv.Target)
		}
		b.Height[i] = 0
		b.Stacks[i] = 0
		b.setTop(i, Flat)
		mv.executed = false
		return nil
	case *StackMove:
		b.unapplyStack(mv)
		return nil
	}
	return fmt.Errorf("%w: unknown move type %T", ErrIllegalMove, m)
}

func (b *BitBoard) applyPlacement(mv *PlacementMove) error {
	if !b.IsOnBoard(mv.Target) {
		return fmt.Errorf("%w: %s is off the board", ErrIllegalMove, mv.Target)
	}
	if mv.Stone == nil || mv.Stone.Owner == PlayerNone {
		return fmt.Errorf("%w: placement without an owned stone", ErrIllegalMove)
	}
	i := mv.Target.Index(b.m.Size)
	if b.Height[i] != 0 {
		return fmt.Errorf("%w: %s is occupied", ErrIllegalMove, mv.Target)
	}
	b.Height[i] = 1
	b.Stacks[i] = ownerBit(mv.Stone.Owner)
	b.setTop(i, mv.Stone.Kind)
	mv.executed = true
	return nil
}

// CheckStack validates a complete stack move for the given mover against
// the stacking rules: ownership, carry limit, path bounds, walls and caps.
func (b *BitBoard) CheckStack(mv *StackMove, mover Player) error {
	size := b.m.Size
	if !b.IsOnBoard(mv.Start) {
		return fmt.Errorf("%w: %s is off the board", ErrIllegalMove, mv.Start)
	}
	i := mv.Start.Index(size)
	h := int(b.Height[i])
	if h == 0 {
		return fmt.Errorf("%w: %s is empty", ErrIllegalMove, mv.Start)
	}
	if mover != PlayerNone && b.ownerOf(i) != mover {
		return fmt.Errorf("%w: %s is not controlled by %s", ErrIllegalMove, mv.Start, mover)
	}
	if mv.Count < 1 || mv.Count > h || mv.Count > size {
		return fmt.Errorf("%w: cannot carry %d stones from %s", ErrIllegalMove, mv.Count, mv.Start)
	}
	if mv.Dir == DirNone || len(mv.dropCounts) == 0 {
		return fmt.Errorf("%w: stack move needs a direction and drops", ErrIllegalMove)
	}
	topKind := b.kindOf(i)
	left := mv.Count
	for k, d := range mv.dropCounts {
		cell := mv.Start.Step(mv.Dir, k+1)
		if !b.IsOnBoard(cell) {
			return fmt.Errorf("%w: %s is off the board", ErrIllegalMove, cell)
		}
		if d < 1 || d > left {
			return fmt.Errorf("%w: bad drop count %d", ErrIllegalMove, d)
		}
		left -= d
		last := k == len(mv.dropCounts)-1
		if err := b.checkDrop(cell, d, last && left == 0, topKind); err != nil {
			return err
		}
	}
	if left != 0 {
		return fmt.Errorf("%w: drops leave %d stones in hand", ErrIllegalMove, left)
	}
	return nil
}

// checkDrop validates dropping n stones on cell; final marks the drop that
// carries the top of the moving pile, whose kind is topKind.
func (b *BitBoard) checkDrop(cell Coord, n int, final bool, topKind StoneKind) error {
	j := cell.Index(b.m.Size)
	if int(b.Height[j])+n > MaxStackHeight {
		return fmt.Errorf("%w: %s would exceed %d stones", ErrIllegalMove, cell, MaxStackHeight)
	}
	if b.Height[j] == 0 {
		return nil
	}
	switch b.kindOf(j) {
	case Cap:
		return fmt.Errorf("%w: cannot stack onto the capstone at %s", ErrIllegalMove, cell)
	case Standing:
		if !final || n != 1 || topKind != Cap {
			return fmt.Errorf("%w: only a lone capstone may flatten %s", ErrIllegalMove, cell)
		}
	}
	return nil
}

func (b *BitBoard) applyStack(mv *StackMove) error {
	if err := b.CheckStack(mv, PlayerNone); err != nil {
		return err
	}
	size := b.m.Size
	i := mv.Start.Index(size)
	h := int(b.Height[i])
	topKind := b.kindOf(i)

	pile := b.Stacks[i] >> uint(h-mv.Count)
	b.Stacks[i] &= lowMask(h - mv.Count)
	b.Height[i] = uint8(h - mv.Count)
	b.setTop(i, Flat)

	last := len(mv.dropCounts) - 1
	for k, d := range mv.dropCounts {
		j := mv.Start.Step(mv.Dir, k+1).Index(size)
		kind := Flat
		if k == last {
			kind = topKind
			bit := uint64(1) << uint(j)
			if b.Standing&bit != 0 {
				if mv.flattened == nil {
					mv.flattened = &Stone{ID: AnonymousID, Owner: b.ownerOf(j), Kind: Standing}
				}
			} else {
				mv.flattened = nil
			}
		}
		b.Stacks[j] |= (pile & lowMask(d)) << uint(b.Height[j])
		b.Height[j] += uint8(d)
		pile >>= uint(d)
		b.setTop(j, kind)
	}
	mv.executed = true
	return nil
}

func (b *BitBoard) unapplyStack(mv *StackMove) {
	size := b.m.Size
	last := len(mv.dropCounts) - 1
	topKind := b.kindOf(mv.End().Index(size))

	var pile uint64
	for k := last; k >= 0; k-- {
		d := mv.dropCounts[k]
		j := mv.Start.Step(mv.Dir, k+1).Index(size)
		h := int(b.Height[j])
		pile = pile<<uint(d) | (b.Stacks[j]>>uint(h-d))&lowMask(d)
		b.Stacks[j] &= lowMask(h - d)
		b.Height[j] = uint8(h - d)
		kind := Flat
		if k == last && mv.flattened != nil {
			kind = Standing
		}
		b.setTop(j, kind)
	}

	i := mv.Start.Index(size)
	b.Stacks[i] |= pile << uint(b.Height[i])
	b.Height[i] += uint8(mv.Count)
	b.setTop(i, topKind)
	mv.executed = false
}

// String renders heights and tops, top rank first.
func (b *BitBoard) String() string {
	out := ""
	size := b.m.Size
	for r := size - 1; r >= 0; r-- {
		for f := 0; f < size; f++ {
			c := Coord{f, r}
			cell := "."
			if s := b.TopAt(c); s != nil {
				cell = fmt.Sprintf("%s:%d", stoneGlyph(s), b.StackHeight(c))
			}
			out += fmt.Sprintf("%-6s", cell)
		}
		out += "\n"
	}
	return out
}
