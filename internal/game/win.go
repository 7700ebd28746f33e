// file: internal/game/win.go
package game

import "math/bits"

// grow spreads seed one step in each direction, staying within mask.
// Horizontal shifts drop bits that would wrap onto the next rank.
func (m *Masks) grow(seed, within uint64) uint64 {
	next := seed
	next |= (seed << 1) &^ m.West
	next |= (seed >> 1) &^ m.East
	next |= seed << uint(m.Size)
	next |= seed >> uint(m.Size)
	return next & within
}

// floodComponent returns the island of within that contains seed.
func (m *Masks) floodComponent(seed, within uint64) uint64 {
	comp := seed & within
	frontier := comp
	for frontier != 0 {
		next := m.grow(frontier, within) &^ comp
		comp |= next
		frontier = next
	}
	return comp
}

// Islands splits mask into its connected components.
func (m *Masks) Islands(mask uint64) []uint64 {
	var out []uint64
	remain := mask
	for remain != 0 {
		seed := remain & -remain
		comp := m.floodComponent(seed, mask)
		out = append(out, comp)
		remain &^= comp
	}
	return out
}

// spans reports whether an island touches both north and south, or both
// east and west.
func (m *Masks) spans(island uint64) bool {
	return (island&m.North != 0 && island&m.South != 0) ||
		(island&m.East != 0 && island&m.West != 0)
}

// spanningIsland returns the first island of mask that spans the board.
func (m *Masks) spanningIsland(mask uint64) (uint64, bool) {
	remain := mask
	for remain != 0 {
		seed := remain & -remain
		comp := m.floodComponent(seed, mask)
		if m.spans(comp) {
			return comp, true
		}
		remain &^= comp
	}
	return 0, false
}

// Extents returns the file and rank span of the bounding box of island.
func (m *Masks) Extents(island uint64) (files, ranks int) {
	if island == 0 {
		return 0, 0
	}
	minF, minR, maxF, maxR := m.Size, m.Size, -1, -1
	for rest := island; rest != 0; rest &= rest - 1 {
		i := bits.TrailingZeros64(rest)
		f, r := i%m.Size, i/m.Size
		minF, maxF = min(minF, f), max(maxF, f)
		minR, maxR = min(minR, r), max(maxR, r)
	}
	return maxF - minF + 1, maxR - minR + 1
}

// HasRoad reports whether p has a road.
func (b *BitBoard) HasRoad(p Player) bool {
	_, ok := b.m.spanningIsland(b.RoadMask(p))
	return ok
}

// GetRoad returns a road of p shrunk greedily: cells are removed one at a
// time while some island of the remainder still spans the board. The result
// is locally minimal, not necessarily the smallest road.
func (b *BitBoard) GetRoad(p Player) (uint64, bool) {
	road, ok := b.m.spanningIsland(b.RoadMask(p))
	if !ok {
		return 0, false
	}
	for shrunk := true; shrunk; {
		shrunk = false
		for rest := road; rest != 0; rest &= rest - 1 {
			bit := rest & -rest
			if g, ok := b.m.spanningIsland(road &^ bit); ok {
				road = g
				shrunk = true
				break
			}
		}
	}
	return road, true
}

// RoadCells returns the cells of GetRoad.
func (b *BitBoard) RoadCells(p Player) []Coord {
	road, ok := b.GetRoad(p)
	if !ok {
		return nil
	}
	return b.Cells(road)
}

// Cells converts a mask to coordinates in index order.
func (b *BitBoard) Cells(mask uint64) []Coord {
	out := make([]Coord, 0, bits.OnesCount64(mask))
	for rest := mask; rest != 0; rest &= rest - 1 {
		out = append(out, CoordOf(bits.TrailingZeros64(rest), b.m.Size))
	}
	return out
}

// RoadExtents returns the largest file extent and rank extent over all of
// p's road islands.
func (b *BitBoard) RoadExtents(p Player) (files, ranks int) {
	for _, island := range b.m.Islands(b.RoadMask(p)) {
		f, r := b.m.Extents(island)
		files, ranks = max(files, f), max(ranks, r)
	}
	return files, ranks
}
