package game

import "fmt"

// StoneCounts is the starting reserve of one player.
type StoneCounts struct {
	Flats int
	Caps  int
}

var stoneCounts = map[int]StoneCounts{
	3: {10, 0},
	4: {15, 0},
	5: {21, 1},
	6: {30, 1},
	7: {40, 2},
	8: {50, 2},
}

// StartingStones returns the per-player stone counts for a board size.
func StartingStones(size int) (StoneCounts, bool) {
	c, ok := stoneCounts[size]
	return c, ok
}

// pool is a fixed-capacity bag of stones. A stone always returns to the slot
// derived from its ID.
type pool struct {
	base  int
	slots []*Stone
	avail int
}

func newPool(base, n int, owner Player, kind StoneKind) pool {
	p := pool{base: base, slots: make([]*Stone, n), avail: n}
	for i := range p.slots {
		p.slots[i] = &Stone{ID: base + i, Owner: owner, Kind: kind}
	}
	return p
}

func (p *pool) draw(id int) (*Stone, error) {
	if id == AnonymousID {
		for i := len(p.slots) - 1; i >= 0; i-- {
			if p.slots[i] != nil {
				id = p.base + i
				break
			}
		}
		if id == AnonymousID {
			return nil, fmt.Errorf("%w: reserve exhausted", ErrIllegalMove)
		}
	}
	slot := id - p.base
	if slot < 0 || slot >= len(p.slots) || p.slots[slot] == nil {
		return nil, fmt.Errorf("%w: stone %d not in reserve", ErrIllegalMove, id)
	}
	s := p.slots[slot]
	p.slots[slot] = nil
	p.avail--
	return s, nil
}

// has reports whether the stone with id is in the pool now.
func (p *pool) has(id int) bool {
	return p.owns(id) && p.slots[id-p.base] != nil
}

func (p *pool) owns(id int) bool {
	slot := id - p.base
	return slot >= 0 && slot < len(p.slots)
}

func (p *pool) put(s *Stone) error {
	slot := s.ID - p.base
	if slot < 0 || slot >= len(p.slots) {
		return fmt.Errorf("%w: stone %d does not belong to this reserve", ErrIllegalMove, s.ID)
	}
	if p.slots[slot] != nil {
		return fmt.Errorf("%w: stone %d already in reserve", ErrIllegalMove, s.ID)
	}
	p.slots[slot] = s
	p.avail++
	return nil
}

// PlayerReserve holds one player's unplaced stones. Flats and standing stones
// share the flat pool; capstones have their own.
type PlayerReserve struct {
	owner Player
	start StoneCounts
	flats pool
	caps  pool
}

// NewPlayerReserve creates the pools; stone IDs start at firstID.
func NewPlayerReserve(owner Player, counts StoneCounts, firstID int) *PlayerReserve {
	return &PlayerReserve{
		owner: owner,
		start: counts,
		flats: newPool(firstID, counts.Flats, owner, Flat),
		caps:  newPool(firstID+counts.Flats, counts.Caps, owner, Cap),
	}
}

// newReserves builds both players' reserves with globally unique stone IDs.
func newReserves(size int) ([2]*PlayerReserve, error) {
	c, ok := StartingStones(size)
	if !ok {
		return [2]*PlayerReserve{}, fmt.Errorf("%w: board size %d", ErrInvalidConfiguration, size)
	}
	per := c.Flats + c.Caps
	return [2]*PlayerReserve{
		NewPlayerReserve(PlayerOne, c, 0),
		NewPlayerReserve(PlayerTwo, c, per),
	}, nil
}

func (r *PlayerReserve) Owner() Player { return r.owner }

func (r *PlayerReserve) poolFor(kind StoneKind) *pool {
	if kind == Cap {
		return &r.caps
	}
	return &r.flats
}

// Draw removes a stone of the given kind. With id == AnonymousID the highest
// available slot is taken; otherwise exactly that stone.
func (r *PlayerReserve) Draw(kind StoneKind, id int) (*Stone, error) {
	s, err := r.poolFor(kind).draw(id)
	if err != nil {
		return nil, err
	}
	s.Kind = kind
	return s, nil
}

// Return puts a stone back into its original slot.
func (r *PlayerReserve) Return(s *Stone) error {
	if s == nil || s.Owner != r.owner {
		return fmt.Errorf("%w: stone %v does not belong to player %s", ErrIllegalMove, s, r.owner)
	}
	if r.caps.owns(s.ID) {
		return r.caps.put(s)
	}
	return r.flats.put(s)
}

// AvailableCount returns how many stones of kind can still be drawn.
func (r *PlayerReserve) AvailableCount(kind StoneKind) int {
	return r.poolFor(kind).avail
}

// StartingCount returns the pool capacity for kind.
func (r *PlayerReserve) StartingCount(kind StoneKind) int {
	if kind == Cap {
		return r.start.Caps
	}
	return r.start.Flats
}

// Total is the number of stones left in both pools.
func (r *PlayerReserve) Total() int { return r.flats.avail + r.caps.avail }

// Holds reports whether the stone with id can be drawn as kind.
func (r *PlayerReserve) Holds(kind StoneKind, id int) bool {
	return r.poolFor(kind).has(id)
}
