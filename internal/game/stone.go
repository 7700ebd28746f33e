package game

import "fmt"

// Player identifies a side. PlayerNone is used for draws and empty cells.
type Player int8

const (
	PlayerNone Player = iota
	PlayerOne
	PlayerTwo
)

func (p Player) String() string {
	switch p {
	case PlayerOne:
		return "one"
	case PlayerTwo:
		return "two"
	}
	return "none"
}

// Opponent returns the other side.
func (p Player) Opponent() Player {
	switch p {
	case PlayerOne:
		return PlayerTwo
	case PlayerTwo:
		return PlayerOne
	}
	return PlayerNone
}

// idx maps PlayerOne/PlayerTwo to 0/1.
func (p Player) idx() int {
	if p == PlayerTwo {
		return 1
	}
	return 0
}

// StoneKind is the orientation of a stone.
type StoneKind int8

const (
	Flat StoneKind = iota
	Standing
	Cap
)

func (k StoneKind) String() string {
	switch k {
	case Standing:
		return "standing"
	case Cap:
		return "cap"
	}
	return "flat"
}

// AnonymousID marks stones derived from the bit board; they carry no identity.
const AnonymousID = -1

// Stone is a single playing piece. Only Kind changes over its lifetime.
type Stone struct {
	ID    int
	Owner Player
	Kind  StoneKind
}

func (s *Stone) String() string {
	if s == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s/%s#%d", s.Owner, s.Kind, s.ID)
}

// IsRoad reports whether the stone counts toward a road.
func (s *Stone) IsRoad() bool { return s.Kind != Standing }

// Equal compares by identity when both stones have one, and by owner and
// kind otherwise ("maybe-equal").
func (s *Stone) Equal(o *Stone) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.ID != AnonymousID && o.ID != AnonymousID {
		return s.ID == o.ID
	}
	return s.Owner == o.Owner && s.Kind == o.Kind
}

// Stack is the pile of stones on a cell, bottom first.
type Stack struct {
	Coord  Coord
	Stones []*Stone
}

func (s *Stack) Height() int { return len(s.Stones) }

func (s *Stack) IsEmpty() bool { return len(s.Stones) == 0 }

// Top returns the top stone or nil.
func (s *Stack) Top() *Stone {
	if len(s.Stones) == 0 {
		return nil
	}
	return s.Stones[len(s.Stones)-1]
}

// Owner returns the controlling player of the stack.
func (s *Stack) Owner() Player {
	if t := s.Top(); t != nil {
		return t.Owner
	}
	return PlayerNone
}

func (s *Stack) push(stones ...*Stone) {
	s.Stones = append(s.Stones, stones...)
}

// take removes and returns the top n stones, bottom first.
func (s *Stack) take(n int) []*Stone {
	cut := len(s.Stones) - n
	out := append([]*Stone(nil), s.Stones[cut:]...)
	for i := cut; i < len(s.Stones); i++ {
		s.Stones[i] = nil
	}
	s.Stones = s.Stones[:cut]
	return out
}

// valid checks the stack invariant: only the top may be non-flat.
func (s *Stack) valid() bool {
	for i := 0; i+1 < len(s.Stones); i++ {
		if s.Stones[i].Kind != Flat {
			return false
		}
	}
	return true
}

func (s *Stack) clone() *Stack {
	out := &Stack{Coord: s.Coord, Stones: make([]*Stone, len(s.Stones))}
	for i, st := range s.Stones {
		cp := *st
		out.Stones[i] = &cp
	}
	return out
}
