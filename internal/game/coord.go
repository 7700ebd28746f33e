// File game/coord.go
package game

import "fmt"

const (
	MinBoardSize = 3
	MaxBoardSize = 8
)

// Coord addresses a cell by file (column, a..h) and rank (row, 1..8), both zero based.
type Coord struct {
	File, Rank int
}

// Direction is one of the four cardinal move directions.
type Direction int8

const (
	DirNone Direction = iota
	North
	East
	South
	West
)

// Directions lists the four real directions in a fixed order.
var Directions = [4]Direction{North, East, South, West}

var dirDelta = [...]Coord{
	DirNone: {0, 0},
	North:   {0, 1},
	East:    {1, 0},
	South:   {0, -1},
	West:    {-1, 0},
}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	}
	return "none"
}

// Symbol is the notation character for the direction.
func (d Direction) Symbol() string {
	switch d {
	case North:
		return "+"
	case East:
		return ">"
	case South:
		return "-"
	case West:
		return "<"
	}
	return ""
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	}
	return DirNone
}

// Step moves n cells in direction d. No bounds checking.
func (c Coord) Step(d Direction, n int) Coord {
	dd := dirDelta[d]
	return Coord{c.File + dd.File*n, c.Rank + dd.Rank*n}
}

// DirectionTo returns the direction from c to an orthogonally adjacent cell.
func (c Coord) DirectionTo(o Coord) Direction {
	for _, d := range Directions {
		if c.Step(d, 1) == o {
			return d
		}
	}
	return DirNone
}

// Index maps the coordinate to its bit position on a board of the given size.
func (c Coord) Index(size int) int { return c.Rank*size + c.File }

// CoordOf is the inverse of Index.
func CoordOf(i, size int) Coord { return Coord{File: i % size, Rank: i / size} }

// String renders the cell as "c3".
func (c Coord) String() string {
	if c.File < 0 || c.File >= 26 || c.Rank < 0 {
		return fmt.Sprintf("(%d,%d)", c.File, c.Rank)
	}
	return fmt.Sprintf("%c%d", 'a'+rune(c.File), c.Rank+1)
}

// ParseCoord parses "c3" style cell names.
func ParseCoord(s string) (Coord, error) {
	if len(s) < 2 {
		return Coord{}, fmt.Errorf("invalid cell %q", s)
	}
	f := s[0]
	if f >= 'A' && f <= 'Z' {
		f += 'a' - 'A'
	}
	if f < 'a' || f > 'z' {
		return Coord{}, fmt.Errorf("invalid file in cell %q", s)
	}
	rank := 0
	for _, ch := range s[1:] {
		if ch < '0' || ch > '9' {
			return Coord{}, fmt.Errorf("invalid rank in cell %q", s)
		}
		rank = rank*10 + int(ch-'0')
	}
	if rank < 1 {
		return Coord{}, fmt.Errorf("invalid rank in cell %q", s)
	}
	return Coord{File: int(f - 'a'), Rank: rank - 1}, nil
}
