package game

import "fmt"

// WinType is how a game ended.
type WinType int8

const (
	WinNone WinType = iota
	WinRoad
	WinFlat
	WinTime
	WinDraw
)

func (w WinType) String() string {
	switch w {
	case WinRoad:
		return "road"
	case WinFlat:
		return "flat"
	case WinTime:
		return "time"
	case WinDraw:
		return "draw"
	}
	return "none"
}

// Extents is the bounding box of a player's widest road island.
type Extents struct {
	Files, Ranks int
}

// GameResult describes the outcome of a position.
type GameResult struct {
	Winner      Player
	WinType     WinType
	Score       int
	RoadExtents [2]Extents
}

// Terminal reports whether the game is over.
func (r GameResult) Terminal() bool { return r.WinType != WinNone }

func (r GameResult) String() string {
	switch r.WinType {
	case WinNone:
		return "in progress"
	case WinDraw:
		return "draw"
	}
	return fmt.Sprintf("%s wins by %s (%d)", r.Winner, r.WinType, r.Score)
}

// Evaluate determines the result of the position after mover's ply.
// Checks run in precedence order: time-out, the opponent's road, the
// mover's road, then the flat count once a reserve runs out or the board
// is full. left holds each player's remaining reserve; timedOut is the
// player whose clock ran out, or PlayerNone.
func Evaluate(b *BitBoard, left [2]int, mover, timedOut Player) GameResult {
	var r GameResult
	for _, p := range []Player{PlayerOne, PlayerTwo} {
		f, rk := b.RoadExtents(p)
		r.RoadExtents[p.idx()] = Extents{Files: f, Ranks: rk}
	}
	size := b.Size()
	win := func(p Player, t WinType) GameResult {
		r.Winner, r.WinType = p, t
		r.Score = size*size + left[p.idx()]
		return r
	}

	if timedOut != PlayerNone {
		return win(timedOut.Opponent(), WinTime)
	}
	if mover == PlayerNone {
		mover = PlayerOne
	}
	for _, p := range []Player{mover.Opponent(), mover} {
		if b.HasRoad(p) {
			return win(p, WinRoad)
		}
	}
	if left[0] == 0 || left[1] == 0 || b.IsFull() {
		one, two := b.FlatCount(PlayerOne), b.FlatCount(PlayerTwo)
		switch {
		case one > two:
			return win(PlayerOne, WinFlat)
		case two > one:
			return win(PlayerTwo, WinFlat)
		}
		r.WinType = WinDraw
		return r
	}
	return r
}

// ExtentsOf returns p's road extents.
func (r GameResult) ExtentsOf(p Player) Extents { return r.RoadExtents[p.idx()] }
