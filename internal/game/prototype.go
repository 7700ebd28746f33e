package game

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// PlayerInfo describes one seat.
type PlayerInfo struct {
	Name string
	AI   bool
}

// GamePrototype is the immutable description a game is built from.
type GamePrototype struct {
	Players      [2]PlayerInfo
	Size         int
	InitialMoves []Move
	Timer        TimerConfig
}

// Validate checks the prototype before a game is built from it.
func (p GamePrototype) Validate() error {
	if p.Size < MinBoardSize || p.Size > MaxBoardSize {
		return fmt.Errorf("%w: board size %d not in [%d,%d]", ErrInvalidConfiguration, p.Size, MinBoardSize, MaxBoardSize)
	}
	if p.Timer.Initial < 0 || p.Timer.Increment < 0 {
		return fmt.Errorf("%w: negative timer settings", ErrInvalidConfiguration)
	}
	for i, m := range p.InitialMoves {
		if m == nil {
			return fmt.Errorf("%w: initial move %d is nil", ErrInvalidConfiguration, i)
		}
	}
	return nil
}

// Options are runtime knobs that are not part of the game itself.
type Options struct {
	Logger *zap.Logger
	// Debug cross-checks both boards, and both bit board executors, after
	// every execute, undo and redo.
	Debug bool
	// Executor selects the bit board executor: "inplace" or "clone".
	Executor string
	// Clock drives the game timer; nil means the wall clock.
	Clock clock.Clock
	// Dispatch serializes asynchronous work (timer expiry) with the caller's
	// other operations. Nil queues it for Game.Poll.
	Dispatch func(func())
	// Observers are subscribed before the game emits its first event.
	Observers []Observer
}
