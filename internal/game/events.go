package game

import (
	"time"

	"github.com/google/uuid"
)

// EventKind names a state transition.
type EventKind int

const (
	EventGameCreated EventKind = iota
	EventGameStarted
	EventGameCompleted
	EventTurnStarted
	EventTurnCompleted
	EventStoneDrawn
	EventStonePlaced
	EventStoneReturned
	EventStackGrabbed
	EventStackDropped
	EventMoveInitiated
	EventMoveCompleted
	EventUndoInitiated
	EventUndoCompleted
	EventRedoInitiated
	EventRedoCompleted
	EventAbortInitiated
	EventAbortCompleted
	EventCurrentTurnSet
	EventMoveTracked
	EventTimedOut
)

var eventNames = [...]string{
	EventGameCreated:    "gameCreated",
	EventGameStarted:    "gameStarted",
	EventGameCompleted:  "gameCompleted",
	EventTurnStarted:    "turnStarted",
	EventTurnCompleted:  "turnCompleted",
	EventStoneDrawn:     "stoneDrawn",
	EventStonePlaced:    "stonePlaced",
	EventStoneReturned:  "stoneReturned",
	EventStackGrabbed:   "stackGrabbed",
	EventStackDropped:   "stackDropped",
	EventMoveInitiated:  "moveInitiated",
	EventMoveCompleted:  "moveCompleted",
	EventUndoInitiated:  "undoInitiated",
	EventUndoCompleted:  "undoCompleted",
	EventRedoInitiated:  "redoInitiated",
	EventRedoCompleted:  "redoCompleted",
	EventAbortInitiated: "abortInitiated",
	EventAbortCompleted: "abortCompleted",
	EventCurrentTurnSet: "currentTurnSet",
	EventMoveTracked:    "moveTracked",
	EventTimedOut:       "timedOut",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event is one notification. Fields not relevant to Kind are zero.
type Event struct {
	Kind     EventKind
	GameID   uuid.UUID
	Ply      int
	Player   Player
	Move     Move
	Stone    *Stone
	Cells    []Coord
	Duration time.Duration // animation hint for *Initiated events
	Result   GameResult
}

// Observer receives events synchronously, in registration order.
type Observer interface {
	OnEvent(e Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(e Event)

func (f ObserverFunc) OnEvent(e Event) { f(e) }
