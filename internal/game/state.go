package game

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// opKind is the two-phase operation currently outstanding.
type opKind int8

const (
	opNone opKind = iota
	opMove
	opUndo
	opRedo
	opAbort
)

func (o opKind) String() string {
	switch o {
	case opMove:
		return "move"
	case opUndo:
		return "undo"
	case opRedo:
		return "redo"
	case opAbort:
		return "abort"
	}
	return "none"
}

// Game owns both board representations, the reserves, history and the
// in-flight interactive state of one game. It is not safe for concurrent
// use; asynchronous work is funneled through Options.Dispatch, or queued
// for Poll when no dispatcher is given.
type Game struct {
	id       uuid.UUID
	proto    GamePrototype
	log      *zap.Logger
	debug    bool
	dispatch func(func())

	queueMu sync.Mutex
	queued  []func()

	objects    *ObjectBoard
	bits       *BitBoard
	shadow     *BitBoard
	objExec    ObjectExecutor
	bitExec    Executor[*BitBoard]
	shadowExec Executor[*BitBoard]
	reserves   [2]*PlayerReserve

	executed []Move
	reverted []Move // redo stack, next redo last

	op      opKind
	opBy    Player
	pending Move
	inHand  *Stone
	grab    *StackMove

	result       GameResult
	final        GameResult
	completed    bool
	endAnnounced bool
	started      bool
	quiet        bool

	timer     *Timer
	observers []*subscriber
}

// subscriber boxes an observer so it can be removed by identity; observers
// such as ObserverFunc are not comparable.
type subscriber struct{ Observer }

// New builds a game from proto and replays its initial moves.
func New(proto GamePrototype, opts Options) (*Game, error) {
	if err := proto.Validate(); err != nil {
		return nil, err
	}
	reserves, err := newReserves(proto.Size)
	if err != nil {
		return nil, err
	}
	bitExec, err := NewBitExecutor(opts.Executor)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	g := &Game{
		id:       uuid.New(),
		proto:    proto,
		debug:    opts.Debug,
		dispatch: opts.Dispatch,
		objects:  NewObjectBoard(proto.Size),
		bits:     NewBitBoard(proto.Size),
		bitExec:  bitExec,
		reserves: reserves,
	}
	g.log = log.With(zap.String("game", g.id.String()))
	if g.dispatch == nil {
		g.dispatch = g.enqueue
	}
	if opts.Debug {
		g.shadow = NewBitBoard(proto.Size)
		if _, ok := bitExec.(*CloneExecutor); ok {
			g.shadowExec = InPlaceExecutor{}
		} else {
			g.shadowExec = &CloneExecutor{}
		}
	}
	g.timer = NewTimer(opts.Clock, proto.Timer, g.onTimerExpired)
	for _, o := range opts.Observers {
		g.observers = append(g.observers, &subscriber{o})
	}

	g.emit(Event{Kind: EventGameCreated})
	g.quiet = true
	for i, m := range proto.InitialMoves {
		if err := g.MakeMove(g.Active(), CloneMove(m)); err != nil {
			return nil, fmt.Errorf("initial move %d (%s): %w", i+1, m, err)
		}
	}
	g.quiet = false
	g.log.Info("game created",
		zap.Int("size", proto.Size),
		zap.Int("initialMoves", len(proto.InitialMoves)),
		zap.Bool("debug", opts.Debug),
	)
	return g, nil
}

// Start begins play: the active player's clock runs from here on.
func (g *Game) Start() {
	if g.started {
		return
	}
	g.started = true
	g.emit(Event{Kind: EventGameStarted})
	if g.completed {
		return
	}
	g.timer.Start(g.Active())
	g.emit(Event{Kind: EventTurnStarted, Player: g.Active()})
}

// Subscribe registers an observer and returns a function removing it.
func (g *Game) Subscribe(o Observer) func() {
	sub := &subscriber{o}
	g.observers = append(g.observers, sub)
	return func() {
		for i, x := range g.observers {
			if x == sub {
				g.observers = append(g.observers[:i], g.observers[i+1:]...)
				return
			}
		}
	}
}

func (g *Game) ID() uuid.UUID { return g.id }

func (g *Game) Prototype() GamePrototype { return g.proto }

func (g *Game) Size() int { return g.proto.Size }

// Board returns the object board. Callers must not mutate it.
func (g *Game) Board() *ObjectBoard { return g.objects }

// Bits returns the bit board. Callers must not mutate it.
func (g *Game) Bits() *BitBoard { return g.bits }

// Reserve returns p's reserve.
func (g *Game) Reserve(p Player) *PlayerReserve { return g.reserves[p.idx()] }

// Ply is the number of executed moves.
func (g *Game) Ply() int { return len(g.executed) }

// Active is the player to move.
func (g *Game) Active() Player { return moverOf(len(g.executed)) }

// IsAI reports whether p's seat is played by the engine.
func (g *Game) IsAI(p Player) bool { return g.proto.Players[p.idx()].AI }

// History returns the executed moves, oldest first.
func (g *Game) History() []Move { return append([]Move(nil), g.executed...) }

// RedoMoves returns the undone moves, next redo first.
func (g *Game) RedoMoves() []Move {
	out := make([]Move, 0, len(g.reverted))
	for i := len(g.reverted) - 1; i >= 0; i-- {
		out = append(out, g.reverted[i])
	}
	return out
}

// Result is the evaluation of the current position.
func (g *Game) Result() GameResult { return g.result }

// FinalResult is the result recorded the first time the game ended. It
// survives undo.
func (g *Game) FinalResult() GameResult { return g.final }

// WasCompleted reports whether the game has ever reached a terminal result.
func (g *Game) WasCompleted() bool { return g.completed }

// InHand is the stone drawn but not yet placed, if any.
func (g *Game) InHand() *Stone { return g.inHand }

// InFlight is the stack move being built interactively, if any.
func (g *Game) InFlight() *StackMove { return g.grab }

// Timer returns the game clock.
func (g *Game) Timer() *Timer { return g.timer }

// moverOf is the player making the ply'th move (zero-based).
func moverOf(ply int) Player {
	if ply%2 == 0 {
		return PlayerOne
	}
	return PlayerTwo
}

func (g *Game) left() [2]int {
	return [2]int{g.reserves[0].Total(), g.reserves[1].Total()}
}

func (g *Game) emit(e Event) {
	if g.quiet {
		return
	}
	e.GameID = g.id
	e.Ply = len(g.executed)
	g.log.Debug("event",
		zap.Stringer("kind", e.Kind),
		zap.Int("ply", e.Ply),
		zap.Stringer("player", e.Player),
	)
	for _, o := range g.observers {
		o.OnEvent(e)
	}
}

// apply runs m on both boards, and the shadow board in debug mode.
func (g *Game) apply(m Move, redo bool) error {
	exec := g.objExec.Execute
	bexec := g.bitExec.Execute
	if redo {
		exec, bexec = g.objExec.Redo, g.bitExec.Redo
	}
	if err := exec(g.objects, m); err != nil {
		return err
	}
	if err := bexec(g.bits, m); err != nil {
		if uerr := g.objExec.Undo(g.objects, m); uerr != nil {
			g.log.Error("object board rollback failed", zap.Error(uerr))
		}
		return err
	}
	if g.shadow != nil {
		if err := g.shadowExec.Execute(g.shadow, m); err != nil {
			panic(fmt.Sprintf("shadow executor rejected %s: %v", m, err))
		}
	}
	g.check()
	return nil
}

// unapply reverts m on both boards.
func (g *Game) unapply(m Move) error {
	if err := g.bitExec.Undo(g.bits, m); err != nil {
		return err
	}
	if err := g.objExec.Undo(g.objects, m); err != nil {
		return err
	}
	if g.shadow != nil {
		if err := g.shadowExec.Undo(g.shadow, m); err != nil {
			panic(fmt.Sprintf("shadow executor cannot undo %s: %v", m, err))
		}
	}
	g.check()
	return nil
}

func (g *Game) check() {
	if g.debug {
		mustMatch(g.objects, g.bits, g.shadow)
	}
}

// executeMove draws the placed stone, applies m and records it.
func (g *Game) executeMove(m Move, redo bool) error {
	mover := g.Active()
	var drawn *Stone
	if pm, ok := m.(*PlacementMove); ok {
		id := AnonymousID
		if pm.Stone != nil {
			id = pm.Stone.ID
		}
		s, err := g.reserves[mover.idx()].Draw(pm.Kind(), id)
		if err != nil {
			return err
		}
		pm.Stone, drawn = s, s
	}
	if err := g.apply(m, redo); err != nil {
		if drawn != nil {
			if rerr := g.reserves[mover.idx()].Return(drawn); rerr != nil {
				g.log.Error("reserve rollback failed", zap.Error(rerr))
			}
		}
		return err
	}
	g.executed = append(g.executed, m)
	g.evaluate(mover)
	return nil
}

// undoMove reverts the last executed move and pushes it on the redo stack.
func (g *Game) undoMove() (Move, error) {
	m := g.executed[len(g.executed)-1]
	if err := g.unapply(m); err != nil {
		return nil, err
	}
	g.executed = g.executed[:len(g.executed)-1]
	if pm, ok := m.(*PlacementMove); ok {
		if err := g.reserves[moverOf(len(g.executed)).idx()].Return(pm.Stone); err != nil {
			return nil, err
		}
	}
	g.reverted = append(g.reverted, m)
	g.evaluate(moverOf(len(g.executed) - 1))
	return m, nil
}

// redoMove re-executes the most recently undone move.
func (g *Game) redoMove() (Move, error) {
	m := g.reverted[len(g.reverted)-1]
	if err := g.executeMove(m, true); err != nil {
		return nil, err
	}
	g.reverted = g.reverted[:len(g.reverted)-1]
	return m, nil
}

// evaluate refreshes the current result after mover's ply and latches the
// final result the first time the game ends.
func (g *Game) evaluate(mover Player) {
	if len(g.executed) == 0 {
		mover = PlayerNone
	}
	timedOut := PlayerNone
	if g.completed && g.final.WinType == WinTime {
		timedOut = g.final.Winner.Opponent()
	}
	g.result = Evaluate(g.bits, g.left(), mover, timedOut)
	if g.result.Terminal() && !g.completed {
		g.complete()
	}
}

func (g *Game) complete() {
	g.completed = true
	g.final = g.result
	g.timer.Stop()
	g.log.Info("game completed",
		zap.Stringer("result", g.result),
		zap.Int("ply", len(g.executed)),
	)
}

// revertPreview takes back an interactive draw or grab on the object board.
func (g *Game) revertPreview() error {
	if g.inHand != nil {
		if err := g.reserves[g.inHand.Owner.idx()].Return(g.inHand); err != nil {
			return err
		}
		g.inHand = nil
	}
	if g.grab != nil {
		for len(g.grab.dropped) > 0 {
			g.objects.undropLast(g.grab)
		}
		g.objects.ungrab(g.grab)
		g.grab.flattened = nil
		g.grab = nil
	}
	return nil
}

func (g *Game) onTimerExpired(p Player) {
	g.dispatch(func() { g.HandleTimeout(p) })
}

func (g *Game) enqueue(f func()) {
	g.queueMu.Lock()
	g.queued = append(g.queued, f)
	g.queueMu.Unlock()
}

// Poll runs queued asynchronous work on the caller's goroutine and returns
// how many tasks ran. Every operation that changes the game polls first.
func (g *Game) Poll() int {
	g.queueMu.Lock()
	work := g.queued
	g.queued = nil
	g.queueMu.Unlock()
	for _, f := range work {
		f()
	}
	return len(work)
}

// Pending returns the number of queued tasks waiting for Poll.
func (g *Game) Pending() int {
	g.queueMu.Lock()
	defer g.queueMu.Unlock()
	return len(g.queued)
}

// sortedCells returns the set in board index order.
func (g *Game) sortedCells(set map[Coord]struct{}) []Coord {
	out := make([]Coord, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	size := g.proto.Size
	sort.Slice(out, func(i, j int) bool { return out[i].Index(size) < out[j].Index(size) })
	return out
}
