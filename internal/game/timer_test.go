package game_test

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crasshacker/STak-sub000/internal/game"
)

func TestTimerDisabled(t *testing.T) {
	tm := game.NewTimer(clock.NewMock(), game.TimerConfig{}, nil)
	assert.False(t, tm.Enabled())
	tm.Start(game.PlayerOne)
	tm.Moved(game.PlayerOne)
	assert.Zero(t, tm.Remaining(game.PlayerOne))
	assert.Equal(t, game.PlayerNone, tm.Expired())
}

func TestTimerCharging(t *testing.T) {
	mock := clock.NewMock()
	expired := make(chan game.Player, 1)
	tm := game.NewTimer(mock, game.TimerConfig{Initial: 10 * time.Second, Increment: 2 * time.Second},
		func(p game.Player) { expired <- p })

	tm.Start(game.PlayerOne)
	mock.Add(4 * time.Second)
	assert.Equal(t, 6*time.Second, tm.Remaining(game.PlayerOne))
	assert.Equal(t, 10*time.Second, tm.Remaining(game.PlayerTwo))

	tm.Moved(game.PlayerOne)
	assert.Equal(t, 8*time.Second, tm.Remaining(game.PlayerOne))
	mock.Add(3 * time.Second)
	assert.Equal(t, 7*time.Second, tm.Remaining(game.PlayerTwo))

	tm.Stop()
	mock.Add(time.Minute)
	assert.Equal(t, 7*time.Second, tm.Remaining(game.PlayerTwo))

	tm.Start(game.PlayerTwo)
	mock.Add(7 * time.Second)
	select {
	case p := <-expired:
		assert.Equal(t, game.PlayerTwo, p)
	case <-time.After(5 * time.Second):
		t.Fatal("timer did not fire")
	}
	assert.Equal(t, game.PlayerTwo, tm.Expired())
	assert.Zero(t, tm.Remaining(game.PlayerTwo))
	assert.Equal(t, 8*time.Second, tm.Remaining(game.PlayerOne))
}

func TestGameTimeout(t *testing.T) {
	mock := clock.NewMock()
	work := make(chan func(), 1)
	rec := &recorder{}
	proto := game.GamePrototype{Size: 5, Timer: game.TimerConfig{Initial: time.Minute}}
	g, err := game.New(proto, game.Options{
		Debug:     true,
		Clock:     mock,
		Dispatch:  func(f func()) { work <- f },
		Observers: []game.Observer{rec},
	})
	require.NoError(t, err)
	g.Start()

	mock.Add(10 * time.Second)
	play(t, g, "a1")
	assert.Equal(t, 50*time.Second, g.Timer().Remaining(game.PlayerOne))

	rec.reset()
	mock.Add(time.Minute)
	select {
	case f := <-work:
		f()
	case <-time.After(5 * time.Second):
		t.Fatal("timeout was not dispatched")
	}

	r := g.Result()
	assert.Equal(t, game.WinTime, r.WinType)
	assert.Equal(t, game.PlayerOne, r.Winner)
	assert.Equal(t, []game.EventKind{game.EventTimedOut, game.EventGameCompleted}, rec.kinds())
	assert.Equal(t, game.PlayerTwo, rec.events[0].Player)

	err = g.MakeMove(game.PlayerTwo, moves(t, "e5")[0])
	assert.ErrorIs(t, err, game.ErrIllegalMove)

	_, err = g.Undo(game.PlayerOne)
	require.NoError(t, err)
	assert.Equal(t, game.WinTime, g.Result().WinType, "a time loss survives undo")

	rec.reset()
	g.HandleTimeout(game.PlayerOne)
	assert.Empty(t, rec.events, "only the first timeout counts")
}

func TestTimeoutQueuedWithoutDispatch(t *testing.T) {
	mock := clock.NewMock()
	rec := &recorder{}
	proto := game.GamePrototype{Size: 5, Timer: game.TimerConfig{Initial: time.Minute}}
	g, err := game.New(proto, game.Options{Clock: mock, Observers: []game.Observer{rec}})
	require.NoError(t, err)
	g.Start()
	play(t, g, "a1")

	rec.reset()
	mock.Add(2 * time.Minute)
	require.Eventually(t, func() bool { return g.Pending() == 1 }, 5*time.Second, time.Millisecond)
	assert.False(t, g.Result().Terminal(), "expiry waits for the owner")
	assert.Empty(t, rec.events)

	err = g.MakeMove(game.PlayerTwo, moves(t, "e5")[0])
	assert.ErrorIs(t, err, game.ErrIllegalMove)
	assert.Zero(t, g.Pending())
	assert.Equal(t, game.WinTime, g.Result().WinType)
	assert.Equal(t, game.PlayerOne, g.Result().Winner)
	assert.Equal(t, []game.EventKind{game.EventTimedOut, game.EventGameCompleted}, rec.kinds())
	assert.Zero(t, g.Poll())
}
