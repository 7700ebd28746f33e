package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomGame plays up to plies random legal moves with lockstep checking on.
func randomGame(t *testing.T, size int, exec string, r *rand.Rand, plies int) *Game {
	t.Helper()
	g, err := New(GamePrototype{Size: size}, Options{Debug: true, Executor: exec})
	require.NoError(t, err)
	for i := 0; i < plies && !g.Result().Terminal(); i++ {
		moves := g.LegalMoves()
		require.NotEmpty(t, moves)
		m := moves[r.Intn(len(moves))]
		require.NoError(t, g.MakeMove(g.Active(), m), "ply %d: %s", g.Ply()+1, m)
	}
	return g
}

func TestBoardsStayInLockstep(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for size := MinBoardSize; size <= MaxBoardSize; size++ {
		for _, exec := range []string{ExecutorInPlace, ExecutorClone} {
			for n := 0; n < 4; n++ {
				g := randomGame(t, size, exec, r, 300)
				require.NoError(t, CompareBoards(g.Board(), g.Bits()))

				final := g.Bits().Clone()
				plies := g.Ply()
				require.NoError(t, g.SetCurrentTurn(0))
				assert.Zero(t, g.Bits().OccupancyCount())
				start, _ := StartingStones(size)
				for _, p := range []Player{PlayerOne, PlayerTwo} {
					assert.Equal(t, start.Flats, g.Reserve(p).AvailableCount(Flat))
					assert.Equal(t, start.Caps, g.Reserve(p).AvailableCount(Cap))
				}

				require.NoError(t, g.SetCurrentTurn(plies))
				assert.True(t, final.Equal(g.Bits()), "size %d %s", size, exec)
			}
		}
	}
}

func TestApplyUnapplyRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for size := MinBoardSize; size <= MaxBoardSize; size++ {
		g := randomGame(t, size, ExecutorInPlace, r, 4*size)
		if g.Result().Terminal() {
			continue
		}
		s := g.Snapshot(false)
		before := s.Bits.Clone()
		for _, m := range s.LegalMoves() {
			require.NoError(t, s.Play(m), "%s", m)
			require.NoError(t, s.Unplay(m), "%s", m)
			require.True(t, before.Equal(s.Bits), "%s changed the board", m)
		}
	}
}

func TestCloneExecutorRestoresSnapshots(t *testing.T) {
	b := NewBitBoard(4)
	exec := &CloneExecutor{}
	moves := []Move{
		&PlacementMove{Target: Coord{0, 0}, Stone: &Stone{ID: 0, Owner: PlayerOne}},
		&PlacementMove{Target: Coord{1, 0}, Stone: &Stone{ID: 20, Owner: PlayerTwo}},
		NewStackMove(Coord{0, 0}, East, 1),
	}
	var boards []*BitBoard
	for _, m := range moves {
		boards = append(boards, b.Clone())
		require.NoError(t, exec.Execute(b, m))
	}
	assert.Equal(t, 3, exec.Depth())
	assert.Equal(t, 2, b.StackHeight(Coord{1, 0}))
	for i := len(moves) - 1; i >= 0; i-- {
		require.NoError(t, exec.Undo(b, moves[i]))
		assert.True(t, boards[i].Equal(b))
		assert.False(t, moves[i].Executed())
	}
	assert.ErrorIs(t, exec.Undo(b, moves[0]), ErrIllegalMove)
}

func TestCheckDropHeightLimit(t *testing.T) {
	b := NewBitBoard(5)
	c := Coord{1, 0}
	i := c.Index(5)
	b.Height[i] = MaxStackHeight - 1
	b.setTop(i, Flat)

	assert.NoError(t, b.checkDrop(c, 1, true, Flat))
	assert.ErrorIs(t, b.checkDrop(c, 2, true, Flat), ErrIllegalMove)
}

func TestCheckStack(t *testing.T) {
	b := NewBitBoard(5)
	place := func(c Coord, owner Player, kind StoneKind) {
		require.NoError(t, b.Apply(&PlacementMove{Target: c, Stone: &Stone{Owner: owner, Kind: kind}}))
	}
	place(Coord{0, 0}, PlayerOne, Cap)
	place(Coord{1, 0}, PlayerTwo, Standing)
	place(Coord{0, 1}, PlayerTwo, Flat)
	place(Coord{0, 2}, PlayerOne, Cap)

	tests := []struct {
		name  string
		mv    *StackMove
		mover Player
		ok    bool
	}{
		{"cap flattens wall", NewStackMove(Coord{0, 0}, East, 1), PlayerOne, true},
		{"not owner", NewStackMove(Coord{0, 0}, East, 1), PlayerTwo, false},
		{"wall onto capstone", NewStackMove(Coord{1, 0}, West, 1), PlayerTwo, false},
		{"flat onto capstone", NewStackMove(Coord{0, 1}, North, 1), PlayerTwo, false},
		{"onto empty", NewStackMove(Coord{0, 1}, East, 1), PlayerTwo, true},
		{"off board", NewStackMove(Coord{0, 0}, West, 1), PlayerOne, false},
		{"carry too many", NewStackMove(Coord{0, 0}, North, 2), PlayerOne, false},
		{"empty start", NewStackMove(Coord{3, 3}, North, 1), PlayerOne, false},
		{"no drops", &StackMove{Start: Coord{0, 0}, Dir: North, Count: 1}, PlayerOne, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.CheckStack(tt.mv, tt.mover)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrIllegalMove)
			}
		})
	}
}

func TestStackWordsFollowDrops(t *testing.T) {
	b := NewBitBoard(5)
	// one:a1 two:a1 one:a1 -> three stones, then carry all east 1,2
	for _, owner := range []Player{PlayerOne, PlayerTwo, PlayerOne} {
		i := Coord{0, 0}.Index(5)
		b.Stacks[i] |= ownerBit(owner) << b.Height[i]
		b.Height[i]++
		b.setTop(i, Flat)
	}
	mv := NewStackMove(Coord{0, 0}, East, 1, 2)
	require.NoError(t, b.Apply(mv))

	assert.Zero(t, b.StackHeight(Coord{0, 0}))
	b1 := b.StackAt(Coord{1, 0})
	require.Len(t, b1, 1)
	assert.Equal(t, PlayerOne, b1[0].Owner)
	c1 := b.StackAt(Coord{2, 0})
	require.Len(t, c1, 2)
	assert.Equal(t, PlayerTwo, c1[0].Owner)
	assert.Equal(t, PlayerOne, c1[1].Owner)
	assert.Equal(t, PlayerOne, b.TopAt(Coord{2, 0}).Owner)

	require.NoError(t, b.Unapply(mv))
	a1 := b.StackAt(Coord{0, 0})
	require.Len(t, a1, 3)
	assert.Equal(t, []Player{PlayerOne, PlayerTwo, PlayerOne}, []Player{a1[0].Owner, a1[1].Owner, a1[2].Owner})
	assert.Equal(t, 1, b.OccupancyCount())
}

func TestMasksDoNotWrap(t *testing.T) {
	m := MasksFor(4)
	east := uint64(1) << 3 // d1
	got := m.grow(east, m.Board)
	assert.Equal(t, uint64(1)<<3|uint64(1)<<2|uint64(1)<<7, got)

	west := uint64(1) << 4 // a2
	got = m.grow(west, m.Board)
	assert.Equal(t, uint64(1)<<4|uint64(1)<<5|uint64(1)<<0|uint64(1)<<8, got)

	full := MasksFor(8)
	assert.Equal(t, ^uint64(0), full.Board)
	assert.Equal(t, uint64(0xff), full.South)
	assert.Equal(t, uint64(0xff)<<56, full.North)
}
