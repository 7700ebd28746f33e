package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartingStones(t *testing.T) {
	c, ok := StartingStones(5)
	require.True(t, ok)
	assert.Equal(t, StoneCounts{Flats: 21, Caps: 1}, c)
	_, ok = StartingStones(9)
	assert.False(t, ok)
}

func TestReservesHaveUniqueIDs(t *testing.T) {
	rs, err := newReserves(8)
	require.NoError(t, err)
	seen := make(map[int]Player)
	for _, r := range rs {
		for _, kind := range []StoneKind{Flat, Cap} {
			for r.AvailableCount(kind) > 0 {
				s, err := r.Draw(kind, AnonymousID)
				require.NoError(t, err)
				_, dup := seen[s.ID]
				require.False(t, dup, "stone %d drawn twice", s.ID)
				seen[s.ID] = s.Owner
				assert.Equal(t, r.Owner(), s.Owner)
			}
		}
		assert.Zero(t, r.Total())
	}
	assert.Len(t, seen, 2*(50+2))

	_, err = newReserves(2)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestReserveDrawAndReturn(t *testing.T) {
	r := NewPlayerReserve(PlayerTwo, StoneCounts{Flats: 3, Caps: 1}, 10)
	assert.Equal(t, 4, r.Total())

	s, err := r.Draw(Standing, AnonymousID)
	require.NoError(t, err)
	assert.Equal(t, 12, s.ID, "highest free slot is drawn first")
	assert.Equal(t, Standing, s.Kind)
	assert.Equal(t, 2, r.AvailableCount(Flat))
	assert.Equal(t, 2, r.AvailableCount(Standing))

	_, err = r.Draw(Flat, 12)
	assert.ErrorIs(t, err, ErrIllegalMove)

	c, err := r.Draw(Cap, AnonymousID)
	require.NoError(t, err)
	assert.Equal(t, 13, c.ID)
	assert.Equal(t, Cap, c.Kind)
	assert.True(t, r.Holds(Flat, 11))
	assert.False(t, r.Holds(Flat, 12), "drawn stones are not held")
	assert.False(t, r.Holds(Flat, 13), "cap IDs are not in the flat pool")
	_, err = r.Draw(Cap, AnonymousID)
	assert.ErrorIs(t, err, ErrIllegalMove)

	require.NoError(t, r.Return(s))
	assert.ErrorIs(t, r.Return(s), ErrIllegalMove)
	require.NoError(t, r.Return(c))
	assert.Equal(t, 4, r.Total())

	again, err := r.Draw(Flat, 12)
	require.NoError(t, err)
	assert.Same(t, s, again)
	assert.Equal(t, Flat, again.Kind)

	foreign := &Stone{ID: 0, Owner: PlayerOne}
	assert.ErrorIs(t, r.Return(foreign), ErrIllegalMove)
	assert.Equal(t, 3, r.StartingCount(Flat))
	assert.Equal(t, 1, r.StartingCount(Cap))
}
