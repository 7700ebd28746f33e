package notation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crasshacker/STak-sub000/internal/game"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"c3", "c3"},
		{"Fc3", "c3"},
		{"Sa1", "Sa1"},
		{"Ce5", "Ce5"},
		{"a1>", "1a1>1"},
		{"3c3+", "3c3+3"},
		{"3c3<12", "3c3<12"},
		{"2b2-11", "2b2-11"},
		{"c3'", "c3"},
	}
	for _, tt := range tests {
		m, err := Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, Format(m), tt.in)
	}
}

func TestParseStackMove(t *testing.T) {
	m, err := Parse("4d4<211")
	require.NoError(t, err)
	sm, ok := m.(*game.StackMove)
	require.True(t, ok)
	assert.Equal(t, game.Coord{File: 3, Rank: 3}, sm.Start)
	assert.Equal(t, game.West, sm.Dir)
	assert.Equal(t, 4, sm.Count)
	assert.Equal(t, []int{2, 1, 1}, sm.DropCounts())
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{
		"",
		"z",
		"3c3",
		"Sc3>",
		"c3^",
		"2c3>3",
		"2c3>0",
		"4c3>12",
		"?",
	} {
		_, err := Parse(in)
		assert.Error(t, err, in)
	}
}

func TestGameRoundTrip(t *testing.T) {
	moves := []game.Move{
		game.NewPlacement(game.Coord{File: 0, Rank: 0}, game.Flat),
		game.NewPlacement(game.Coord{File: 4, Rank: 4}, game.Flat),
		game.NewPlacement(game.Coord{File: 2, Rank: 2}, game.Cap),
		game.NewStackMove(game.Coord{File: 4, Rank: 4}, game.South, 1),
	}
	text := FormatGame(map[string]string{"Size": "5", "Player1": "alice"}, moves)
	assert.True(t, strings.HasPrefix(text, "[Player1 \"alice\"]\n[Size \"5\"]\n"))

	rec, err := ParseGame(strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, 5, rec.Size())
	assert.Equal(t, "alice", rec.Tags["Player1"])
	require.Len(t, rec.Moves, len(moves))
	for i := range moves {
		assert.Equal(t, Format(moves[i]), Format(rec.Moves[i]))
	}
}

func TestParseGameLoose(t *testing.T) {
	text := `[Size "4"]
1. a1 d4 {opening}
2. b2 { a longer
comment } c3
3. 1b2> R-0
`
	rec, err := ParseGame(strings.NewReader(text))
	require.NoError(t, err)
	got := make([]string, 0, len(rec.Moves))
	for _, m := range rec.Moves {
		got = append(got, Format(m))
	}
	assert.Equal(t, []string{"a1", "d4", "b2", "c3", "1b2>1"}, got)
}

func TestParseGameBadTag(t *testing.T) {
	_, err := ParseGame(strings.NewReader("[Size 5]\n"))
	assert.Error(t, err)
}

func TestRecordReplays(t *testing.T) {
	rec, err := ParseGame(strings.NewReader("a1\ne5\nb1\n1e5-\n"))
	require.NoError(t, err)
	g, err := game.New(game.GamePrototype{Size: 5, InitialMoves: rec.Moves}, game.Options{Debug: true})
	require.NoError(t, err)
	assert.Equal(t, 4, g.Ply())
	assert.Equal(t, 1, g.Bits().StackHeight(game.Coord{File: 4, Rank: 3}))
}
