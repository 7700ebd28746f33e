package game

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// boardOf builds a bit board from rows written top rank first: '1'/'2' flat,
// 'S'/'s' standing, 'C'/'c' capstone (upper case player one), '.' empty.
func boardOf(t *testing.T, rows ...string) *BitBoard {
	t.Helper()
	size := len(rows)
	b := NewBitBoard(size)
	for k, row := range rows {
		require.Len(t, row, size)
		for f, ch := range row {
			if ch == '.' {
				continue
			}
			s := &Stone{Owner: PlayerOne}
			switch ch {
			case '2', 's', 'c':
				s.Owner = PlayerTwo
			}
			switch ch {
			case 'S', 's':
				s.Kind = Standing
			case 'C', 'c':
				s.Kind = Cap
			}
			c := Coord{File: f, Rank: size - 1 - k}
			require.NoError(t, b.Apply(&PlacementMove{Target: c, Stone: s}))
		}
	}
	return b
}

func TestHasRoad(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		one  bool
		two  bool
	}{
		{"empty", []string{"...", "...", "..."}, false, false},
		{"straight north-south", []string{".1.", ".1.", ".1."}, true, false},
		{"straight east-west", []string{"...", "222", "..."}, false, true},
		{"winding", []string{
			"1....",
			"11...",
			".1...",
			".111.",
			"...1.",
		}, true, false},
		{"capstone counts", []string{".1.", ".C.", ".1."}, true, false},
		{"standing blocks", []string{".1.", ".S.", ".1."}, false, false},
		{"diagonal is not connected", []string{"..1", ".1.", "1.."}, false, false},
		{"no wrap across ranks", []string{
			"....",
			"1...",
			".111",
			"....",
		}, false, false},
		{"both", []string{"1.2", "1.2", "1.2"}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := boardOf(t, tt.rows...)
			assert.Equal(t, tt.one, b.HasRoad(PlayerOne))
			assert.Equal(t, tt.two, b.HasRoad(PlayerTwo))
		})
	}
}

func TestGetRoadIsLocallyMinimal(t *testing.T) {
	b := boardOf(t,
		"..1..",
		".111.",
		"11111",
		".111.",
		"..1..",
	)
	road, ok := b.GetRoad(PlayerOne)
	require.True(t, ok)
	m := b.Masks()
	require.True(t, m.spans(road))
	assert.Subset(t, b.Cells(b.RoadMask(PlayerOne)), b.Cells(road))
	// removing any single cell must break the road
	for rest := road; rest != 0; rest &= rest - 1 {
		bit := rest & -rest
		_, spans := m.spanningIsland(road &^ bit)
		assert.False(t, spans, "cell %s is redundant", CoordOf(bits.TrailingZeros64(bit), b.Size()))
	}
	assert.Equal(t, b.Cells(road), b.RoadCells(PlayerOne))
	assert.Nil(t, b.RoadCells(PlayerTwo))
}

func TestRoadExtents(t *testing.T) {
	b := boardOf(t,
		"2....",
		"2.11.",
		"...1.",
		"111..",
		".....",
	)
	files, ranks := b.RoadExtents(PlayerOne)
	assert.Equal(t, 3, files)
	assert.Equal(t, 2, ranks)
	f2, r2 := b.RoadExtents(PlayerTwo)
	assert.Equal(t, 1, f2)
	assert.Equal(t, 2, r2)

	islands := b.Masks().Islands(b.RoadMask(PlayerOne))
	assert.Len(t, islands, 2)
}

func TestEvaluate(t *testing.T) {
	size := 3
	full := [2]int{10, 10}

	t.Run("in progress", func(t *testing.T) {
		r := Evaluate(boardOf(t, "1..", "...", "..2"), full, PlayerTwo, PlayerNone)
		assert.False(t, r.Terminal())
		assert.Equal(t, Extents{1, 1}, r.ExtentsOf(PlayerOne))
	})
	t.Run("road", func(t *testing.T) {
		r := Evaluate(boardOf(t, "1.2", "1.2", "1.."), [2]int{7, 8}, PlayerOne, PlayerNone)
		assert.Equal(t, PlayerOne, r.Winner)
		assert.Equal(t, WinRoad, r.WinType)
		assert.Equal(t, size*size+7, r.Score)
		assert.Equal(t, Extents{1, 3}, r.ExtentsOf(PlayerOne))
	})
	t.Run("double road goes to the mover's opponent", func(t *testing.T) {
		b := boardOf(t, "1.2", "1.2", "1.2")
		assert.Equal(t, PlayerOne, Evaluate(b, full, PlayerTwo, PlayerNone).Winner)
		assert.Equal(t, PlayerTwo, Evaluate(b, full, PlayerOne, PlayerNone).Winner)
	})
	t.Run("road beats an emptied reserve", func(t *testing.T) {
		r := Evaluate(boardOf(t, "1..", "1..", "1.2"), [2]int{0, 5}, PlayerOne, PlayerNone)
		assert.Equal(t, WinRoad, r.WinType)
		assert.Equal(t, PlayerOne, r.Winner)
		assert.Equal(t, size*size, r.Score)
	})
	t.Run("road beats a full board", func(t *testing.T) {
		b := boardOf(t, "111", "22S", "2s2")
		require.True(t, b.IsFull())
		require.Greater(t, b.FlatCount(PlayerTwo), b.FlatCount(PlayerOne))
		r := Evaluate(b, [2]int{4, 5}, PlayerOne, PlayerNone)
		assert.Equal(t, WinRoad, r.WinType)
		assert.Equal(t, PlayerOne, r.Winner)
		assert.Equal(t, size*size+4, r.Score)
	})
	t.Run("flat win on full board", func(t *testing.T) {
		r := Evaluate(boardOf(t, "121", "S22", "1s1"), [2]int{3, 4}, PlayerOne, PlayerNone)
		assert.Equal(t, WinFlat, r.WinType)
		assert.Equal(t, PlayerOne, r.Winner)
		assert.Equal(t, size*size+3, r.Score)
	})
	t.Run("flat win on empty reserve", func(t *testing.T) {
		r := Evaluate(boardOf(t, "2..", "...", "..."), [2]int{0, 5}, PlayerOne, PlayerNone)
		assert.Equal(t, WinFlat, r.WinType)
		assert.Equal(t, PlayerTwo, r.Winner)
	})
	t.Run("draw", func(t *testing.T) {
		r := Evaluate(boardOf(t, "12.", "...", "..."), [2]int{0, 3}, PlayerTwo, PlayerNone)
		assert.Equal(t, WinDraw, r.WinType)
		assert.Equal(t, PlayerNone, r.Winner)
		assert.Zero(t, r.Score)
	})
	t.Run("time beats road", func(t *testing.T) {
		r := Evaluate(boardOf(t, "1..", "1..", "1.."), full, PlayerOne, PlayerOne)
		assert.Equal(t, PlayerTwo, r.Winner)
		assert.Equal(t, WinTime, r.WinType)
	})
}
