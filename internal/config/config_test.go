package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crasshacker/STak-sub000/internal/game"
	"github.com/crasshacker/STak-sub000/internal/search"
)

func TestDefaultConfigIsValid(t *testing.T) {
	c := DefaultConfig
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(c *Config)
	}{
		{"size", func(c *Config) { c.Game.BoardSize = 9 }},
		{"time", func(c *Config) { c.Game.InitialSeconds = -1 }},
		{"chooser", func(c *Config) { c.Game.Players[1].Chooser = "oracle" }},
		{"executor", func(c *Config) { c.Engine.Executor = "magic" }},
		{"workers", func(c *Config) { c.Engine.Workers = -2 }},
		{"log", func(c *Config) { c.Log.Level = "chatty" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig
			tt.edit(&c)
			err := c.Validate()
			var invalid *InvalidConfig
			require.ErrorAs(t, err, &invalid)
			assert.ErrorIs(t, err, game.ErrInvalidConfiguration)
		})
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"game":{"board_size":6,"initial_seconds":300,"increment_seconds":5},"engine":{"executor":"clone"}}`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, c.Game.BoardSize)
	assert.Equal(t, "clone", c.Engine.Executor)
	assert.Equal(t, "info", c.Log.Level)

	proto, err := c.Prototype()
	require.NoError(t, err)
	assert.Equal(t, 6, proto.Size)
	assert.Equal(t, 5*time.Minute, proto.Timer.Initial)
	assert.Equal(t, 5*time.Second, proto.Timer.Increment)
	assert.True(t, proto.Players[1].AI)
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"game":`), 0o644))
	_, err := Load(path)
	var invalid *InvalidConfig
	assert.ErrorAs(t, err, &invalid)
}

func TestPrototypeWithOpening(t *testing.T) {
	dir := t.TempDir()
	opening := filepath.Join(dir, "opening.txt")
	require.NoError(t, os.WriteFile(opening, []byte("[Size \"5\"]\n\na1\ne5\n"), 0o644))

	c := DefaultConfig
	c.Game.OpeningFile = opening
	proto, err := c.Prototype()
	require.NoError(t, err)
	require.Len(t, proto.InitialMoves, 2)

	g, err := game.New(proto, c.Options(nil))
	require.NoError(t, err)
	assert.Equal(t, 2, g.Ply())

	c.Game.BoardSize = 6
	_, err = c.Prototype()
	assert.Error(t, err)
}

func TestChooser(t *testing.T) {
	c := DefaultConfig
	c.Engine.Workers = 3
	assert.Nil(t, c.Chooser(game.PlayerOne))
	rs, ok := c.Chooser(game.PlayerTwo).(*search.RoadSeeker)
	require.True(t, ok)
	assert.Equal(t, 3, rs.Workers)

	c.Game.Players[1].Chooser = "random"
	_, ok = c.Chooser(game.PlayerTwo).(*search.RandomChooser)
	assert.True(t, ok)
}

func TestNewLogger(t *testing.T) {
	c := DefaultConfig
	c.Log.Level = "debug"
	c.Log.File = filepath.Join(t.TempDir(), "stak.log")
	logger, err := c.NewLogger()
	require.NoError(t, err)
	logger.Debug("hello")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(c.Log.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}
