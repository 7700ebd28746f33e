package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/crasshacker/STak-sub000/internal/game"
	"github.com/crasshacker/STak-sub000/internal/notation"
	"github.com/crasshacker/STak-sub000/internal/search"
)

var (
	cfgFile = "stak/config.json"
)

type InvalidConfig struct {
	err string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("Config error: %s", e.err)
}

// Unwrap lets callers match game.ErrInvalidConfiguration.
func (e *InvalidConfig) Unwrap() error { return game.ErrInvalidConfiguration }

type PlayerConfig struct {
	Name    string `json:"name"`
	AI      bool   `json:"ai"`
	Chooser string `json:"chooser"`
}

type GameConfig struct {
	BoardSize        int             `json:"board_size"`
	Players          [2]PlayerConfig `json:"players"`
	InitialSeconds   int             `json:"initial_seconds"`
	IncrementSeconds int             `json:"increment_seconds"`
	OpeningFile      string          `json:"opening_file"`
}

type EngineConfig struct {
	Debug    bool   `json:"debug"`
	Executor string `json:"executor"`
	Workers  int    `json:"workers"`
	Seed     int64  `json:"seed"`
}

type LogConfig struct {
	Level       string `json:"level"`
	Development bool   `json:"development"`
	File        string `json:"file"`
}

type Config struct {
	Game   GameConfig   `json:"game"`
	Engine EngineConfig `json:"engine"`
	Log    LogConfig    `json:"log"`
}

// InitConfig loads the user's config file over the defaults.
func InitConfig() (*Config, error) {
	config := DefaultConfig
	absPath, err := xdg.SearchConfigFile(cfgFile)
	if err == nil {
		if err := readCfgFile(absPath, &config); err != nil {
			return nil, err
		}
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Load reads the config at path over the defaults.
func Load(path string) (*Config, error) {
	config := DefaultConfig
	if err := readCfgFile(path, &config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	if _, ok := game.StartingStones(c.Game.BoardSize); !ok {
		return &InvalidConfig{fmt.Sprintf("board size %d is not supported", c.Game.BoardSize)}
	}
	if c.Game.InitialSeconds < 0 || c.Game.IncrementSeconds < 0 {
		return &InvalidConfig{"time settings must not be negative"}
	}
	for i, p := range c.Game.Players {
		if p.AI {
			if _, ok := choosers[p.Chooser]; !ok {
				return &InvalidConfig{fmt.Sprintf("player %d: unknown chooser %q", i+1, p.Chooser)}
			}
		}
	}
	switch c.Engine.Executor {
	case game.ExecutorInPlace, game.ExecutorClone:
	default:
		return &InvalidConfig{fmt.Sprintf("unknown executor %q", c.Engine.Executor)}
	}
	if c.Engine.Workers < 0 {
		return &InvalidConfig{"workers must not be negative"}
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return &InvalidConfig{fmt.Sprintf("log level: %v", err)}
	}
	return nil
}

// Save writes the config to the user's config directory.
func (c *Config) Save() error {
	absPath, err := xdg.ConfigFile(cfgFile)
	if err != nil {
		return err
	}
	return saveCfgFile(absPath, c, 0664)
}

// Prototype builds the game description, replaying the opening file if set.
func (c *Config) Prototype() (game.GamePrototype, error) {
	proto := game.GamePrototype{
		Size: c.Game.BoardSize,
		Timer: game.TimerConfig{
			Initial:   time.Duration(c.Game.InitialSeconds) * time.Second,
			Increment: time.Duration(c.Game.IncrementSeconds) * time.Second,
		},
	}
	for i, p := range c.Game.Players {
		proto.Players[i] = game.PlayerInfo{Name: p.Name, AI: p.AI}
	}
	if c.Game.OpeningFile != "" {
		rec, err := notation.ReadFile(c.Game.OpeningFile)
		if err != nil {
			return game.GamePrototype{}, fmt.Errorf("opening file: %w", err)
		}
		if n := rec.Size(); n != 0 && n != c.Game.BoardSize {
			return game.GamePrototype{}, &InvalidConfig{fmt.Sprintf("opening is for size %d, not %d", n, c.Game.BoardSize)}
		}
		proto.InitialMoves = rec.Moves
	}
	return proto, nil
}

// Options builds the runtime options for a game.
func (c *Config) Options(logger *zap.Logger) game.Options {
	return game.Options{
		Logger:   logger,
		Debug:    c.Engine.Debug,
		Executor: c.Engine.Executor,
	}
}

var choosers = map[string]func(e EngineConfig) game.MoveChooser{
	"random": func(e EngineConfig) game.MoveChooser { return search.NewRandom(e.Seed) },
	"roadseeker": func(e EngineConfig) game.MoveChooser {
		r := search.NewRoadSeeker(e.Seed)
		r.Workers = e.Workers
		return r
	},
}

// Chooser returns the engine for seat p, or nil for a human seat.
func (c *Config) Chooser(p game.Player) game.MoveChooser {
	seat := c.Game.Players[0]
	if p == game.PlayerTwo {
		seat = c.Game.Players[1]
	}
	if !seat.AI {
		return nil
	}
	return choosers[seat.Chooser](c.Engine)
}

// NewLogger builds the zap logger described by the log section.
func (c *Config) NewLogger() (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	if c.Log.File != "" {
		zc.OutputPaths = []string{c.Log.File}
	}
	return zc.Build()
}

func saveCfgFile(filePath string, a interface{}, perm fs.FileMode) error {
	jsonData, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return err
	}
	return os.WriteFile(filePath, jsonData, perm)
}

func readCfgFile(filePath string, a interface{}) error {
	data, err := os.ReadFile(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, a); err != nil {
		return &InvalidConfig{fmt.Sprintf("%s: %v", filePath, err)}
	}
	return nil
}
