package config

var DefaultConfig Config

func init() {
	DefaultConfig = Config{
		Game: GameConfig{
			BoardSize: 5,
			Players: [2]PlayerConfig{
				{Name: "Player 1"},
				{Name: "Engine", AI: true, Chooser: "roadseeker"},
			},
		},
		Engine: EngineConfig{
			Executor: "inplace",
			Seed:     1,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
