// cmd/selfplay/main.go
// Plays engine-vs-engine games in parallel with lockstep checking enabled,
// scrubs each finished game back to the start and forward again, and
// reports how the games ended.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/crasshacker/STak-sub000/internal/config"
	"github.com/crasshacker/STak-sub000/internal/game"
	"github.com/crasshacker/STak-sub000/internal/notation"
	"github.com/crasshacker/STak-sub000/internal/search"
)

const maxPlies = 1000

type tally struct {
	mu        sync.Mutex
	byWinType map[game.WinType]int
	byWinner  map[game.Player]int
	abandoned int
	plies     int
}

func (t *tally) add(r game.GameResult, plies int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.plies += plies
	if !r.Terminal() {
		t.abandoned++
		return
	}
	t.byWinType[r.WinType]++
	t.byWinner[r.Winner]++
}

func main() {
	numGames := flag.Int("n", 100, "number of games")
	workers := flag.Int("workers", 0, "concurrent games (default CPU/2, at least 1)")
	size := flag.Int("size", 0, "board size (default from config)")
	chooserName := flag.String("chooser", "random", "random or roadseeker")
	outDir := flag.String("out", "", "directory for game records")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	cfgPath := flag.String("config", "", "config file (default: user config)")
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *size != 0 {
		cfg.Game.BoardSize = *size
	}
	cfg.Game.OpeningFile = ""
	cfg.Game.InitialSeconds = 0
	cfg.Engine.Debug = true
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *workers <= 0 {
		*workers = max(runtime.NumCPU()/2, 1)
	}
	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0755); err != nil {
			logger.Fatal("create output directory", zap.Error(err))
		}
	}

	logger.Info("selfplay",
		zap.Int("games", *numGames),
		zap.Int("workers", *workers),
		zap.Int("size", cfg.Game.BoardSize),
		zap.String("chooser", *chooserName),
	)

	stats := &tally{byWinType: map[game.WinType]int{}, byWinner: map[game.Player]int{}}
	jobs := make(chan int, *workers*2)
	eg, ctx := errgroup.WithContext(context.Background())
	for w := 0; w < *workers; w++ {
		eg.Go(func() error {
			for id := range jobs {
				chooser, err := newChooser(*chooserName, *seed+int64(id))
				if err != nil {
					return err
				}
				if err := playOne(ctx, cfg, logger, chooser, id, *outDir, stats); err != nil {
					return fmt.Errorf("game %d: %w", id, err)
				}
			}
			return nil
		})
	}
	go func() {
		defer close(jobs)
		for id := 0; id < *numGames; id++ {
			select {
			case jobs <- id:
			case <-ctx.Done():
				return
			}
		}
	}()
	if err := eg.Wait(); err != nil {
		logger.Fatal("selfplay failed", zap.Error(err))
	}

	fmt.Printf("games: %d  abandoned: %d  mean plies: %.1f\n",
		*numGames, stats.abandoned, float64(stats.plies)/float64(max(*numGames, 1)))
	for _, wt := range []game.WinType{game.WinRoad, game.WinFlat, game.WinDraw} {
		fmt.Printf("  %-5s %d\n", wt, stats.byWinType[wt])
	}
	for _, p := range []game.Player{game.PlayerOne, game.PlayerTwo} {
		fmt.Printf("  player %s won %d\n", p, stats.byWinner[p])
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.InitConfig()
}

func newChooser(name string, seed int64) (game.MoveChooser, error) {
	switch name {
	case "random":
		return search.NewRandom(seed), nil
	case "roadseeker":
		return search.NewRoadSeeker(seed), nil
	}
	return nil, fmt.Errorf("unknown chooser %q", name)
}

// playOne plays a game to the end, then scrubs it to ply zero and back and
// checks the position survived the round trip.
func playOne(ctx context.Context, cfg *config.Config, logger *zap.Logger, chooser game.MoveChooser, id int, outDir string, stats *tally) error {
	proto, err := cfg.Prototype()
	if err != nil {
		return err
	}
	g, err := game.New(proto, cfg.Options(logger.With(zap.Int("selfplay", id))))
	if err != nil {
		return err
	}
	g.Start()
	for g.Ply() < maxPlies && !g.Result().Terminal() {
		m, err := chooser.ChooseMove(ctx, g.Snapshot(false))
		if err != nil {
			return err
		}
		if err := g.MakeMove(g.Active(), game.CloneMove(m)); err != nil {
			return fmt.Errorf("ply %d %s: %w", g.Ply()+1, m, err)
		}
	}

	final := g.Bits().Clone()
	plies := g.Ply()
	if err := g.SetCurrentTurn(0); err != nil {
		return err
	}
	if g.Bits().OccupancyCount() != 0 {
		return fmt.Errorf("board not empty after scrubbing to the start")
	}
	if err := g.SetCurrentTurn(plies); err != nil {
		return err
	}
	if !g.Bits().Equal(final) {
		return fmt.Errorf("position changed after scrubbing back to ply %d", plies)
	}
	stats.add(g.Result(), plies)

	if outDir != "" {
		tags := map[string]string{
			"Size":   fmt.Sprint(proto.Size),
			"Result": g.FinalResult().String(),
			"Game":   g.ID().String(),
		}
		path := filepath.Join(outDir, fmt.Sprintf("game_%05d.txt", id))
		if err := notation.WriteFile(path, tags, g.History()); err != nil {
			return err
		}
	}
	return nil
}
