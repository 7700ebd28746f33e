// cmd/bench_perf/main.go
// Times random playouts under each bit board executor with a CPU profile.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime/pprof"
	"time"

	"github.com/crasshacker/STak-sub000/internal/game"
)

func main() {
	size := flag.Int("size", 6, "board size")
	games := flag.Int("games", 200, "playouts per executor")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	profile := flag.String("cpuprofile", "cpu_executors.prof", "CPU profile output")
	flag.Parse()

	f, err := os.Create(*profile)
	if err != nil {
		fmt.Println("could not create CPU profile: ", err)
		return
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		fmt.Println("could not start CPU profile: ", err)
		return
	}
	defer pprof.StopCPUProfile()

	for _, kind := range []string{game.ExecutorInPlace, game.ExecutorClone} {
		r := rand.New(rand.NewSource(*seed))
		start := time.Now()
		plies, err := run(kind, *size, *games, r)
		if err != nil {
			fmt.Printf("%s: %v\n", kind, err)
			return
		}
		elapsed := time.Since(start)
		fmt.Printf("%-8s %d games, %d plies (with undo), %v, %.0f ns/ply\n",
			kind, *games, plies, elapsed, float64(elapsed.Nanoseconds())/float64(max(plies, 1)))
	}
	fmt.Printf("Profile saved to %s. Run 'go tool pprof -http=:8080 %s' to view it.\n", *profile, *profile)
}

// run plays random games to the end and takes every move back again.
func run(kind string, size, games int, r *rand.Rand) (int, error) {
	plies := 0
	for i := 0; i < games; i++ {
		g, err := game.New(game.GamePrototype{Size: size}, game.Options{Executor: kind})
		if err != nil {
			return 0, err
		}
		for g.Ply() < 500 && !g.Result().Terminal() {
			moves := g.LegalMoves()
			if err := g.MakeMove(g.Active(), moves[r.Intn(len(moves))]); err != nil {
				return 0, err
			}
		}
		plies += g.Ply()
		if err := g.SetCurrentTurn(0); err != nil {
			return 0, err
		}
	}
	return plies, nil
}
