// sandbox opens a window onto the arena for hands-on testing of the
// movement and encounter rules.
package main

import (
	"flag"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/game"
	"github.com/milk9111/platformcore/prefabs"
)

func main() {
	debug := flag.Bool("debug", false, "draw physics shapes")
	arenaName := flag.String("arena", "", "arena spec in prefabs/ (default from tuning.yaml)")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = seed from tuning.yaml)")
	levelName := flag.String("log-level", "info", "log level: debug, info, warn, error")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	level, err := log.ParseLevel(*levelName)
	if err != nil {
		log.Fatal("bad log level", "err", err)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "sandbox",
		Level:           level,
	})

	tuning, err := prefabs.LoadTuningSpec()
	if err != nil {
		logger.Fatal("load tuning", "err", err)
	}
	if *seed != 0 {
		tuning.Seed = *seed
	}
	name := tuning.Arena
	if *arenaName != "" {
		name = *arenaName
	}
	arena, err := prefabs.LoadArenaSpec(name)
	if err != nil {
		logger.Fatal("load arena", "err", err)
	}

	var g *Game
	sim, err := game.NewFromArena(game.ConfigFromTuning(*tuning), *arena,
		game.WithLogger(logger),
		game.WithInput(keyboardInput{}),
		game.WithDeathSink(game.DeathSinkFunc(func(evt ecs.DeathEvent) {
			if g != nil {
				g.OnDeath(evt)
			}
		})),
	)
	if err != nil {
		logger.Fatal("build arena", "err", err)
	}
	g = NewGame(sim, *debug)

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("platformcore sandbox")

	if err := ebiten.RunGame(g); err != nil {
		logger.Fatal("run", "err", err)
	}
}
