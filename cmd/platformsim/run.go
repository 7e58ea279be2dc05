package main

import (
	"fmt"
	"sort"

	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
	"github.com/milk9111/platformcore/game"
	"github.com/milk9111/platformcore/prefabs"
	"github.com/spf13/cobra"
)

var (
	flagTicks  int
	flagFPS    int
	flagScript string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the arena headless",
	Long: `Load the arena, feed the player an input timeline and advance the
simulation at a fixed frame rate, then print a summary.

Examples:
  platformsim run
  platformsim run --ticks 3000 --fps 144
  platformsim run --script ./prefabs/my_timeline.yaml --seed 7`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntVar(&flagTicks, "ticks", 600, "Number of frame ticks to run")
	runCmd.Flags().IntVar(&flagFPS, "fps", 60, "Frame rate driving the frame tick")
	runCmd.Flags().StringVar(&flagScript, "script", "input_demo.yaml", "Input timeline spec")
}

// loadSimulation builds a simulation from tuning.yaml and the arena.
func loadSimulation(opts ...game.Option) (*game.Simulation, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}
	tuning, err := prefabs.LoadTuningSpec()
	if err != nil {
		return nil, err
	}
	if flagSeed != 0 {
		tuning.Seed = flagSeed
	}
	arenaName := tuning.Arena
	if flagArena != "" {
		arenaName = flagArena
	}
	arena, err := prefabs.LoadArenaSpec(arenaName)
	if err != nil {
		return nil, err
	}

	opts = append([]game.Option{game.WithLogger(logger)}, opts...)
	return game.NewFromArena(game.ConfigFromTuning(*tuning), *arena, opts...)
}

func runRun(cmd *cobra.Command, args []string) error {
	if flagFPS <= 0 {
		return fmt.Errorf("--fps must be positive")
	}
	input, err := game.LoadScriptedInput(flagScript)
	if err != nil {
		return err
	}

	var deaths []ecs.DeathEvent
	sim, err := loadSimulation(
		game.WithInput(input),
		game.WithDeathSink(game.DeathSinkFunc(func(evt ecs.DeathEvent) {
			deaths = append(deaths, evt)
		})),
	)
	if err != nil {
		return err
	}

	frameDt := 1 / float64(flagFPS)
	for i := 0; i < flagTicks; i++ {
		sim.Advance(frameDt)
	}

	printSummary(sim, deaths)
	return nil
}

func printSummary(sim *game.Simulation, deaths []ecs.DeathEvent) {
	stats := sim.Stats()
	w := sim.World()

	fmt.Printf("frame ticks:  %d\n", stats.FrameTicks)
	fmt.Printf("fixed ticks:  %d\n", stats.FixedTicks)
	fmt.Printf("sim time:     %.2fs\n", w.Time())

	if player := sim.Player(); ecs.IsAlive(w, player) {
		if pb, ok := ecs.Get(w, player, component.PhysicsBodyComponent.Kind()); ok && pb.Body != nil {
			pos := pb.Body.Position()
			fmt.Printf("player:       (%.2f, %.2f)\n", pos.X, pos.Y)
		}
		if st, ok := ecs.Get(w, player, component.StressComponent.Kind()); ok {
			fmt.Printf("stress:       %.0f\n", st.Value)
		}
	}

	fmt.Printf("stomps:       %d\n", stats.Stomps)
	fmt.Printf("hides:        %d\n", stats.Hides)
	fmt.Printf("dishes:       %d (%d hit)\n", stats.Dishes, stats.DishHits)

	kinds := make([]string, 0, len(stats.Collected))
	for k := range stats.Collected {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Printf("collected:    %s x%d\n", k, stats.Collected[k])
	}

	fmt.Printf("deaths:       %d\n", len(deaths))
	for _, d := range deaths {
		fmt.Printf("  %s  cause=%s stress=%.0f\n", d.Entity, d.Cause, d.Stress)
	}
}
