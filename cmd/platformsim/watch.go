package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/milk9111/platformcore/game"
	"github.com/milk9111/platformcore/prefabs"
	"github.com/spf13/cobra"
)

var (
	flagDuration  time.Duration
	flagPrefabDir string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the arena live and hot-reload tuning and AI scripts",
	Long: `Run the arena in real time while watching the prefab directory.

Edits to tuning.yaml are applied to the running world. Edits to AI scripts
are recompiled on the next AI frame. Other spec edits need a restart.

Examples:
  platformsim watch
  platformsim watch --duration 30s --log-level debug`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&flagDuration, "duration", 0, "Stop after this long (0 = until interrupted)")
	watchCmd.Flags().StringVar(&flagPrefabDir, "prefabs", prefabs.Dir, "On-disk prefab directory to watch")
	watchCmd.Flags().IntVar(&flagFPS, "fps", 60, "Frame rate driving the frame tick")
	watchCmd.Flags().StringVar(&flagScript, "script", "input_demo.yaml", "Input timeline spec")
}

func runWatch(cmd *cobra.Command, args []string) error {
	prefabs.Dir = flagPrefabDir

	input, err := game.LoadScriptedInput(flagScript)
	if err != nil {
		return err
	}
	sim, err := loadSimulation(game.WithInput(input))
	if err != nil {
		return err
	}

	watcher, err := prefabs.NewWatcher(prefabs.Dir, filepath.Join(prefabs.Dir, "scripts"))
	if err != nil {
		return err
	}
	defer watcher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if flagDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flagDuration)
		defer cancel()
	}

	if flagFPS <= 0 {
		flagFPS = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(flagFPS))
	defer ticker.Stop()

	sim.Logger().Info("watching", "dir", prefabs.Dir, "fps", flagFPS)
	return watchLoop(ctx, sim, ticker.C, watcher.Events, watcher.Errors)
}

// watchLoop advances sim on every tick and applies reloads until ctx ends
// or the event stream closes. A closed error stream is dropped from the
// select.
func watchLoop(ctx context.Context, sim *game.Simulation, ticks <-chan time.Time, events <-chan string, errs <-chan error) error {
	logger := sim.Logger()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			stats := sim.Stats()
			logger.Info("stopped", "frames", stats.FrameTicks, "fixed", stats.FixedTicks, "deaths", stats.Deaths)
			return nil
		case now := <-ticks:
			sim.Advance(now.Sub(last).Seconds())
			last = now
		case name, ok := <-events:
			if !ok {
				return nil
			}
			reload(sim, name)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watch error", "err", err)
		}
	}
}

func reload(sim *game.Simulation, path string) {
	logger := sim.Logger()
	base := filepath.Base(path)
	switch {
	case base == "tuning.yaml":
		cfg, err := game.LoadConfig()
		if err != nil {
			logger.Error("reload tuning", "err", err)
			return
		}
		sim.ApplyConfig(cfg)
	case strings.HasSuffix(base, ".tengo"):
		sim.ReloadScript(base)
	default:
		logger.Info("spec changed, restart to apply", "file", base)
	}
}
