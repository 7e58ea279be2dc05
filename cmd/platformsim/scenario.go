package main

import (
	"fmt"
	"math"

	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
	"github.com/milk9111/platformcore/ecs/entity"
	"github.com/milk9111/platformcore/ecs/system"
	"github.com/spf13/cobra"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Print the stress, stomp and patrol reference scenarios",
	Long: `Run small deterministic scenarios against the simulation rules and print
the results. Useful as a sanity check after tuning edits.`,
	RunE: runScenario,
}

type fixedSampler float64

func (f fixedSampler) Float64() float64 { return float64(f) }

func runScenario(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}

	// Stomp ladder: a hazard stomped until its stress passes the guaranteed
	// threshold. The sampler never rolls under the probability band.
	w := ecs.NewWorld()
	w.SetPhysicsWorld(ecs.NewPhysicsWorld(-30, 10, logger))
	hazard, err := entity.BuildEntity(w, "hazard.yaml", 0, 0)
	if err != nil {
		return err
	}
	registry := ecs.NewRegistry()
	registry.Register(hazard)
	registry.Commit()
	death := system.NewDeathSystem(registry, logger)
	stress := system.NewStressSystem(fixedSampler(0.99), death, logger)

	enc, ok := ecs.Get(w, hazard, component.EncounterComponent.Kind())
	if !ok {
		return fmt.Errorf("hazard.yaml has no encounter component")
	}
	stomp := enc.StompStress

	fmt.Println("stomp ladder (hazard.yaml)")
	for i := 1; i <= 4; i++ {
		st, _ := ecs.Get(w, hazard, component.StressComponent.Kind())
		before := *st
		before.Value += stomp
		p := system.DeathProbability(before)
		died := stress.AddStress(w, hazard, stomp)
		fmt.Printf("  stomp %d: stress=%3.0f p(death)=%.2f died=%v\n", i, before.Value, p, died)
		if died {
			break
		}
	}
	fmt.Printf("  despawned: %v\n", !ecs.IsAlive(w, hazard))

	fmt.Println("death probability")
	band := component.Stress{DeathAt: 100, GuaranteedDeathAt: 110}
	for _, v := range []float64{100, 105, 110} {
		band.Value = v
		fmt.Printf("  stress=%3.0f p=%.2f\n", v, system.DeathProbability(band))
	}
	fmt.Printf("  passive 1%% over 1000 frames: %.5f\n", 1-math.Pow(0.99, 1000))

	fmt.Println("patrol routes (4 waypoints)")
	fmt.Printf("  wrap:      %v\n", patrolSequence(4, false, 8))
	fmt.Printf("  ping-pong: %v\n", patrolSequence(4, true, 8))
	return nil
}

func patrolSequence(n int, pingPong bool, steps int) []int {
	out := []int{0}
	index, dir := 0, 1
	for i := 0; i < steps; i++ {
		index, dir = system.NextPatrolIndex(index, dir, n, pingPong)
		out = append(out, index)
	}
	return out
}
