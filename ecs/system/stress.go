package system

import (
	"math"

	"github.com/charmbracelet/log"
	"github.com/milk9111/platformcore/common"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
)

// Sampler draws uniform samples in [0, 1).
type Sampler interface {
	Float64() float64
}

// StressSystem owns stress gain and the death rolls that follow it. Its
// frame update runs the passive per-frame roll for hazards sitting inside
// the death band.
type StressSystem struct {
	logger *log.Logger
	diag   diagnostics
	rng    Sampler
	death  *DeathSystem
}

func NewStressSystem(rng Sampler, death *DeathSystem, logger *log.Logger) *StressSystem {
	l := systemLogger(logger, "stress")
	if death == nil {
		death = NewDeathSystem(nil, logger)
	}
	return &StressSystem{logger: l, diag: newDiagnostics(l), rng: rng, death: death}
}

// DeathProbability is the chance that a hit leaving st at its current
// value kills.
func DeathProbability(st component.Stress) float64 {
	if st.Value >= st.GuaranteedDeathAt {
		return 1
	}
	if st.Value <= st.DeathAt {
		return 0
	}
	span := st.GuaranteedDeathAt - st.DeathAt
	if span <= 0 {
		return 1
	}
	return common.Clamp01((st.Value - st.DeathAt) / span)
}

// AddStress adds amount to e's stress and rolls for death. It reports
// whether e died.
func (s *StressSystem) AddStress(w *ecs.World, e ecs.Entity, amount float64) bool {
	st, ok := ecs.Get(w, e, component.StressComponent.Kind())
	if !ok {
		s.diag.warnOnce(e, "stress added to actor without stress")
		return false
	}
	if actor, ok := ecs.Get(w, e, component.ActorComponent.Kind()); ok && actor.Dead {
		return false
	}
	if st.Round {
		amount = math.RoundToEven(amount)
	}
	st.Value = math.Max(0, st.Value+amount)
	w.Events().Push(ecs.StressEvent{Entity: e, Amount: amount, Total: st.Value})
	s.logger.Debug("stress added", "entity", e, "amount", amount, "total", st.Value)

	if fb, ok := ecs.Get(w, e, component.FeedbackComponent.Kind()); ok && amount > 0 {
		fb.PendingHit = true
	}

	if st.Value >= st.GuaranteedDeathAt {
		return s.death.Kill(w, e, ecs.DeathByStress)
	}
	if st.Value > st.DeathAt && s.sample() < DeathProbability(*st) {
		return s.death.Kill(w, e, ecs.DeathByStress)
	}
	return false
}

func (s *StressSystem) sample() float64 {
	if s.rng == nil {
		// no source means the band never kills on its own
		return 1
	}
	return s.rng.Float64()
}

func (s *StressSystem) Update(w *ecs.World, dt float64) {
	ecs.ForEach2(w, component.ActorComponent.Kind(), component.StressComponent.Kind(), func(e ecs.Entity, actor *component.Actor, st *component.Stress) {
		if actor.Dead || actor.Category != component.CategoryHazard || st.PassiveChance <= 0 {
			return
		}
		if st.InBand() && s.sample() < st.PassiveChance {
			s.death.Kill(w, e, ecs.DeathByStress)
		}
	})
}
