package system

import (
	"github.com/charmbracelet/log"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
)

const deathEffectName = "hazard_death"

// DeathSystem marks actors dead and reports a single death event per actor.
// Hazards are despawned on the spot, leaving an optional timed effect.
type DeathSystem struct {
	logger   *log.Logger
	registry *ecs.Registry
}

func NewDeathSystem(registry *ecs.Registry, logger *log.Logger) *DeathSystem {
	return &DeathSystem{logger: systemLogger(logger, "death"), registry: registry}
}

// Kill reports whether e died now; an actor that is already dead is left
// untouched.
func (s *DeathSystem) Kill(w *ecs.World, e ecs.Entity, cause ecs.DeathCause) bool {
	actor, ok := ecs.Get(w, e, component.ActorComponent.Kind())
	if !ok || actor.Dead {
		return false
	}
	actor.Dead = true

	stress := 0.0
	if st, ok := ecs.Get(w, e, component.StressComponent.Kind()); ok {
		stress = st.Value
	}
	w.Events().Push(ecs.DeathEvent{Entity: e, Cause: cause, Stress: stress})
	s.logger.Info("actor died", "entity", e, "category", actor.Category, "cause", cause, "stress", stress)

	cancelActorTasks(w, e, actor)
	if actor.Category == component.CategoryHazard {
		s.despawn(w, e)
	} else if pb, ok := bodyOf(w, e); ok {
		pb.Body.SetVelocity(0, 0)
	}
	return true
}

func (s *DeathSystem) despawn(w *ecs.World, e ecs.Entity) {
	if fx, ok := ecs.Get(w, e, component.DeathEffectComponent.Kind()); ok && fx.Enabled {
		var x, y float64
		if pb, ok := bodyOf(w, e); ok {
			pos := pb.Body.Position()
			x, y = pos.X, pos.Y
		}
		s.SpawnEffect(w, *fx, x, y)
	}
	s.registry.Unregister(e)
	ecs.DestroyEntity(w, e)
}

// SpawnEffect creates an effect entity that the TTL system removes after
// the effect lifetime.
func (s *DeathSystem) SpawnEffect(w *ecs.World, fx component.DeathEffect, x, y float64) ecs.Entity {
	ent := ecs.CreateEntity(w)
	_ = ecs.Add(w, ent, component.EffectComponent.Kind(), &component.Effect{Name: deathEffectName, X: x, Y: y})
	_ = ecs.Add(w, ent, component.TTLComponent.Kind(), &component.TTL{Seconds: fx.Lifetime()})
	s.logger.Debug("death effect spawned", "entity", ent, "lifetime", fx.Lifetime())
	return ent
}

// cancelActorTasks stops in-flight motion tasks and lets go of any wall or
// ledge so a dead actor falls under normal gravity.
func cancelActorTasks(w *ecs.World, e ecs.Entity, actor *component.Actor) {
	if mv, ok := ecs.Get(w, e, component.MovementComponent.Kind()); ok {
		component.CancelTask(mv.JumpTask)
	}
	if dash, ok := ecs.Get(w, e, component.DashComponent.Kind()); ok {
		component.CancelTask(dash.Task)
	}
	if wl, ok := ecs.Get(w, e, component.WallLedgeComponent.Kind()); ok {
		releaseWallLedge(w, e, actor, wl)
	}
	if fb, ok := ecs.Get(w, e, component.FeedbackComponent.Kind()); ok {
		component.CancelTask(fb.FlashTask)
		component.CancelTask(fb.FadeTask)
	}
}
