package system

import (
	"github.com/charmbracelet/log"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
)

const defaultGroundRadius = 0.1

// GroundSystem senses ground under each actor's feet with a small circle
// overlap against the ground layer.
type GroundSystem struct {
	Radius float64

	logger *log.Logger
	diag   diagnostics
}

func NewGroundSystem(radius float64, logger *log.Logger) *GroundSystem {
	if radius <= 0 {
		radius = defaultGroundRadius
	}
	l := systemLogger(logger, "ground")
	return &GroundSystem{Radius: radius, logger: l, diag: newDiagnostics(l)}
}

func (s *GroundSystem) Update(w *ecs.World, dt float64) {
	pw := w.PhysicsWorld()
	ecs.ForEach(w, component.ActorComponent.Kind(), func(e ecs.Entity, actor *component.Actor) {
		if actor.Dead {
			return
		}
		// the dash owns the body for its whole window
		if actor.Dashing {
			actor.Grounded = false
			return
		}
		pb, ok := bodyOf(w, e)
		if !ok || pw == nil {
			s.diag.warnOnce(e, "actor has no physics body; ground sensing skipped")
			return
		}
		grounded := pw.OverlapCircle(pb.Feet(), s.Radius, ecs.LayerGround)
		if grounded != actor.Grounded {
			s.logger.Debug("grounded changed", "entity", e, "grounded", grounded)
		}
		actor.Grounded = grounded
	})
}
