package system

import (
	"github.com/charmbracelet/log"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
)

// PhysicsSystem steps the Chipmunk space once per fixed tick and hands the
// buffered contacts to the registered handlers after the step completes.
type PhysicsSystem struct {
	logger   *log.Logger
	handlers []ContactHandler
	warned   bool
}

func NewPhysicsSystem(logger *log.Logger, handlers ...ContactHandler) *PhysicsSystem {
	s := &PhysicsSystem{logger: systemLogger(logger, "physics_step")}
	for _, h := range handlers {
		s.AddHandler(h)
	}
	return s
}

func (s *PhysicsSystem) AddHandler(h ContactHandler) {
	if s == nil || h == nil {
		return
	}
	s.handlers = append(s.handlers, h)
}

func (s *PhysicsSystem) Update(w *ecs.World, dt float64) {
	if s == nil || w == nil {
		return
	}
	pw := w.PhysicsWorld()
	if pw == nil {
		if !s.warned {
			s.logger.Warn("no physics world attached; skipping step")
			s.warned = true
		}
		return
	}

	ecs.ForEach(w, component.GravityScaleComponent.Kind(), func(e ecs.Entity, gs *component.GravityScale) {
		pw.SetGravityScale(e, gs.Scale)
	})

	pw.Step(dt)
	w.AdvanceTime(dt)

	for _, c := range pw.DrainContacts() {
		for _, h := range s.handlers {
			h.HandleContact(w, c)
		}
	}
}
