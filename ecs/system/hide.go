package system

import (
	"github.com/charmbracelet/log"
	"github.com/milk9111/platformcore/common"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
)

// HideSystem tracks hide zone membership from sensor contacts and toggles
// hiding on an up press inside a zone. A hidden actor ignores collisions
// with every registered AI and fades out.
type HideSystem struct {
	logger   *log.Logger
	registry *ecs.Registry
}

func NewHideSystem(registry *ecs.Registry, logger *log.Logger) *HideSystem {
	return &HideSystem{logger: systemLogger(logger, "hide"), registry: registry}
}

func (s *HideSystem) HandleContact(w *ecs.World, c ecs.Contact) {
	if !c.Sensor || c.Phase == ecs.ContactStay {
		return
	}
	for _, zone := range [2]ecs.Entity{c.A, c.B} {
		if !ecs.Has(w, zone, component.HideZoneComponent.Kind()) {
			continue
		}
		actor := c.Other(zone)
		hideable, ok := ecs.Get(w, actor, component.HideableComponent.Kind())
		if !ok {
			return
		}
		if c.Phase == ecs.ContactEnter {
			if hideable.Zones == nil {
				hideable.Zones = make(map[uint64]bool)
			}
			hideable.Zones[uint64(zone)] = true
			return
		}
		delete(hideable.Zones, uint64(zone))
		if !hideable.InZone() {
			s.ExitHide(w, actor)
		}
		return
	}
}

func (s *HideSystem) Update(w *ecs.World, dt float64) {
	ecs.ForEach2(w, component.HideableComponent.Kind(), component.ActorComponent.Kind(), func(e ecs.Entity, hideable *component.Hideable, actor *component.Actor) {
		if actor.Dead {
			return
		}
		if intent, ok := ecs.Get(w, e, component.IntentComponent.Kind()); ok && intent.UpPressed && hideable.InZone() {
			if actor.Hidden {
				s.ExitHide(w, e)
			} else {
				s.EnterHide(w, e)
			}
		}
		if actor.Hidden {
			s.syncIgnores(w, e, true)
		}
	})
}

// EnterHide hides e. It reports false when e is already hidden.
func (s *HideSystem) EnterHide(w *ecs.World, e ecs.Entity) bool {
	actor, ok := ecs.Get(w, e, component.ActorComponent.Kind())
	if !ok || actor.Hidden || actor.Dead {
		return false
	}
	actor.Hidden = true
	actor.Running = false
	s.syncIgnores(w, e, true)
	s.fade(w, e, true)
	w.Events().Push(ecs.HideEvent{Entity: e, Hidden: true})
	s.logger.Debug("hidden", "entity", e)
	return true
}

// ExitHide reveals e. It reports false when e was not hidden.
func (s *HideSystem) ExitHide(w *ecs.World, e ecs.Entity) bool {
	actor, ok := ecs.Get(w, e, component.ActorComponent.Kind())
	if !ok || !actor.Hidden {
		return false
	}
	actor.Hidden = false
	s.syncIgnores(w, e, false)
	s.fade(w, e, false)
	w.Events().Push(ecs.HideEvent{Entity: e, Hidden: false})
	s.logger.Debug("revealed", "entity", e)
	return true
}

func (s *HideSystem) syncIgnores(w *ecs.World, e ecs.Entity, ignore bool) {
	pw := w.PhysicsWorld()
	if pw == nil {
		return
	}
	for _, ai := range s.registry.Snapshot() {
		if ai != e && pw.Ignored(e, ai) != ignore {
			pw.IgnorePair(e, ai, ignore)
		}
	}
}

// fade tweens the feedback alpha on the frame queue, stopping any fade
// already running.
func (s *HideSystem) fade(w *ecs.World, e ecs.Entity, hidden bool) {
	fb, ok := ecs.Get(w, e, component.FeedbackComponent.Kind())
	if !ok {
		return
	}
	to, duration := 1.0, 0.0
	if params, ok := ecs.Get(w, e, component.FeedbackParamsComponent.Kind()); ok {
		duration = params.FadeDuration
		if hidden {
			to = params.HiddenAlpha
		}
	} else if hidden {
		to = 0
	}

	component.CancelTask(fb.FadeTask)
	from := fb.Alpha
	fb.FadeTask = w.FrameTasks().Schedule(duration, func(p float64) {
		fb.Alpha = common.Lerp(from, to, p)
	}, func() {
		fb.Alpha = to
		fb.FadeTask = nil
	})
}
