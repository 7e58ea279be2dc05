package system

import (
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
)

// IntentSystem moves the intent queued at frame rate into the intent read by
// this fixed tick. It runs before any system that writes velocity, so every
// source for the tick has been collected before movement is applied.
type IntentSystem struct{}

func NewIntentSystem() *IntentSystem {
	return &IntentSystem{}
}

func (s *IntentSystem) Update(w *ecs.World, dt float64) {
	ecs.ForEach2(w, component.PendingIntentComponent.Kind(), component.IntentComponent.Kind(), func(e ecs.Entity, pending *component.PendingIntent, intent *component.Intent) {
		next := pending.Take()
		if actor, ok := ecs.Get(w, e, component.ActorComponent.Kind()); ok {
			switch {
			case actor.Dead:
				next = component.Intent{}
			case actor.Hidden:
				// hidden actors crouch in place; up still toggles hiding
				next = component.Intent{CrouchHeld: true, UpPressed: next.UpPressed}
			}
		}
		*intent = next
	})
}
