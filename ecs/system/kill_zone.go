package system

import (
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
)

// KillZoneSystem kills any actor that enters a kill zone sensor.
type KillZoneSystem struct {
	death *DeathSystem
}

func NewKillZoneSystem(death *DeathSystem) *KillZoneSystem {
	return &KillZoneSystem{death: death}
}

func (s *KillZoneSystem) HandleContact(w *ecs.World, c ecs.Contact) {
	if c.Phase != ecs.ContactEnter || !c.Sensor {
		return
	}
	for _, zone := range [2]ecs.Entity{c.A, c.B} {
		if !ecs.Has(w, zone, component.KillZoneComponent.Kind()) {
			continue
		}
		victim := c.Other(zone)
		if ecs.Has(w, victim, component.ActorComponent.Kind()) {
			s.death.Kill(w, victim, ecs.DeathByKillZone)
		}
		return
	}
}
