package system

import (
	"github.com/charmbracelet/log"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
)

// PickupSystem moves collectibles touched by an inventory holder into its
// inventory and removes them from the world.
type PickupSystem struct {
	logger *log.Logger
}

func NewPickupSystem(logger *log.Logger) *PickupSystem {
	return &PickupSystem{logger: systemLogger(logger, "pickup")}
}

func (s *PickupSystem) HandleContact(w *ecs.World, c ecs.Contact) {
	if c.Phase != ecs.ContactEnter || !c.Sensor {
		return
	}
	for _, item := range [2]ecs.Entity{c.A, c.B} {
		col, ok := ecs.Get(w, item, component.CollectibleComponent.Kind())
		if !ok {
			continue
		}
		collector := c.Other(item)
		inv, ok := ecs.Get(w, collector, component.InventoryComponent.Kind())
		if !ok {
			return
		}
		if actor, ok := ecs.Get(w, collector, component.ActorComponent.Kind()); ok && actor.Dead {
			return
		}
		value := col.Value
		if value <= 0 {
			value = 1
		}
		inv.Add(col.Kind, value)
		w.Events().Push(ecs.CollectEvent{Collector: collector, Item: item, ItemKind: col.Kind})
		s.logger.Debug("collected", "collector", collector, "kind", col.Kind, "total", inv.Count(col.Kind))
		ecs.DestroyEntity(w, item)
		return
	}
}
