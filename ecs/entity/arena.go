package entity

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
	"github.com/milk9111/platformcore/prefabs"
)

// Arena lists the entities created by BuildArena.
type Arena struct {
	Solids       []ecs.Entity
	KillZones    []ecs.Entity
	HideZones    []ecs.Entity
	Collectibles []ecs.Entity
	Dishes       []ecs.Entity
	DishTriggers []ecs.Entity
	Actors       []ecs.Entity
	Player       ecs.Entity
}

// BuildArena creates the static geometry, sensor zones, collectibles,
// dishes and spawned actors of spec. The world must have a physics world attached.
func BuildArena(w *ecs.World, spec prefabs.ArenaSpec) (*Arena, error) {
	if w == nil || w.PhysicsWorld() == nil {
		return nil, fmt.Errorf("build arena: world has no physics world")
	}
	arena := &Arena{}

	for i, box := range spec.Solids {
		e, err := addBox(w, box, ecs.LayerGround, false)
		if err != nil {
			return nil, fmt.Errorf("build arena %q: solid %d: %w", spec.Name, i, err)
		}
		if err := ecs.Add(w, e, component.SolidComponent.Kind(), &component.Solid{}); err != nil {
			return nil, err
		}
		arena.Solids = append(arena.Solids, e)
	}

	for i, box := range spec.KillZones {
		e, err := addBox(w, box, ecs.LayerSensor, true)
		if err != nil {
			return nil, fmt.Errorf("build arena %q: kill zone %d: %w", spec.Name, i, err)
		}
		if err := ecs.Add(w, e, component.KillZoneComponent.Kind(), &component.KillZone{}); err != nil {
			return nil, err
		}
		arena.KillZones = append(arena.KillZones, e)
	}

	for i, box := range spec.HideZones {
		e, err := addBox(w, box, ecs.LayerSensor, true)
		if err != nil {
			return nil, fmt.Errorf("build arena %q: hide zone %d: %w", spec.Name, i, err)
		}
		if err := ecs.Add(w, e, component.HideZoneComponent.Kind(), &component.HideZone{}); err != nil {
			return nil, err
		}
		arena.HideZones = append(arena.HideZones, e)
	}

	for i, item := range spec.Collectibles {
		e, err := BuildCollectible(w, item)
		if err != nil {
			return nil, fmt.Errorf("build arena %q: collectible %d: %w", spec.Name, i, err)
		}
		arena.Collectibles = append(arena.Collectibles, e)
	}

	for i, spawn := range spec.Dishes {
		e, err := BuildEntity(w, spawn.Prefab, spawn.X, spawn.Y)
		if err != nil {
			return nil, fmt.Errorf("build arena %q: dish %d: %w", spec.Name, i, err)
		}
		if !ecs.Has(w, e, component.DishThrowComponent.Kind()) {
			return nil, fmt.Errorf("build arena %q: dish %d: prefab %q has no dish_throw", spec.Name, i, spawn.Prefab)
		}
		arena.Dishes = append(arena.Dishes, e)
	}

	for i, tr := range spec.DishTriggers {
		e, err := BuildDishTrigger(w, tr, arena.Dishes)
		if err != nil {
			return nil, fmt.Errorf("build arena %q: dish trigger %d: %w", spec.Name, i, err)
		}
		arena.DishTriggers = append(arena.DishTriggers, e)
	}
	// break zones may be listed after the triggers that name them
	for i, tr := range spec.DishTriggers {
		if tr.BreakZone == nil {
			continue
		}
		j := *tr.BreakZone
		if j < 0 || j >= len(arena.DishTriggers) {
			return nil, fmt.Errorf("build arena %q: dish trigger %d: break zone %d out of range", spec.Name, i, j)
		}
		dt, _ := ecs.Get(w, arena.DishTriggers[i], component.DishTriggerComponent.Kind())
		dt.BreakZone = uint64(arena.DishTriggers[j])
	}

	for i, spawn := range spec.Spawns {
		e, err := BuildEntity(w, spawn.Prefab, spawn.X, spawn.Y)
		if err != nil {
			return nil, fmt.Errorf("build arena %q: spawn %d: %w", spec.Name, i, err)
		}
		if spawn.Patrol != nil {
			if err := SetPatrol(w, e, *spawn.Patrol); err != nil {
				return nil, err
			}
		}
		arena.Actors = append(arena.Actors, e)
		if arena.Player == 0 && ecs.Has(w, e, component.PlayerTagComponent.Kind()) {
			arena.Player = e
		}
	}

	return arena, nil
}

// BuildDishTrigger creates a dish trigger sensor. dishes resolves the index
// of a placed dish in mode "existing".
func BuildDishTrigger(w *ecs.World, spec prefabs.DishTriggerSpawnSpec, dishes []ecs.Entity) (ecs.Entity, error) {
	mode, err := component.ParseDishTriggerMode(spec.Mode)
	if err != nil {
		return 0, err
	}
	tr := &component.DishTrigger{
		Mode:          mode,
		Filter:        component.CategoryPlayer,
		Prefab:        spec.Prefab,
		SpawnX:        spec.Box.X,
		SpawnY:        spec.Box.Y,
		TowardEnterer: true,
		DirX:          1,
		Facing:        1,
		Delay:         spec.Delay,
		Once:          true,
	}
	switch spec.Filter {
	case "":
	case "any":
		tr.Filter = component.CategoryNone
	default:
		if tr.Filter = component.ParseCategory(spec.Filter); tr.Filter == component.CategoryNone {
			return 0, fmt.Errorf("unknown trigger filter %q", spec.Filter)
		}
	}
	if spec.Spawn != nil {
		tr.SpawnX, tr.SpawnY = spec.Spawn.X, spec.Spawn.Y
	}
	if spec.TowardEnterer != nil {
		tr.TowardEnterer = *spec.TowardEnterer
	}
	if spec.Direction != nil {
		tr.DirX, tr.DirY = spec.Direction.X, spec.Direction.Y
	}
	if spec.Facing < 0 {
		tr.Facing = -1
	}
	if spec.Once != nil {
		tr.Once = *spec.Once
	}
	switch mode {
	case component.DishSpawnAndLaunch:
		if spec.Prefab == "" {
			return 0, fmt.Errorf("spawn trigger needs a prefab")
		}
	case component.DishLaunchExisting:
		if spec.Dish == nil || *spec.Dish < 0 || *spec.Dish >= len(dishes) {
			return 0, fmt.Errorf("existing trigger needs a dish index below %d", len(dishes))
		}
		tr.Dish = uint64(dishes[*spec.Dish])
	}

	e, err := addBox(w, spec.Box, ecs.LayerSensor, true)
	if err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.DishTriggerComponent.Kind(), tr); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, err
	}
	if mode == component.DishBreakZone {
		if err := ecs.Add(w, e, component.DishBreakComponent.Kind(), &component.DishBreak{}); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, err
		}
	}
	return e, nil
}

const defaultCollectibleSize = 0.3

// BuildCollectible creates a pickup sensor.
func BuildCollectible(w *ecs.World, spec prefabs.CollectibleSpawnSpec) (ecs.Entity, error) {
	if spec.Kind == "" {
		return 0, fmt.Errorf("collectible needs a kind")
	}
	box := prefabs.BoxSpec{X: spec.X, Y: spec.Y, Width: spec.Width, Height: spec.Height}
	if box.Width <= 0 {
		box.Width = defaultCollectibleSize
	}
	if box.Height <= 0 {
		box.Height = defaultCollectibleSize
	}
	e, err := addBox(w, box, ecs.LayerSensor, true)
	if err != nil {
		return 0, err
	}
	if err := ecs.Add(w, e, component.CollectibleComponent.Kind(), &component.Collectible{Kind: spec.Kind, Value: spec.Value}); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, err
	}
	return e, nil
}

func addBox(w *ecs.World, box prefabs.BoxSpec, layer ecs.Layer, sensor bool) (ecs.Entity, error) {
	if box.Width <= 0 || box.Height <= 0 {
		return 0, fmt.Errorf("box needs a positive size, got %vx%v", box.Width, box.Height)
	}
	e := ecs.CreateEntity(w)
	center := cp.Vector{X: box.X, Y: box.Y}
	if shape := w.PhysicsWorld().AddStaticBox(e, center, ecs.BoxSpec{Width: box.Width, Height: box.Height, Layer: layer, Sensor: sensor}); shape == nil {
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("physics world rejected box")
	}
	if err := ecs.Add(w, e, component.StaticBoxComponent.Kind(), &component.StaticBox{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height}); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, err
	}
	return e, nil
}
