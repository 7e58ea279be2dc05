package system

import (
	"github.com/charmbracelet/log"
	"github.com/milk9111/platformcore/common"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
)

// DishSpawner builds a dish prefab centred at (x, y).
type DishSpawner func(w *ecs.World, prefab string, x, y float64) (ecs.Entity, error)

// DishSystem throws dishes from trigger zones and breaks them when they hit
// a player or fly into a break zone. A broken dish fades out and is
// removed.
type DishSystem struct {
	logger *log.Logger
	stress *StressSystem
	spawn  DishSpawner
	diag   diagnostics
}

func NewDishSystem(stress *StressSystem, spawn DishSpawner, logger *log.Logger) *DishSystem {
	l := systemLogger(logger, "dish")
	return &DishSystem{logger: l, stress: stress, spawn: spawn, diag: newDiagnostics(l)}
}

// Update throws auto-launch dishes on their first fixed tick.
func (s *DishSystem) Update(w *ecs.World, dt float64) {
	ecs.ForEach(w, component.DishThrowComponent.Kind(), func(e ecs.Entity, dish *component.DishThrow) {
		if dish.AutoLaunch && !dish.Launched && !dish.Broken {
			s.Launch(w, e, dish.DirX, dish.DirY)
		}
	})
}

func (s *DishSystem) HandleContact(w *ecs.World, c ecs.Contact) {
	if c.Phase != ecs.ContactEnter {
		return
	}
	for _, e := range [2]ecs.Entity{c.A, c.B} {
		if dish, ok := ecs.Get(w, e, component.DishThrowComponent.Kind()); ok {
			s.dishContact(w, e, dish, c.Other(e))
			return
		}
	}
	if !c.Sensor {
		return
	}
	for _, zone := range [2]ecs.Entity{c.A, c.B} {
		if tr, ok := ecs.Get(w, zone, component.DishTriggerComponent.Kind()); ok {
			s.enter(w, zone, tr, c.Other(zone))
			return
		}
	}
}

func (s *DishSystem) dishContact(w *ecs.World, e ecs.Entity, dish *component.DishThrow, other ecs.Entity) {
	if dish.Broken || !dish.Launched {
		return
	}
	if actor, ok := ecs.Get(w, other, component.ActorComponent.Kind()); ok && actor.Category == component.CategoryPlayer {
		if !actor.Dead && s.stress != nil {
			s.stress.AddStress(w, other, dish.Stress)
		}
		s.Break(w, e, other)
		return
	}
	if dish.BreakZone != 0 {
		if uint64(other) == dish.BreakZone {
			s.Break(w, e, 0)
		}
		return
	}
	if ecs.Has(w, other, component.DishBreakComponent.Kind()) {
		s.Break(w, e, 0)
	}
}

func (s *DishSystem) enter(w *ecs.World, zone ecs.Entity, tr *component.DishTrigger, enterer ecs.Entity) {
	if tr.Once && tr.Fired {
		return
	}
	actor, ok := ecs.Get(w, enterer, component.ActorComponent.Kind())
	if !ok || actor.Dead {
		return
	}
	if tr.Filter != component.CategoryNone && actor.Category != tr.Filter {
		return
	}
	tr.Fired = true
	if tr.Mode == component.DishBreakZone {
		return
	}

	fire := func() {
		tr.Task = nil
		s.fire(w, zone, tr, enterer)
	}
	if tr.Delay > 0 {
		component.CancelTask(tr.Task)
		tr.Task = w.FixedTasks().After(tr.Delay, fire)
		return
	}
	fire()
}

func (s *DishSystem) fire(w *ecs.World, zone ecs.Entity, tr *component.DishTrigger, enterer ecs.Entity) {
	var dish ecs.Entity
	switch tr.Mode {
	case component.DishSpawnAndLaunch:
		if tr.Prefab == "" || s.spawn == nil {
			s.diag.warnOnce(zone, "dish trigger has nothing to spawn")
			return
		}
		e, err := s.spawn(w, tr.Prefab, tr.SpawnX, tr.SpawnY)
		if err != nil {
			s.logger.Warn("dish spawn failed", "trigger", zone, "prefab", tr.Prefab, "err", err)
			return
		}
		dish = e
	case component.DishLaunchExisting:
		dish = ecs.Entity(tr.Dish)
	}

	d, ok := ecs.Get(w, dish, component.DishThrowComponent.Kind())
	if !ok {
		s.diag.warnOnce(zone, "dish trigger target is not a dish", "dish", dish)
		return
	}
	if tr.BreakZone != 0 {
		d.BreakZone = tr.BreakZone
	}

	dx, dy := tr.DirX, tr.DirY
	if tr.TowardEnterer {
		if from, ok := bodyOf(w, dish); ok {
			if to, ok := bodyOf(w, enterer); ok {
				v := to.Body.Position().Sub(from.Body.Position())
				dx, dy = v.X, v.Y
			}
		}
	}
	facing := tr.Facing
	if facing == 0 {
		facing = 1
	}
	dx, dy = common.SafeNormalize(dx, dy, facing, 0)
	s.Launch(w, dish, dx, dy)
}

// Launch throws e along (dx, dy) at its launch speed. A dish is thrown at
// most once and never after breaking.
func (s *DishSystem) Launch(w *ecs.World, e ecs.Entity, dx, dy float64) bool {
	dish, ok := ecs.Get(w, e, component.DishThrowComponent.Kind())
	if !ok || dish.Launched || dish.Broken {
		return false
	}
	pb, ok := bodyOf(w, e)
	if !ok {
		s.diag.warnOnce(e, "dish has no physics body")
		return false
	}
	dish.Launched = true
	dx, dy = common.SafeNormalize(dx, dy, 1, 0)
	pb.Body.SetVelocity(dx*dish.Speed, dy*dish.Speed)
	if dish.MaxFlight > 0 {
		dish.Task = w.FixedTasks().After(dish.MaxFlight, func() {
			dish.Task = nil
			s.Break(w, e, 0)
		})
	}
	s.logger.Debug("dish launched", "entity", e, "dir_x", dx, "dir_y", dy, "speed", dish.Speed)
	return true
}

// Break stops e, takes it out of the physics space and fades it out before
// destroying it. victim is the player it hit, if any.
func (s *DishSystem) Break(w *ecs.World, e ecs.Entity, victim ecs.Entity) bool {
	dish, ok := ecs.Get(w, e, component.DishThrowComponent.Kind())
	if !ok || dish.Broken {
		return false
	}
	dish.Broken = true
	component.CancelTask(dish.Task)
	dish.Task = nil
	if pb, ok := bodyOf(w, e); ok {
		pb.Body.SetVelocity(0, 0)
	}
	w.PhysicsWorld().RemoveEntity(e)
	w.Events().Push(ecs.DishEvent{Dish: e, Victim: victim})
	s.logger.Debug("dish broke", "entity", e, "victim", victim)

	fb, ok := ecs.Get(w, e, component.FeedbackComponent.Kind())
	if !ok || dish.FadeDuration <= 0 {
		ecs.DestroyEntity(w, e)
		return true
	}
	component.CancelTask(fb.FadeTask)
	start := fb.Alpha
	fb.FadeTask = w.FrameTasks().Schedule(dish.FadeDuration, func(p float64) {
		fb.Alpha = start * (1 - p)
	}, func() {
		fb.Alpha = 0
		ecs.DestroyEntity(w, e)
	})
	return true
}
