package ecs

import "github.com/milk9111/platformcore/ecs/component"

// World owns entities, component stores, the two task queues and the event
// queue of one simulation.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]store

	fixedTasks *Tasks
	frameTasks *Tasks
	events     EventQueue

	physics *PhysicsWorld
	time    float64
}

func NewWorld() *World {
	return &World{
		stores:     make(map[component.ComponentID]store),
		fixedTasks: NewTasks(),
		frameTasks: NewTasks(),
	}
}

func CreateEntity(w *World) Entity {
	if w == nil {
		return 0
	}
	return w.entities.create()
}

// DestroyEntity drops every component of e and its physics shapes. It
// returns false when e was already dead.
func DestroyEntity(w *World, e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, s := range w.stores {
		s.remove(e.id())
	}
	if w.physics != nil {
		w.physics.RemoveEntity(e)
	}
	return w.entities.destroy(e)
}

func IsAlive(w *World, e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

// Entities returns the live entities in slot order.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	return w.entities.all()
}

func (w *World) FixedTasks() *Tasks {
	if w == nil {
		return nil
	}
	return w.fixedTasks
}

func (w *World) FrameTasks() *Tasks {
	if w == nil {
		return nil
	}
	return w.frameTasks
}

func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// SetPhysicsWorld attaches a physics world to this ECS world.
func (w *World) SetPhysicsWorld(pw *PhysicsWorld) {
	if w == nil {
		return
	}
	w.physics = pw
}

// PhysicsWorld returns the attached physics world, if any.
func (w *World) PhysicsWorld() *PhysicsWorld {
	if w == nil {
		return nil
	}
	return w.physics
}

// Time is the accumulated fixed-step simulation clock in seconds.
func (w *World) Time() float64 {
	if w == nil {
		return 0
	}
	return w.time
}

func (w *World) AdvanceTime(dt float64) {
	if w == nil || dt <= 0 {
		return
	}
	w.time += dt
}

func storeFor[T any](w *World, kind component.ComponentKind[T], create bool) *sparseSet[T] {
	if w == nil || !kind.Valid() {
		return nil
	}
	if s, ok := w.stores[kind.ID()]; ok {
		typed, _ := s.(*sparseSet[T])
		return typed
	}
	if !create {
		return nil
	}
	typed := newSparseSet[T]()
	w.stores[kind.ID()] = typed
	return typed
}
