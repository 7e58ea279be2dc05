package system

import (
	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
)

// PostureSystem applies the run and crouch levels of the current intent.
// Running and crouching exclude each other; standing up is refused while
// something solid is overhead.
type PostureSystem struct {
	logger *log.Logger
	diag   diagnostics
}

func NewPostureSystem(logger *log.Logger) *PostureSystem {
	l := systemLogger(logger, "posture")
	return &PostureSystem{logger: l, diag: newDiagnostics(l)}
}

func (s *PostureSystem) Update(w *ecs.World, dt float64) {
	ecs.ForEach2(w, component.ActorComponent.Kind(), component.IntentComponent.Kind(), func(e ecs.Entity, actor *component.Actor, intent *component.Intent) {
		if actor.Dead || actor.WallGrabbing || actor.Hanging || actor.Dashing {
			return
		}
		if actor.Hidden {
			actor.Running = false
		}
		s.SetRunning(w, e, intent.RunHeld)
		s.SetCrouching(w, e, intent.CrouchHeld || actor.Hidden)
	})
}

// SetRunning reports whether the running flag now matches held.
func (s *PostureSystem) SetRunning(w *ecs.World, e ecs.Entity, held bool) bool {
	actor, ok := ecs.Get(w, e, component.ActorComponent.Kind())
	if !ok {
		return false
	}
	if held && actor.Crouching {
		return false
	}
	actor.Running = held
	return true
}

// SetCrouching reports whether the crouching flag now matches held.
func (s *PostureSystem) SetCrouching(w *ecs.World, e ecs.Entity, held bool) bool {
	actor, ok := ecs.Get(w, e, component.ActorComponent.Kind())
	if !ok {
		return false
	}
	if held == actor.Crouching {
		return true
	}
	if held && actor.Running {
		return false
	}
	if !held && !s.CanStand(w, e) {
		return false
	}

	pb, ok := bodyOf(w, e)
	if !ok {
		s.diag.warnOnce(e, "actor has no physics body; collider not resized")
		actor.Crouching = held
		return true
	}
	stand := pb.StandHeight
	if stand <= 0 {
		stand = pb.Height
		pb.StandHeight = stand
	}
	height, offset := stand, 0.0
	if held {
		// halve the box and keep the feet where they are
		height, offset = stand/2, -stand/4
	}
	shape := w.PhysicsWorld().ResizeBox(e, ecs.BoxSpec{Width: pb.Width, Height: height, OffsetY: offset, Mass: pb.Mass})
	if shape != nil {
		pb.Shape = shape
	}
	pb.Height = height
	pb.OffsetY = offset
	actor.Crouching = held
	s.logger.Debug("crouch changed", "entity", e, "crouching", held)
	return true
}

// CanStand reports whether the space a standing collider would add above a
// crouched one is free of ground.
func (s *PostureSystem) CanStand(w *ecs.World, e ecs.Entity) bool {
	actor, ok := ecs.Get(w, e, component.ActorComponent.Kind())
	if !ok || !actor.Crouching {
		return true
	}
	pb, ok := bodyOf(w, e)
	pw := w.PhysicsWorld()
	if !ok || pw == nil || pb.StandHeight <= pb.Height {
		return true
	}
	feet := pb.Feet()
	gap := pb.StandHeight - pb.Height
	center := cp.Vector{X: feet.X, Y: feet.Y + pb.Height + gap/2}
	size := cp.Vector{X: pb.Width * 0.9, Y: gap * 0.95}
	return !pw.OverlapBox(center, size, ecs.LayerGround)
}
