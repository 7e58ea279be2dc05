package system

import (
	"math"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformcore/common"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
)

// MovementSystem turns the current intent into a horizontal velocity each
// fixed tick and handles grounded jumps. It is the last writer of actor
// velocity before the physics step.
type MovementSystem struct {
	logger *log.Logger
	diag   diagnostics
}

func NewMovementSystem(logger *log.Logger) *MovementSystem {
	l := systemLogger(logger, "movement")
	return &MovementSystem{logger: l, diag: newDiagnostics(l)}
}

func (s *MovementSystem) Update(w *ecs.World, dt float64) {
	ecs.ForEach2(w, component.ActorComponent.Kind(), component.IntentComponent.Kind(), func(e ecs.Entity, actor *component.Actor, intent *component.Intent) {
		if actor.Dead {
			return
		}
		if intent.JumpPressed {
			s.RequestJump(w, e)
		}
		s.Move(w, e, *intent, dt)
	})
}

// Move applies one tick of intent to e.
func (s *MovementSystem) Move(w *ecs.World, e ecs.Entity, intent component.Intent, dt float64) {
	actor, ok := ecs.Get(w, e, component.ActorComponent.Kind())
	if !ok {
		return
	}
	params, ok := ecs.Get(w, e, component.MovementParamsComponent.Kind())
	if !ok {
		s.diag.warnOnce(e, "actor has no movement params; move skipped")
		return
	}
	pb, ok := bodyOf(w, e)
	if !ok {
		s.diag.warnOnce(e, "actor has no physics body; move skipped")
		return
	}
	body := pb.Body

	switch {
	case actor.Dashing:
		return
	case actor.Hanging:
		body.SetVelocity(0, 0)
		return
	case actor.WallGrabbing:
		v := body.Velocity()
		body.SetVelocity(0, math.Min(v.Y, -params.SlideSpeed))
		return
	}

	speed := params.WalkSpeed
	if actor.Running {
		speed = params.RunSpeed
	} else if actor.Crouching {
		speed = params.CrouchSpeed
	}

	x := intent.MoveX
	v := body.Velocity()
	if !actor.Grounded && v.Y < 0 && x != 0 {
		if _, blocked := edgeProbe(w.PhysicsWorld(), pb, common.Sign(x), params.WallProbeDistance); blocked {
			x = 0
		}
	}

	mv, ok := ecs.Get(w, e, component.MovementComponent.Kind())
	if !ok {
		mv = &component.Movement{}
		_ = ecs.Add(w, e, component.MovementComponent.Kind(), mv)
	}
	target := x * speed * params.SpeedScale * dt
	vx, damp := common.SmoothDamp(v.X, target, mv.DampVelocity, params.Smoothing, dt)
	mv.DampVelocity = damp
	body.SetVelocity(vx, v.Y)

	if intent.MoveX > 0 && actor.Facing < 0 {
		actor.Facing = 1
	} else if intent.MoveX < 0 && actor.Facing > 0 {
		actor.Facing = -1
	}

	if anim, ok := ecs.Get(w, e, component.AnimationComponent.Kind()); ok {
		anim.SetParameter(component.ParamVelocity, math.Abs(x))
	}
}

// RequestJump applies the jump impulse when e stands on ground and is not
// crouching. The jumping flag clears after a fixed duration regardless of
// how long the actor stays airborne.
func (s *MovementSystem) RequestJump(w *ecs.World, e ecs.Entity) bool {
	actor, ok := ecs.Get(w, e, component.ActorComponent.Kind())
	if !ok || actor.Dead || !actor.Grounded || actor.Crouching {
		return false
	}
	params, ok := ecs.Get(w, e, component.MovementParamsComponent.Kind())
	if !ok {
		return false
	}
	pb, ok := bodyOf(w, e)
	if !ok {
		s.diag.warnOnce(e, "actor has no physics body; jump skipped")
		return false
	}

	actor.Jumping = true
	actor.Grounded = false
	body := pb.Body
	body.ApplyImpulseAtWorldPoint(cp.Vector{Y: params.JumpImpulse}, body.Position())

	mv, ok := ecs.Get(w, e, component.MovementComponent.Kind())
	if !ok {
		mv = &component.Movement{}
		_ = ecs.Add(w, e, component.MovementComponent.Kind(), mv)
	}
	component.CancelTask(mv.JumpTask)
	mv.JumpTask = w.FixedTasks().After(params.JumpFlagDuration, func() {
		if a, ok := ecs.Get(w, e, component.ActorComponent.Kind()); ok {
			a.Jumping = false
		}
	})
	s.logger.Debug("jump", "entity", e)
	return true
}
