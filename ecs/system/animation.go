package system

import (
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
)

// AnimationSystem mirrors actor state into animation parameters once per
// frame. Velocity is written by the movement system.
type AnimationSystem struct{}

func NewAnimationSystem() *AnimationSystem {
	return &AnimationSystem{}
}

func (s *AnimationSystem) Update(w *ecs.World, dt float64) {
	ecs.ForEach2(w, component.AnimationComponent.Kind(), component.ActorComponent.Kind(), func(e ecs.Entity, anim *component.Animation, actor *component.Actor) {
		climbing := false
		if wl, ok := ecs.Get(w, e, component.WallLedgeComponent.Kind()); ok {
			climbing = wl.State == component.WallLedgeClimbing
		}
		anim.SetParameter(component.ParamGrounded, actor.Grounded)
		anim.SetParameter(component.ParamAirborne, !actor.Grounded)
		anim.SetParameter(component.ParamJumping, actor.Jumping)
		anim.SetParameter(component.ParamRunning, actor.Running)
		anim.SetParameter(component.ParamCrouching, actor.Crouching)
		anim.SetParameter(component.ParamWallGrab, actor.WallGrabbing)
		anim.SetParameter(component.ParamLedgeHang, actor.Hanging && !climbing)
		anim.SetParameter(component.ParamLedgeClimb, climbing)
	})
}
